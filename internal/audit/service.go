package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
	exportLimit     = 10000
)

// Repository provides timeline rows for the service.
type Repository interface {
	Timeline(ctx context.Context, f Filters, limit, offset int) ([]Entry, error)
}

// Service serves the audit timeline and its CSV export.
type Service struct {
	repo Repository
}

// NewService constructs a service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of audit entries. It fetches one row past the
// page size to detect whether a next page exists.
func (s *Service) Timeline(ctx context.Context, f Filters) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("audit: repository not configured")
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	entries, err := s.repo.Timeline(ctx, f, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(entries) > pageSize
	if hasNext {
		entries = entries[:pageSize]
	}
	if entries == nil {
		entries = []Entry{}
	}
	return Result{
		Entries: entries,
		Paging:  Paging{Page: page, PageSize: pageSize, HasNext: hasNext},
	}, nil
}

// ExportCSV renders the filtered timeline as CSV, capped at exportLimit rows.
func (s *Service) ExportCSV(ctx context.Context, f Filters) ([]byte, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	entries, err := s.repo.Timeline(ctx, f, exportLimit, 0)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"occurred_at", "actor_id", "actor_name", "action", "entity", "entity_id"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		record := []string{
			e.OccurredAt.UTC().Format("2006-01-02 15:04:05"),
			strconv.FormatInt(e.ActorID, 10),
			e.ActorName,
			e.Action,
			e.Entity,
			e.EntityID,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
