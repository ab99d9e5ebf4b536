package audithttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mailom-erp/mailom-erp/internal/audit"
	"github.com/mailom-erp/mailom-erp/internal/platform/httpx"
)

// TimelineService exposes the audit queries the handler needs.
type TimelineService interface {
	Timeline(ctx context.Context, f audit.Filters) (audit.Result, error)
	ExportCSV(ctx context.Context, f audit.Filters) ([]byte, error)
}

// Handler serves the audit timeline endpoints.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
}

// NewHandler constructs a handler.
func NewHandler(logger *slog.Logger, service TimelineService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid filters", err.Error())
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "audit timeline failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "audit timeline failed", "could not load audit timeline")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid filters", err.Error())
		return
	}
	data, err := h.service.ExportCSV(r.Context(), filters)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "audit export failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "audit export failed", "could not export audit timeline")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func filtersFromQuery(r *http.Request) (audit.Filters, error) {
	q := r.URL.Query()
	var f audit.Filters
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return audit.Filters{}, err
		}
		f.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return audit.Filters{}, err
		}
		// inclusive end of day
		f.To = to.Add(24*time.Hour - time.Nanosecond)
	}
	f.Actor = q.Get("actor")
	f.Entity = q.Get("entity")
	f.Action = q.Get("action")
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return audit.Filters{}, err
		}
		f.Page = page
	}
	if raw := q.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return audit.Filters{}, err
		}
		f.PageSize = size
	}
	return f, nil
}
