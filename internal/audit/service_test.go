package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	entries   []Entry
	lastLimit int
	lastOff   int
}

func (s *stubRepo) Timeline(_ context.Context, _ Filters, limit, offset int) ([]Entry, error) {
	s.lastLimit = limit
	s.lastOff = offset
	if limit > 0 && len(s.entries) > limit {
		return s.entries[:limit], nil
	}
	return s.entries, nil
}

func makeEntries(n int) []Entry {
	entries := make([]Entry, 0, n)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		entries = append(entries, Entry{
			ID:         int64(n - i),
			OccurredAt: base.Add(-time.Duration(i) * time.Hour),
			ActorID:    7,
			ActorName:  "somsak",
			Action:     "UPDATE",
			Entity:     "purchase",
			EntityID:   "42",
		})
	}
	return entries
}

func TestTimelineDetectsNextPage(t *testing.T) {
	repo := &stubRepo{entries: makeEntries(25)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), Filters{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Entries, 10)
	require.True(t, result.Paging.HasNext)
	require.Equal(t, 1, result.Paging.Page)
	require.Equal(t, 11, repo.lastLimit)
	require.Equal(t, 0, repo.lastOff)
}

func TestTimelineLastPage(t *testing.T) {
	repo := &stubRepo{entries: makeEntries(5)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), Filters{Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Entries, 5)
	require.False(t, result.Paging.HasNext)
	require.Equal(t, 10, repo.lastOff)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepo{entries: makeEntries(2)}
	svc := NewService(repo)

	_, err := svc.Timeline(context.Background(), Filters{PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, maxPageSize+1, repo.lastLimit)
}

func TestTimelineEmptyResultIsNotNil(t *testing.T) {
	svc := NewService(&stubRepo{})

	result, err := svc.Timeline(context.Background(), Filters{})
	require.NoError(t, err)
	require.NotNil(t, result.Entries)
	require.Empty(t, result.Entries)
}

func TestExportCSV(t *testing.T) {
	repo := &stubRepo{entries: []Entry{{
		OccurredAt: time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC),
		ActorID:    7,
		ActorName:  "somsak",
		Action:     "EXCEL_IMPORT",
		Entity:     "purchase",
		EntityID:   "batch",
	}}}
	svc := NewService(repo)

	data, err := svc.ExportCSV(context.Background(), Filters{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "occurred_at,actor_id,actor_name,action,entity,entity_id", lines[0])
	require.Equal(t, "2025-06-01 08:30:00,7,somsak,EXCEL_IMPORT,purchase,batch", lines[1])
	require.Equal(t, exportLimit, repo.lastLimit)
}
