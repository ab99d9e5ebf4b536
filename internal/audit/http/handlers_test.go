package audithttp

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mailom-erp/mailom-erp/internal/audit"
)

type stubService struct {
	lastFilters audit.Filters
	result      audit.Result
	csv         []byte
}

func (s *stubService) Timeline(_ context.Context, f audit.Filters) (audit.Result, error) {
	s.lastFilters = f
	return s.result, nil
}

func (s *stubService) ExportCSV(_ context.Context, f audit.Filters) ([]byte, error) {
	s.lastFilters = f
	return s.csv, nil
}

func TestTimelineParsesFilters(t *testing.T) {
	svc := &stubService{result: audit.Result{Entries: []audit.Entry{}}}
	h := NewHandler(nil, svc)

	req := httptest.NewRequest("GET", "/audit-logs?from=2025-01-01&to=2025-01-31&entity=purchase&action=UPDATE&page=2&pageSize=10", nil)
	rec := httptest.NewRecorder()
	h.handleTimeline(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), svc.lastFilters.From)
	require.Equal(t, 31, svc.lastFilters.To.Day())
	require.Equal(t, 23, svc.lastFilters.To.Hour())
	require.Equal(t, "purchase", svc.lastFilters.Entity)
	require.Equal(t, "UPDATE", svc.lastFilters.Action)
	require.Equal(t, 2, svc.lastFilters.Page)
	require.Equal(t, 10, svc.lastFilters.PageSize)
}

func TestTimelineRejectsBadDate(t *testing.T) {
	h := NewHandler(nil, &stubService{})

	req := httptest.NewRequest("GET", "/audit-logs?from=01-2025", nil)
	rec := httptest.NewRecorder()
	h.handleTimeline(rec, req)

	require.Equal(t, 400, rec.Code)
}

func TestExportSetsCSVHeaders(t *testing.T) {
	svc := &stubService{csv: []byte("occurred_at,actor_id\n")}
	h := NewHandler(nil, svc)

	req := httptest.NewRequest("GET", "/audit-logs/export.csv", nil)
	rec := httptest.NewRecorder()
	h.handleExport(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Header().Get("Content-Disposition"), "audit-timeline.csv")
	require.Equal(t, "occurred_at,actor_id\n", rec.Body.String())
}
