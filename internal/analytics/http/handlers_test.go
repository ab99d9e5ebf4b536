package analytichttp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mailom-erp/mailom-erp/internal/analytics"
)

type stubService struct {
	lastType   string
	lastFilter analytics.Filter
}

func (s *stubService) GetSummary(ctx context.Context, f analytics.Filter) (analytics.SummaryReport, error) {
	s.lastType, s.lastFilter = "summary", f
	return analytics.SummaryReport{Summary: analytics.Summary{TotalPurchases: 3}}, nil
}

func (s *stubService) CostByCategory(ctx context.Context, f analytics.Filter) (analytics.CategoryReport, error) {
	s.lastType, s.lastFilter = "byCategory", f
	return analytics.CategoryReport{TotalAmount: 42571}, nil
}

func (s *stubService) CostByGarden(ctx context.Context, f analytics.Filter) (analytics.GardenReport, error) {
	s.lastType, s.lastFilter = "byGarden", f
	return analytics.GardenReport{}, nil
}

func (s *stubService) CostByMonth(ctx context.Context, f analytics.Filter) (analytics.MonthReport, error) {
	s.lastType, s.lastFilter = "byMonth", f
	return analytics.MonthReport{}, nil
}

func (s *stubService) ProfitAnalysis(ctx context.Context, f analytics.Filter) (analytics.ProfitReport, error) {
	s.lastType, s.lastFilter = "profitAnalysis", f
	return analytics.ProfitReport{}, nil
}

func newTestHandler() (*Handler, *stubService) {
	svc := &stubService{}
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc), svc
}

func TestCostAnalysisDispatch(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"type=summary", "summary"},
		{"type=byCategory", "byCategory"},
		{"type=byGarden", "byGarden"},
		{"type=byMonth", "byMonth"},
		{"type=profitAnalysis", "profitAnalysis"},
		{"", "summary"},
		{"type=bogus", "summary"},
	}
	for _, tc := range cases {
		h, svc := newTestHandler()
		req := httptest.NewRequest(http.MethodGet, "/cost-analysis?"+tc.query, nil)
		rec := httptest.NewRecorder()
		h.handleCostAnalysis(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, tc.query)
		require.Equal(t, tc.want, svc.lastType, tc.query)
	}
}

func TestCostAnalysisFilterParsing(t *testing.T) {
	h, svc := newTestHandler()
	req := httptest.NewRequest(http.MethodGet,
		"/cost-analysis?type=byCategory&startDate=2025-01-01&endDate=2025-03-31&gardenId=7", nil)
	rec := httptest.NewRecorder()
	h.handleCostAnalysis(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(7), svc.lastFilter.GardenID)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), svc.lastFilter.StartDate)
	require.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), svc.lastFilter.EndDate)

	var body analytics.CategoryReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 42571.0, body.TotalAmount)
}

func TestCostAnalysisLoneDateIgnored(t *testing.T) {
	h, svc := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/cost-analysis?startDate=2025-01-01", nil)
	rec := httptest.NewRecorder()
	h.handleCostAnalysis(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, svc.lastFilter.HasDateRange())
}

func TestCostAnalysisBadInput(t *testing.T) {
	for _, query := range []string{
		"startDate=notadate&endDate=2025-01-31",
		"gardenId=abc",
		"gardenId=-1",
	} {
		h, _ := newTestHandler()
		req := httptest.NewRequest(http.MethodGet, "/cost-analysis?"+query, nil)
		rec := httptest.NewRecorder()
		h.handleCostAnalysis(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}
