package analytichttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mailom-erp/mailom-erp/internal/analytics"
	"github.com/mailom-erp/mailom-erp/internal/platform/httpx"
)

// ReportService is the slice of the analytics service the endpoint needs.
type ReportService interface {
	GetSummary(ctx context.Context, f analytics.Filter) (analytics.SummaryReport, error)
	CostByCategory(ctx context.Context, f analytics.Filter) (analytics.CategoryReport, error)
	CostByGarden(ctx context.Context, f analytics.Filter) (analytics.GardenReport, error)
	CostByMonth(ctx context.Context, f analytics.Filter) (analytics.MonthReport, error)
	ProfitAnalysis(ctx context.Context, f analytics.Filter) (analytics.ProfitReport, error)
}

// Handler serves the cost-analysis reporting endpoint.
type Handler struct {
	logger  *slog.Logger
	service ReportService
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	return &Handler{logger: logger, service: service}
}

// handleCostAnalysis dispatches on the type query parameter. Unknown or
// missing types fall back to the summary view.
func (h *Handler) handleCostAnalysis(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	ctx := r.Context()
	reportType := r.URL.Query().Get("type")

	var payload any
	switch reportType {
	case "byCategory":
		payload, err = h.service.CostByCategory(ctx, filter)
	case "byGarden":
		payload, err = h.service.CostByGarden(ctx, filter)
	case "byMonth":
		payload, err = h.service.CostByMonth(ctx, filter)
	case "profitAnalysis":
		payload, err = h.service.ProfitAnalysis(ctx, filter)
	default:
		payload, err = h.service.GetSummary(ctx, filter)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "cost analysis failed",
			slog.String("type", reportType), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "cost analysis failed", "")
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func filterFromQuery(r *http.Request) (analytics.Filter, error) {
	var f analytics.Filter
	q := r.URL.Query()

	start := q.Get("startDate")
	end := q.Get("endDate")
	if start != "" && end != "" {
		var err error
		if f.StartDate, err = time.Parse("2006-01-02", start); err != nil {
			return f, err
		}
		if f.EndDate, err = time.Parse("2006-01-02", end); err != nil {
			return f, err
		}
	}
	if raw := q.Get("gardenId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, strconv.ErrSyntax
		}
		f.GardenID = id
	}
	return f, nil
}
