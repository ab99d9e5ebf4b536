package analytics

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

const recentPurchaseLimit = 5

// Repository exposes the aggregate queries the reports are built from.
type Repository interface {
	CostLineRows(ctx context.Context, f Filter) ([]CostLineRow, error)
	PurchaseRows(ctx context.Context, f Filter) ([]PurchaseRow, error)
	ProductSaleRows(ctx context.Context, f Filter) ([]ProductSaleRow, error)
	PurchaseTotals(ctx context.Context, f Filter) (int64, float64, error)
	ProductTotals(ctx context.Context, f Filter) (int64, float64, error)
	SaleTotals(ctx context.Context, f Filter) (int64, float64, error)
	RecentPurchases(ctx context.Context, f Filter, limit int) ([]RecentPurchase, error)
}

// Service runs the cost-analysis reports through the versioned cache.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *Cache
}

// NewService wires the repository with the cache helper.
func NewService(logger *slog.Logger, repo Repository, cache *Cache) *Service {
	return &Service{logger: logger, repo: repo, cache: cache}
}

// Invalidate bumps the cache version. Write paths in purchases, inventory
// and sales call this after each mutation.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func scopeToken(f Filter) string {
	start, end := "-", "-"
	if f.HasDateRange() {
		start = f.StartDate.Format("2006-01-02")
		end = f.EndDate.Format("2006-01-02")
	}
	garden := "-"
	if f.GardenID > 0 {
		garden = strconv.FormatInt(f.GardenID, 10)
	}
	return strings.Join([]string{start, end, garden}, ":")
}

func reportKey(report string, f Filter) []string {
	return []string{"cost_analysis", report, scopeToken(f)}
}

// CostByCategory returns the cost breakdown grouped by cost category.
func (s *Service) CostByCategory(ctx context.Context, f Filter) (CategoryReport, error) {
	var report CategoryReport
	key, err := s.cache.BuildKey(ctx, reportKey("by_category", f)...)
	if err != nil {
		return report, err
	}
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		rows, err := s.repo.CostLineRows(ctx, f)
		if err != nil {
			return nil, err
		}
		result, skipped := RollupByCategory(rows)
		s.logSkipped(ctx, "by_category", skipped)
		return result, nil
	})
	return report, err
}

// CostByGarden returns the cost breakdown grouped by source garden.
func (s *Service) CostByGarden(ctx context.Context, f Filter) (GardenReport, error) {
	var report GardenReport
	key, err := s.cache.BuildKey(ctx, reportKey("by_garden", f)...)
	if err != nil {
		return report, err
	}
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		rows, err := s.repo.PurchaseRows(ctx, f)
		if err != nil {
			return nil, err
		}
		result, skipped := RollupByGarden(rows)
		s.logSkipped(ctx, "by_garden", skipped)
		return result, nil
	})
	return report, err
}

// CostByMonth returns the monthly cost series, ascending.
func (s *Service) CostByMonth(ctx context.Context, f Filter) (MonthReport, error) {
	var report MonthReport
	key, err := s.cache.BuildKey(ctx, reportKey("by_month", f)...)
	if err != nil {
		return report, err
	}
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		rows, err := s.repo.PurchaseRows(ctx, f)
		if err != nil {
			return nil, err
		}
		result, skipped := RollupByMonth(rows)
		s.logSkipped(ctx, "by_month", skipped)
		return result, nil
	})
	return report, err
}

// ProfitAnalysis returns per-product realized profit plus portfolio totals.
func (s *Service) ProfitAnalysis(ctx context.Context, f Filter) (ProfitReport, error) {
	var report ProfitReport
	key, err := s.cache.BuildKey(ctx, reportKey("profit", f)...)
	if err != nil {
		return report, err
	}
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		products, err := s.repo.ProductSaleRows(ctx, f)
		if err != nil {
			return nil, err
		}
		return AnalyzePortfolio(products), nil
	})
	return report, err
}

// GetSummary composes the dashboard headline block and the recent purchase
// strip. The underlying aggregates load concurrently.
func (s *Service) GetSummary(ctx context.Context, f Filter) (SummaryReport, error) {
	var report SummaryReport
	key, err := s.cache.BuildKey(ctx, reportKey("summary", f)...)
	if err != nil {
		return report, err
	}
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		var agg SummaryAggregates
		var recent []RecentPurchase

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			agg.PurchaseCount, agg.PurchaseCost, err = s.repo.PurchaseTotals(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			agg.ProductCount, agg.ProductCostSum, err = s.repo.ProductTotals(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			agg.SaleCount, agg.SaleRevenue, err = s.repo.SaleTotals(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			recent, err = s.repo.RecentPurchases(gctx, f, recentPurchaseLimit)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return SummaryReport{Summary: ComposeSummary(agg), RecentPurchases: recent}, nil
	})
	return report, err
}

func (s *Service) logSkipped(ctx context.Context, report string, skipped int) {
	if skipped == 0 || s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, "cost analysis skipped orphaned rows",
		slog.String("report", report), slog.Int("skipped", skipped))
}
