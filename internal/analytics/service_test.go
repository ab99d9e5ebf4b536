package analytics

import (
	"context"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	costRows      []CostLineRow
	costCalls     int
	purchaseRows  []PurchaseRow
	purchaseCalls int
	productRows   []ProductSaleRow
	productCalls  int
	totalsCalls   int
	saleGardenID  int64
	saleFilter    Filter
	recent        []RecentPurchase
}

func (m *mockRepo) CostLineRows(ctx context.Context, f Filter) ([]CostLineRow, error) {
	m.costCalls++
	return m.costRows, nil
}

func (m *mockRepo) PurchaseRows(ctx context.Context, f Filter) ([]PurchaseRow, error) {
	m.purchaseCalls++
	return m.purchaseRows, nil
}

func (m *mockRepo) ProductSaleRows(ctx context.Context, f Filter) ([]ProductSaleRow, error) {
	m.productCalls++
	return m.productRows, nil
}

func (m *mockRepo) PurchaseTotals(ctx context.Context, f Filter) (int64, float64, error) {
	m.totalsCalls++
	return 3, 90000, nil
}

func (m *mockRepo) ProductTotals(ctx context.Context, f Filter) (int64, float64, error) {
	return 12, 90000, nil
}

func (m *mockRepo) SaleTotals(ctx context.Context, f Filter) (int64, float64, error) {
	m.saleFilter = f
	if f.GardenID > 0 && f.GardenID != m.saleGardenID {
		return 0, 0, nil
	}
	return 4, 120000, nil
}

func (m *mockRepo) RecentPurchases(ctx context.Context, f Filter, limit int) ([]RecentPurchase, error) {
	return m.recent, nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(slog.Default(), repo, cache)
}

func TestCostByCategoryCaches(t *testing.T) {
	repo := &mockRepo{costRows: []CostLineRow{
		{CategoryID: 1, CategoryName: "ค่าต้นไม้", Amount: 30000},
		{CategoryID: 2, CategoryName: "ค่าขนส่ง", Amount: 10000},
	}}
	svc := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.CostByCategory(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, 40000.0, first.TotalAmount)
	require.InDelta(t, 75.0, first.Categories[0].Percentage, 1e-9)

	second, err := svc.CostByCategory(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.costCalls)
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &mockRepo{purchaseRows: []PurchaseRow{
		{GardenID: 1, GardenName: "สวนลุงมี", TotalCost: 42713, PurchaseDate: time.Now()},
	}}
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.CostByGarden(ctx, Filter{})
	require.NoError(t, err)
	_, err = svc.CostByGarden(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, repo.purchaseCalls)

	require.NoError(t, svc.Invalidate(ctx))

	_, err = svc.CostByGarden(ctx, Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, repo.purchaseCalls)
}

func TestFilterScopesCacheKeys(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.CostByMonth(ctx, Filter{})
	require.NoError(t, err)
	_, err = svc.CostByMonth(ctx, Filter{GardenID: 7})
	require.NoError(t, err)
	require.Equal(t, 2, repo.purchaseCalls)
}

func TestProfitAnalysisThroughCache(t *testing.T) {
	repo := &mockRepo{productRows: []ProductSaleRow{
		{ProductID: 1, ProductCode: "MLM-001", Cost: 1500,
			Sales: []SaleRow{{Status: "COMPLETED", RealizedAmount: 6000}}},
		{ProductID: 2, ProductCode: "MLM-002", Cost: 1500},
	}}
	svc := newTestService(t, repo)

	report, err := svc.ProfitAnalysis(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 3000.0, report.Summary.TotalProfit)
	require.Equal(t, 1, report.Summary.SoldProducts)
	require.InDelta(t, 50.0, report.Summary.TotalProfitMargin, 1e-9)
}

func TestGetSummary(t *testing.T) {
	repo := &mockRepo{recent: []RecentPurchase{{ID: 1, Code: "PO-0001", TotalCost: 42713}}}
	svc := newTestService(t, repo)

	report, err := svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 3, report.Summary.TotalPurchases)
	require.Equal(t, 30000.0, report.Summary.GrossProfit)
	require.InDelta(t, 25.0, report.Summary.ProfitMargin, 1e-9)
	require.Equal(t, 7500.0, report.Summary.AvgCostPerProduct)
	require.Len(t, report.RecentPurchases, 1)

	_, err = svc.GetSummary(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, repo.totalsCalls)
}

func TestGetSummaryGardenScopesRevenue(t *testing.T) {
	// The only completed sale belongs to garden 3, so a garden 7 summary
	// must report zero revenue against its own purchase cost.
	repo := &mockRepo{saleGardenID: 3}
	svc := newTestService(t, repo)

	report, err := svc.GetSummary(context.Background(), Filter{GardenID: 7})
	require.NoError(t, err)
	require.Equal(t, int64(7), repo.saleFilter.GardenID)
	require.Equal(t, 0, report.Summary.TotalSales)
	require.Equal(t, 0.0, report.Summary.TotalRevenue)
	require.Equal(t, -90000.0, report.Summary.GrossProfit)
	require.Equal(t, 0.0, report.Summary.ProfitMargin)
}

func TestServiceWorksWithoutRedis(t *testing.T) {
	repo := &mockRepo{costRows: []CostLineRow{{CategoryID: 1, CategoryName: "ค่าแรง", Amount: 100}}}
	svc := NewService(slog.Default(), repo, NewCache(nil, time.Minute))

	first, err := svc.CostByCategory(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 100.0, first.TotalAmount)

	_, err = svc.CostByCategory(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, repo.costCalls)
}
