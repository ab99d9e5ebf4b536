package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeSummary(t *testing.T) {
	got := ComposeSummary(SummaryAggregates{
		PurchaseCount:  3,
		PurchaseCost:   90000,
		ProductCount:   12,
		ProductCostSum: 90000,
		SaleCount:      4,
		SaleRevenue:    120000,
	})

	require.Equal(t, 3, got.TotalPurchases)
	require.Equal(t, 90000.0, got.TotalCost)
	require.Equal(t, 30000.0, got.GrossProfit)
	require.InDelta(t, 25.0, got.ProfitMargin, 1e-9)
	require.Equal(t, 7500.0, got.AvgCostPerProduct)
}

func TestComposeSummaryEmptyScope(t *testing.T) {
	got := ComposeSummary(SummaryAggregates{})
	require.Zero(t, got.ProfitMargin)
	require.Zero(t, got.AvgCostPerProduct)
	require.Zero(t, got.GrossProfit)
}

func TestComposeSummaryLossMakesNegativeMargin(t *testing.T) {
	got := ComposeSummary(SummaryAggregates{
		PurchaseCount: 1,
		PurchaseCost:  10000,
		SaleCount:     1,
		SaleRevenue:   8000,
	})
	require.Equal(t, -2000.0, got.GrossProfit)
	require.InDelta(t, -25.0, got.ProfitMargin, 1e-9)
}
