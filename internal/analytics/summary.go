package analytics

import "github.com/mailom-erp/mailom-erp/internal/shared"

// SummaryAggregates carries the scoped totals the dashboard headline is
// composed from. Revenue and sale counts cover completed sales only.
type SummaryAggregates struct {
	PurchaseCount  int64
	PurchaseCost   float64
	ProductCount   int64
	ProductCostSum float64
	SaleCount      int64
	SaleRevenue    float64
}

// ComposeSummary folds the aggregates into the headline block. Every ratio
// goes through the shared zero-guard so an empty scope reports zeroes
// instead of NaN.
func ComposeSummary(agg SummaryAggregates) Summary {
	totalCost := shared.SafeAmount(agg.PurchaseCost)
	revenue := shared.SafeAmount(agg.SaleRevenue)
	gross := revenue - totalCost
	return Summary{
		TotalPurchases:    int(agg.PurchaseCount),
		TotalCost:         totalCost,
		TotalProducts:     int(agg.ProductCount),
		TotalSales:        int(agg.SaleCount),
		TotalRevenue:      revenue,
		GrossProfit:       gross,
		ProfitMargin:      shared.SafePercent(gross, revenue),
		AvgCostPerProduct: shared.SafeDivide(shared.SafeAmount(agg.ProductCostSum), float64(agg.ProductCount)),
	}
}
