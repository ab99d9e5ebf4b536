package analytics

import "github.com/mailom-erp/mailom-erp/internal/shared"

// AnalyzeProductProfit computes realized profit for a single product.
// Only COMPLETED sales count as revenue; pending and cancelled sales are
// ignored entirely. A product can carry several completed sales when a
// cancellation released it back into stock, so revenue is a sum, never a
// single lookup. A product with no completed sales reports profit equal
// to the negated cost and a zero margin.
func AnalyzeProductProfit(p ProductSaleRow) ProductProfit {
	revenue := 0.0
	soldCount := 0
	for _, sale := range p.Sales {
		if sale.Status != "COMPLETED" {
			continue
		}
		revenue += shared.SafeAmount(sale.RealizedAmount)
		soldCount++
	}

	cost := shared.SafeAmount(p.Cost)
	profit := revenue - cost
	return ProductProfit{
		ProductID:    p.ProductID,
		ProductCode:  p.ProductCode,
		ProductName:  p.ProductName,
		Cost:         cost,
		Price:        p.Price,
		TotalRevenue: revenue,
		Profit:       profit,
		ProfitMargin: shared.SafePercent(profit, revenue),
		Status:       p.Status,
		Garden:       p.GardenName,
		SalesCount:   soldCount,
	}
}

// AnalyzePortfolio runs the per-product analysis over every product in
// scope and totals the results. The portfolio margin is recomputed from
// the summed figures rather than averaged across products.
func AnalyzePortfolio(products []ProductSaleRow) ProfitReport {
	analysis := make([]ProductProfit, 0, len(products))
	var summary PortfolioSummary
	for _, p := range products {
		item := AnalyzeProductProfit(p)
		analysis = append(analysis, item)
		summary.TotalCost += item.Cost
		summary.TotalRevenue += item.TotalRevenue
		summary.TotalProfit += item.Profit
		summary.SoldProducts += item.SalesCount
	}
	summary.TotalProfitMargin = shared.SafePercent(summary.TotalProfit, summary.TotalRevenue)
	return ProfitReport{Products: analysis, Summary: summary}
}
