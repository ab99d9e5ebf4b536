package purchases

import "github.com/mailom-erp/mailom-erp/internal/shared"

// Metrics are the derived figures attached to every purchase payload.
type Metrics struct {
	TotalCostFromBreakdown float64            `json:"totalCostFromBreakdown"`
	CostByCategory         map[string]float64 `json:"costByCategory"`
	ProductCount           int                `json:"productCount"`
	CostPerProduct         float64            `json:"costPerProduct"`
	Variance               float64            `json:"variance"`
}

// ComputeMetrics derives the cost figures for one purchase from its cost
// lines and products. Pure; it never mutates its inputs.
//
// Variance is signed: positive means the declared total exceeds the itemized
// sum (an unallocated remainder), negative means the itemized costs overran
// the declared total. Either way it is reported, never reconciled.
func ComputeMetrics(p Purchase, lines []CostLine, products []ProductRef) Metrics {
	total := 0.0
	byCategory := make(map[string]float64, len(lines))
	for _, line := range lines {
		amount := shared.SafeAmount(line.Amount)
		total += amount
		byCategory[line.CategoryName] += amount
	}

	declared := shared.SafeAmount(p.TotalCost)
	count := len(products)
	return Metrics{
		TotalCostFromBreakdown: total,
		CostByCategory:         byCategory,
		ProductCount:           count,
		CostPerProduct:         shared.SafeDivide(declared, float64(count)),
		Variance:               declared - total,
	}
}
