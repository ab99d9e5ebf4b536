package purchases

import (
	"math"
	"testing"
)

func TestComputeMetricsSumsBreakdownAndVariance(t *testing.T) {
	p := Purchase{TotalCost: 42713}
	lines := []CostLine{
		{CategoryName: "ค่าต้นไม้", Amount: 30000},
		{CategoryName: "ค่าขนส่ง", Amount: 9000},
		{CategoryName: "ค่าน้ำมัน", Amount: 271},
		{CategoryName: "ค่าแรงงาน", Amount: 800},
		{CategoryName: "ค่าเครน", Amount: 2500},
	}

	m := ComputeMetrics(p, lines, nil)
	if m.TotalCostFromBreakdown != 42571 {
		t.Fatalf("breakdown = %v, want 42571", m.TotalCostFromBreakdown)
	}
	if m.Variance != 142 {
		t.Fatalf("variance = %v, want 142", m.Variance)
	}
}

func TestComputeMetricsVarianceEqualsTotalWithoutLines(t *testing.T) {
	m := ComputeMetrics(Purchase{TotalCost: 5000}, nil, nil)
	if m.TotalCostFromBreakdown != 0 {
		t.Fatalf("breakdown = %v, want 0", m.TotalCostFromBreakdown)
	}
	if m.Variance != 5000 {
		t.Fatalf("variance = %v, want 5000", m.Variance)
	}
}

func TestComputeMetricsNegativeVarianceIsPreserved(t *testing.T) {
	m := ComputeMetrics(Purchase{TotalCost: 1000}, []CostLine{
		{CategoryName: "transport", Amount: 1500},
	}, nil)
	if m.Variance != -500 {
		t.Fatalf("variance = %v, want -500", m.Variance)
	}
}

func TestComputeMetricsSumsRepeatedCategories(t *testing.T) {
	lines := []CostLine{
		{CategoryName: "transport", Amount: 100},
		{CategoryName: "transport", Amount: 250},
		{CategoryName: "crane", Amount: 400},
	}
	m := ComputeMetrics(Purchase{TotalCost: 750}, lines, nil)

	if m.CostByCategory["transport"] != 350 {
		t.Fatalf("transport = %v, want 350", m.CostByCategory["transport"])
	}
	var sum float64
	for _, v := range m.CostByCategory {
		sum += v
	}
	if sum != m.TotalCostFromBreakdown {
		t.Fatalf("category sum %v != breakdown %v", sum, m.TotalCostFromBreakdown)
	}
}

func TestComputeMetricsCostPerProduct(t *testing.T) {
	products := []ProductRef{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	m := ComputeMetrics(Purchase{TotalCost: 1000}, nil, products)
	if m.ProductCount != 4 {
		t.Fatalf("productCount = %d, want 4", m.ProductCount)
	}
	if m.CostPerProduct != 250 {
		t.Fatalf("costPerProduct = %v, want 250", m.CostPerProduct)
	}
}

func TestComputeMetricsZeroProductsYieldsZeroNotInf(t *testing.T) {
	m := ComputeMetrics(Purchase{TotalCost: 1000}, nil, nil)
	if m.CostPerProduct != 0 {
		t.Fatalf("costPerProduct = %v, want 0", m.CostPerProduct)
	}
}

func TestComputeMetricsMalformedAmountsTreatedAsZero(t *testing.T) {
	lines := []CostLine{
		{CategoryName: "transport", Amount: math.NaN()},
		{CategoryName: "crane", Amount: math.Inf(1)},
		{CategoryName: "labour", Amount: 300},
	}
	m := ComputeMetrics(Purchase{TotalCost: 300}, lines, nil)
	if m.TotalCostFromBreakdown != 300 {
		t.Fatalf("breakdown = %v, want 300", m.TotalCostFromBreakdown)
	}
	if m.Variance != 0 {
		t.Fatalf("variance = %v, want 0", m.Variance)
	}
}
