package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeProductProfitSumsCompletedSales(t *testing.T) {
	product := ProductSaleRow{
		ProductID:   1,
		ProductCode: "MLM-001",
		ProductName: "ตะแบก",
		Cost:        1500,
		Price:       2500,
		Status:      "SOLD",
		GardenName:  "สวนลุงมี",
		Sales: []SaleRow{
			{Status: "COMPLETED", RealizedAmount: 1000},
			{Status: "CANCELLED", RealizedAmount: 5000},
			{Status: "COMPLETED", RealizedAmount: 2000},
			{Status: "PENDING", RealizedAmount: 700},
		},
	}

	got := AnalyzeProductProfit(product)
	require.Equal(t, 3000.0, got.TotalRevenue)
	require.Equal(t, 1500.0, got.Profit)
	require.InDelta(t, 50.0, got.ProfitMargin, 1e-9)
	require.Equal(t, 2, got.SalesCount)
}

func TestAnalyzeProductProfitNoSales(t *testing.T) {
	got := AnalyzeProductProfit(ProductSaleRow{Cost: 800, Status: "AVAILABLE"})
	require.Zero(t, got.TotalRevenue)
	require.Equal(t, -800.0, got.Profit)
	require.Zero(t, got.ProfitMargin)
	require.Zero(t, got.SalesCount)
}

func TestAnalyzeProductProfitPendingOnly(t *testing.T) {
	got := AnalyzeProductProfit(ProductSaleRow{
		Cost:  600,
		Sales: []SaleRow{{Status: "PENDING", RealizedAmount: 900}},
	})
	require.Zero(t, got.TotalRevenue)
	require.Equal(t, -600.0, got.Profit)
	require.Zero(t, got.ProfitMargin)
}

func TestAnalyzePortfolio(t *testing.T) {
	products := []ProductSaleRow{
		{ProductID: 1, Cost: 1500, Sales: []SaleRow{{Status: "COMPLETED", RealizedAmount: 6000}}},
		{ProductID: 2, Cost: 1500},
	}

	report := AnalyzePortfolio(products)
	require.Len(t, report.Products, 2)
	require.Equal(t, 3000.0, report.Summary.TotalCost)
	require.Equal(t, 6000.0, report.Summary.TotalRevenue)
	require.Equal(t, 3000.0, report.Summary.TotalProfit)
	require.Equal(t, 1, report.Summary.SoldProducts)
	require.InDelta(t, 50.0, report.Summary.TotalProfitMargin, 1e-9)
}

func TestAnalyzePortfolioEmpty(t *testing.T) {
	report := AnalyzePortfolio(nil)
	require.Empty(t, report.Products)
	require.Zero(t, report.Summary.TotalProfitMargin)
}
