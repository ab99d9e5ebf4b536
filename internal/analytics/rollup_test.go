package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRollupByCategorySumsAndShares(t *testing.T) {
	rows := []CostLineRow{
		{CategoryID: 1, CategoryName: "ค่าต้นไม้", CategoryNameEn: "Tree Cost", Amount: 30000},
		{CategoryID: 2, CategoryName: "ค่าขนส่ง", CategoryNameEn: "Transport", Amount: 9000},
		{CategoryID: 1, CategoryName: "ค่าต้นไม้", CategoryNameEn: "Tree Cost", Amount: 10000},
		{CategoryID: 3, CategoryName: "ค่าแรง", CategoryNameEn: "Labor", Amount: 1000},
	}

	report, skipped := RollupByCategory(rows)
	require.Zero(t, skipped)
	require.Equal(t, 50000.0, report.TotalAmount)
	require.Len(t, report.Categories, 3)

	// Largest bucket first.
	require.Equal(t, "ค่าต้นไม้", report.Categories[0].Category)
	require.Equal(t, 40000.0, report.Categories[0].TotalAmount)
	require.Equal(t, 2, report.Categories[0].TransactionCount)
	require.InDelta(t, 80.0, report.Categories[0].Percentage, 1e-9)

	sum := 0.0
	for _, c := range report.Categories {
		sum += c.Percentage
	}
	require.InDelta(t, 100.0, sum, 1e-9)
}

func TestRollupByCategorySkipsOrphans(t *testing.T) {
	rows := []CostLineRow{
		{CategoryID: 1, CategoryName: "ค่าต้นไม้", Amount: 500},
		{CategoryID: 99, CategoryName: "", Amount: 12345},
	}

	report, skipped := RollupByCategory(rows)
	require.Equal(t, 1, skipped)
	require.Equal(t, 500.0, report.TotalAmount)
	require.Len(t, report.Categories, 1)
	require.InDelta(t, 100.0, report.Categories[0].Percentage, 1e-9)
}

func TestRollupByCategoryEmpty(t *testing.T) {
	report, skipped := RollupByCategory(nil)
	require.Zero(t, skipped)
	require.Zero(t, report.TotalAmount)
	require.Empty(t, report.Categories)
}

func TestRollupByCategoryMalformedAmounts(t *testing.T) {
	rows := []CostLineRow{
		{CategoryID: 1, CategoryName: "ค่าแพค", Amount: math.NaN()},
		{CategoryID: 1, CategoryName: "ค่าแพค", Amount: 800},
	}

	report, _ := RollupByCategory(rows)
	require.Equal(t, 800.0, report.TotalAmount)
	require.Equal(t, 2, report.Categories[0].TransactionCount)
}

func TestRollupByGarden(t *testing.T) {
	rows := []PurchaseRow{
		{GardenID: 1, GardenName: "สวนลุงมี", Location: "ปราจีนบุรี", OwnerName: "ลุงมี", TotalCost: 42713},
		{GardenID: 2, GardenName: "สวนป้าแดง", Location: "นครนายก", OwnerName: "ป้าแดง", TotalCost: 15000},
		{GardenID: 1, GardenName: "สวนลุงมี", Location: "ปราจีนบุรี", OwnerName: "ลุงมี", TotalCost: 7287},
		{GardenID: 7, GardenName: "", TotalCost: 99999},
	}

	report, skipped := RollupByGarden(rows)
	require.Equal(t, 1, skipped)
	require.Equal(t, 65000.0, report.TotalCost)
	require.Len(t, report.Gardens, 2)

	require.Equal(t, "สวนลุงมี", report.Gardens[0].Garden)
	require.Equal(t, 50000.0, report.Gardens[0].TotalCost)
	require.Equal(t, 2, report.Gardens[0].PurchaseCount)
	require.InDelta(t, 76.923076923, report.Gardens[0].Percentage, 1e-6)
	require.InDelta(t, 23.076923077, report.Gardens[1].Percentage, 1e-6)
}

func TestRollupByMonthAscending(t *testing.T) {
	date := func(s string) time.Time {
		ts, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return ts
	}
	rows := []PurchaseRow{
		{GardenName: "a", PurchaseDate: date("2025-03-15"), TotalCost: 2000},
		{GardenName: "a", PurchaseDate: date("2025-01-20"), TotalCost: 1000},
		{GardenName: "a", PurchaseDate: date("2025-03-01"), TotalCost: 4000},
		{GardenName: "a", PurchaseDate: date("2024-12-31"), TotalCost: 500},
	}

	report, skipped := RollupByMonth(rows)
	require.Zero(t, skipped)
	require.Len(t, report.MonthlyData, 3)
	require.Equal(t, "2024-12", report.MonthlyData[0].Month)
	require.Equal(t, "2025-01", report.MonthlyData[1].Month)
	require.Equal(t, "2025-03", report.MonthlyData[2].Month)

	march := report.MonthlyData[2]
	require.Equal(t, 6000.0, march.TotalCost)
	require.Equal(t, 2, march.PurchaseCount)
	require.Equal(t, 3000.0, march.AvgCostPerPurchase)
}

func TestRollupByMonthEmpty(t *testing.T) {
	report, _ := RollupByMonth(nil)
	require.Empty(t, report.MonthlyData)
}
