package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return ts
}

func TestBuildPlanGroupsByGardenAndDate(t *testing.T) {
	rows := []TreeRow{
		{TreeName: "ตะแบก", GardenName: "สวนพี่ทิต", Date: date(t, "2025-01-15"), Price: 30000, Transport: 2500, TotalCost: 32500},
		{TreeName: "มะขาม", GardenName: "สวนพี่ทิต", Date: date(t, "2025-01-15"), Price: 20000, Labor: 500, TotalCost: 20500},
		{TreeName: "ยางนา", GardenName: "สวนพี่ทิต", Date: date(t, "2025-02-01"), Price: 1200, TotalCost: 1200},
		{TreeName: "พะยูง", GardenName: "สวนพี่หมอก", Date: date(t, "2025-01-15"), Price: 8000, TotalCost: 8000},
	}

	plan := BuildPlan(rows, 0)
	require.Len(t, plan.Purchases, 3)
	require.Equal(t, []string{"สวนพี่ทิต", "สวนพี่หมอก"}, plan.Gardens)
	require.Equal(t, 4, plan.TreeCount)
	require.Equal(t, 62200.0, plan.TotalCost)

	january := plan.Purchases[0]
	require.Equal(t, "สวนพี่ทิต", january.GardenName)
	require.Equal(t, 2, january.TreeCount)
	require.Equal(t, 53000.0, january.TotalCost)
	require.Equal(t, 50000.0, january.CostSummary["ราคาซื้อต้นไม้"])
	require.Equal(t, 2500.0, january.CostSummary["ค่าขนส่ง"])
	require.Equal(t, 500.0, january.CostSummary["ค่าแรง"])
	require.NotContains(t, january.CostSummary, "ค่าเครน")
}

func TestBuildPlanDropsRowsWithoutGarden(t *testing.T) {
	rows := []TreeRow{
		{TreeName: "ตะแบก", GardenName: "", Price: 100},
		{TreeName: "มะขาม", GardenName: "สวนมีสุข", Price: 200},
	}

	plan := BuildPlan(rows, 2)
	require.Equal(t, 3, plan.DroppedRows)
	require.Len(t, plan.Purchases, 1)
}

func TestPurchaseCodesAreStable(t *testing.T) {
	rows := []TreeRow{
		{TreeName: "ก", GardenName: "สวนพี่ทิต", Date: date(t, "2025-01-15"), Price: 1},
		{TreeName: "ข", GardenName: "สวนพี่หมอก", Date: date(t, "2025-02-01"), Price: 1},
	}

	plan := BuildPlan(rows, 0)
	require.Equal(t, "TT25-001", plan.Purchases[0].Code)
	require.Equal(t, "MK25-002", plan.Purchases[1].Code)
}

func TestProductCodePrefix(t *testing.T) {
	code := productCode(TreeRow{TreeName: "ตะแบก"}, "TT25-001", 3)
	require.Equal(t, "ตะ-TT25-001-003", code)

	code = productCode(TreeRow{TreeName: ""}, "TT25-001", 1)
	require.Equal(t, "TR-TT25-001-001", code)
}
