package importer

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Cost category names the planner books breakdown lines under. The
// importer creates any that do not exist yet, keeping the Thai name as the
// primary key the dashboards group by.
var costCategorySeed = []struct {
	Name   string
	NameEn string
}{
	{"ราคาซื้อต้นไม้", "Tree Purchase Price"},
	{"ค่าขนส่ง", "Transport Cost"},
	{"ค่าเครน", "Crane Cost"},
	{"ค่าไม้ค้ำ", "Support Wood Cost"},
	{"ค่าแพค", "Packaging Cost"},
	{"ค่ารถเฮียบ", "Truck Cost"},
	{"ค่าอุปกรณ์", "Equipment Cost"},
	{"ค่าแรง", "Labor Cost"},
	{"ค่าอื่นๆ", "Other Cost"},
	{"ค่าทดแทนไม้ตาย", "Dead Tree Cost"},
}

// PurchasePlan is one purchase the import will create: all trees from the
// same garden landed on the same date.
type PurchasePlan struct {
	Code        string             `json:"purchaseCode"`
	GardenName  string             `json:"gardenName"`
	Date        time.Time          `json:"purchaseDate"`
	SupplierRef string             `json:"supplierRef"`
	TotalCost   float64            `json:"totalCost"`
	CostSummary map[string]float64 `json:"costSummary"`
	Trees       []TreeRow          `json:"-"`
	TreeCount   int                `json:"treeCount"`
}

// Plan is the full outcome of planning a workbook, returned verbatim by
// the dry-run endpoint.
type Plan struct {
	Purchases   []PurchasePlan `json:"purchases"`
	Gardens     []string       `json:"gardens"`
	TreeCount   int            `json:"treeCount"`
	TotalCost   float64        `json:"totalCost"`
	DroppedRows int            `json:"droppedRows"`
}

// BuildPlan groups parsed rows into purchases and summarizes the cost
// breakdown per purchase. Rows without a garden name cannot be attributed
// and are dropped.
func BuildPlan(rows []TreeRow, dropped int) Plan {
	type groupKey struct {
		garden string
		date   string
	}
	groups := make(map[groupKey]*PurchasePlan)
	gardens := make(map[string]struct{})

	for _, row := range rows {
		if row.GardenName == "" {
			dropped++
			continue
		}
		gardens[row.GardenName] = struct{}{}
		key := groupKey{garden: row.GardenName, date: dateToken(row.Date)}
		plan, ok := groups[key]
		if !ok {
			plan = &PurchasePlan{
				GardenName:  row.GardenName,
				Date:        row.Date,
				SupplierRef: row.Code,
				CostSummary: make(map[string]float64),
			}
			if plan.SupplierRef == "" {
				plan.SupplierRef = row.GardenName
			}
			groups[key] = plan
		}
		plan.Trees = append(plan.Trees, row)
		plan.TreeCount++
		plan.TotalCost += row.TotalCost
		addCosts(plan.CostSummary, row)
	}

	plan := Plan{DroppedRows: dropped}
	for _, g := range groups {
		plan.Purchases = append(plan.Purchases, *g)
		plan.TreeCount += g.TreeCount
		plan.TotalCost += g.TotalCost
	}
	sort.Slice(plan.Purchases, func(i, j int) bool {
		if !plan.Purchases[i].Date.Equal(plan.Purchases[j].Date) {
			return plan.Purchases[i].Date.Before(plan.Purchases[j].Date)
		}
		return plan.Purchases[i].GardenName < plan.Purchases[j].GardenName
	})
	for i := range plan.Purchases {
		plan.Purchases[i].Code = purchaseCode(plan.Purchases[i], i+1)
	}
	for name := range gardens {
		plan.Gardens = append(plan.Gardens, name)
	}
	sort.Strings(plan.Gardens)
	return plan
}

func addCosts(summary map[string]float64, row TreeRow) {
	add := func(name string, amount float64) {
		if amount > 0 {
			summary[name] += amount
		}
	}
	add("ราคาซื้อต้นไม้", row.Price)
	add("ค่าขนส่ง", row.Transport)
	add("ค่าเครน", row.Crane)
	add("ค่าไม้ค้ำ", row.SupportWood)
	add("ค่าแพค", row.Pack)
	add("ค่ารถเฮียบ", row.Truck)
	add("ค่าอุปกรณ์", row.Equipment)
	add("ค่าแรง", row.Labor)
	add("ค่าอื่นๆ", row.Other)
	add("ค่าทดแทนไม้ตาย", row.DeadTree)
}

func dateToken(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format("2006-01-02")
}

// purchaseCode derives a stable code from the garden prefix, the purchase
// year and the position in the plan, e.g. ML25-003.
func purchaseCode(plan PurchasePlan, seq int) string {
	year := time.Now().Format("06")
	if !plan.Date.IsZero() {
		year = plan.Date.Format("06")
	}
	return fmt.Sprintf("%s%s-%03d", gardenPrefix(plan.GardenName), year, seq)
}

var gardenPrefixes = []struct {
	match  string
	prefix string
}{
	{"ตุ่น", "TN"},
	{"เพลงไทย", "PT"},
	{"ทิต", "TT"},
	{"หมอก", "MK"},
	{"ไม้ล้อม", "ML"},
	{"มีสุข", "MS"},
}

func gardenPrefix(name string) string {
	for _, p := range gardenPrefixes {
		if strings.Contains(name, p.match) {
			return p.prefix
		}
	}
	return "GN"
}

// productCode derives the product code from the tree name, the purchase
// code and the tree's position inside the purchase.
func productCode(tree TreeRow, purchase string, seq int) string {
	name := []rune(strings.TrimSpace(tree.TreeName))
	prefix := "TR"
	if len(name) >= 2 {
		prefix = string(name[:2])
	} else if len(name) == 1 {
		prefix = string(name[:1])
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, purchase, seq)
}
