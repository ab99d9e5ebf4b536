package analytics

import (
	"sort"

	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// RollupByCategory groups cost lines by category, sums the amounts and
// assigns each bucket its share of the whole. Lines whose category no
// longer exists are skipped; the count of skipped lines is returned so
// callers can report it. Buckets come back sorted by amount descending.
func RollupByCategory(rows []CostLineRow) (CategoryReport, int) {
	buckets := make(map[int64]*CategoryRollup)
	skipped := 0
	total := 0.0
	for _, row := range rows {
		if row.CategoryName == "" {
			skipped++
			continue
		}
		amount := shared.SafeAmount(row.Amount)
		b, ok := buckets[row.CategoryID]
		if !ok {
			b = &CategoryRollup{
				Category:   row.CategoryName,
				CategoryEn: row.CategoryNameEn,
			}
			buckets[row.CategoryID] = b
		}
		b.TotalAmount += amount
		b.TransactionCount++
		total += amount
	}

	categories := make([]CategoryRollup, 0, len(buckets))
	for _, b := range buckets {
		b.Percentage = shared.SafePercent(b.TotalAmount, total)
		categories = append(categories, *b)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].TotalAmount != categories[j].TotalAmount {
			return categories[i].TotalAmount > categories[j].TotalAmount
		}
		return categories[i].Category < categories[j].Category
	})
	return CategoryReport{Categories: categories, TotalAmount: total}, skipped
}

// RollupByGarden groups purchases by source garden. Purchases whose garden
// was deleted are skipped and counted. Buckets sort by cost descending.
func RollupByGarden(rows []PurchaseRow) (GardenReport, int) {
	buckets := make(map[int64]*GardenRollup)
	skipped := 0
	total := 0.0
	for _, row := range rows {
		if row.GardenName == "" {
			skipped++
			continue
		}
		cost := shared.SafeAmount(row.TotalCost)
		b, ok := buckets[row.GardenID]
		if !ok {
			b = &GardenRollup{
				Garden:    row.GardenName,
				Location:  row.Location,
				OwnerName: row.OwnerName,
			}
			buckets[row.GardenID] = b
		}
		b.TotalCost += cost
		b.PurchaseCount++
		total += cost
	}

	gardens := make([]GardenRollup, 0, len(buckets))
	for _, b := range buckets {
		b.Percentage = shared.SafePercent(b.TotalCost, total)
		gardens = append(gardens, *b)
	}
	sort.Slice(gardens, func(i, j int) bool {
		if gardens[i].TotalCost != gardens[j].TotalCost {
			return gardens[i].TotalCost > gardens[j].TotalCost
		}
		return gardens[i].Garden < gardens[j].Garden
	})
	return GardenReport{Gardens: gardens, TotalCost: total}, skipped
}

// RollupByMonth buckets purchases by calendar month (YYYY-MM) and returns
// the buckets in chronological order. Rows without a purchase date are
// skipped and counted.
func RollupByMonth(rows []PurchaseRow) (MonthReport, int) {
	buckets := make(map[string]*MonthRollup)
	skipped := 0
	for _, row := range rows {
		if row.PurchaseDate.IsZero() {
			skipped++
			continue
		}
		month := row.PurchaseDate.Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			b = &MonthRollup{Month: month}
			buckets[month] = b
		}
		b.TotalCost += shared.SafeAmount(row.TotalCost)
		b.PurchaseCount++
	}

	months := make([]MonthRollup, 0, len(buckets))
	for _, b := range buckets {
		b.AvgCostPerPurchase = shared.SafeDivide(b.TotalCost, float64(b.PurchaseCount))
		months = append(months, *b)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return MonthReport{MonthlyData: months}, skipped
}
