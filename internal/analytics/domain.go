package analytics

import "time"

// Filter scopes every cost-analysis query. StartDate and EndDate are
// inclusive bounds on the purchase date; a zero time disables the bound.
// GardenID of zero means all gardens. Filters compose with AND.
type Filter struct {
	StartDate time.Time
	EndDate   time.Time
	GardenID  int64
}

// HasDateRange reports whether both bounds are set. Mirrors the contract
// that a lone start or end date is ignored rather than half-applied.
func (f Filter) HasDateRange() bool {
	return !f.StartDate.IsZero() && !f.EndDate.IsZero()
}

// CostLineRow is one purchase cost line joined with its category. An empty
// CategoryName marks an orphaned line whose category was deleted.
type CostLineRow struct {
	CategoryID     int64
	CategoryName   string
	CategoryNameEn string
	Amount         float64
}

// PurchaseRow is the slice of a purchase the garden and month rollups need.
// An empty GardenName marks an orphaned purchase.
type PurchaseRow struct {
	GardenID     int64
	GardenName   string
	Location     string
	OwnerName    string
	PurchaseDate time.Time
	TotalCost    float64
}

// SaleRow is a sale attached to a product, reduced to what profit
// analysis consumes.
type SaleRow struct {
	Status         string
	RealizedAmount float64
}

// ProductSaleRow is a product with its full sale history and the name of
// the garden it was purchased from.
type ProductSaleRow struct {
	ProductID   int64
	ProductCode string
	ProductName string
	Cost        float64
	Price       float64
	Status      string
	GardenName  string
	Sales       []SaleRow
}

// CategoryRollup is one slice of the cost-by-category breakdown.
type CategoryRollup struct {
	Category         string  `json:"category"`
	CategoryEn       string  `json:"categoryEn"`
	TotalAmount      float64 `json:"totalAmount"`
	TransactionCount int     `json:"transactionCount"`
	Percentage       float64 `json:"percentage"`
}

// CategoryReport is the byCategory response payload.
type CategoryReport struct {
	Categories  []CategoryRollup `json:"categories"`
	TotalAmount float64          `json:"totalAmount"`
}

// GardenRollup is one slice of the cost-by-garden breakdown.
type GardenRollup struct {
	Garden        string  `json:"garden"`
	Location      string  `json:"location"`
	OwnerName     string  `json:"ownerName"`
	TotalCost     float64 `json:"totalCost"`
	PurchaseCount int     `json:"purchaseCount"`
	Percentage    float64 `json:"percentage"`
}

// GardenReport is the byGarden response payload.
type GardenReport struct {
	Gardens   []GardenRollup `json:"gardens"`
	TotalCost float64        `json:"totalCost"`
}

// MonthRollup is one month bucket keyed YYYY-MM.
type MonthRollup struct {
	Month              string  `json:"month"`
	TotalCost          float64 `json:"totalCost"`
	PurchaseCount      int     `json:"purchaseCount"`
	AvgCostPerPurchase float64 `json:"avgCostPerPurchase"`
}

// MonthReport is the byMonth response payload, ascending by month.
type MonthReport struct {
	MonthlyData []MonthRollup `json:"monthlyData"`
}

// ProductProfit is the per-product line of the profit analysis. Only
// COMPLETED sales contribute to TotalRevenue and SalesCount.
type ProductProfit struct {
	ProductID    int64   `json:"productId"`
	ProductCode  string  `json:"productCode"`
	ProductName  string  `json:"productName"`
	Cost         float64 `json:"cost"`
	Price        float64 `json:"price"`
	TotalRevenue float64 `json:"totalRevenue"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profitMargin"`
	Status       string  `json:"status"`
	Garden       string  `json:"garden"`
	SalesCount   int     `json:"salesCount"`
}

// PortfolioSummary aggregates the profit analysis across all products in
// scope. TotalProfitMargin is guarded against zero revenue.
type PortfolioSummary struct {
	TotalCost         float64 `json:"totalCost"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalProfit       float64 `json:"totalProfit"`
	SoldProducts      int     `json:"soldProducts"`
	TotalProfitMargin float64 `json:"totalProfitMargin"`
}

// ProfitReport is the profitAnalysis response payload.
type ProfitReport struct {
	Products []ProductProfit  `json:"products"`
	Summary  PortfolioSummary `json:"summary"`
}

// Summary is the headline block of the dashboard.
type Summary struct {
	TotalPurchases    int     `json:"totalPurchases"`
	TotalCost         float64 `json:"totalCost"`
	TotalProducts     int     `json:"totalProducts"`
	TotalSales        int     `json:"totalSales"`
	TotalRevenue      float64 `json:"totalRevenue"`
	GrossProfit       float64 `json:"grossProfit"`
	ProfitMargin      float64 `json:"profitMargin"`
	AvgCostPerProduct float64 `json:"avgCostPerProduct"`
}

// RecentPurchase is a row of the dashboard's recent-purchase strip.
type RecentPurchase struct {
	ID           int64     `json:"id"`
	Code         string    `json:"purchaseCode"`
	GardenName   string    `json:"gardenName"`
	PurchaseDate time.Time `json:"purchaseDate"`
	TotalCost    float64   `json:"totalCost"`
	ProductCount int       `json:"productCount"`
}

// SummaryReport is the summary response payload.
type SummaryReport struct {
	Summary         Summary          `json:"summary"`
	RecentPurchases []RecentPurchase `json:"recentPurchases"`
}
