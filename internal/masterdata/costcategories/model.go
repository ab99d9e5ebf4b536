package costcategories

// CostCategory is a cost bucket purchases break their spend into,
// e.g. tree stock, transport, labour.
type CostCategory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	NameEn      string `json:"nameEn,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`

	// UsageCount is the number of purchase cost lines referencing the category.
	UsageCount int `json:"usageCount"`
}
