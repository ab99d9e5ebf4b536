package gardens

// Kind separates gardens the company buys from and gardens it operates.
type Kind string

const (
	KindSupplier Kind = "SUPPLIER"
	KindOwn      Kind = "OWN"
)

// Garden represents a supplier garden or one of the company's own gardens.
type Garden struct {
	ID          int64  `json:"id"`
	Kind        Kind   `json:"kind"`
	Name        string `json:"name"`
	OwnerName   string `json:"ownerName,omitempty"`
	ManagerName string `json:"managerName,omitempty"`
	Location    string `json:"location,omitempty"`
	Province    string `json:"province,omitempty"`
	District    string `json:"district,omitempty"`
	SubDistrict string `json:"subDistrict,omitempty"`
	ContactInfo string `json:"contactInfo,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`

	PurchaseCount int `json:"purchaseCount"`
	ProductCount  int `json:"productCount"`
}

// ValidKind reports whether k is a known garden kind.
func ValidKind(k Kind) bool {
	return k == KindSupplier || k == KindOwn
}
