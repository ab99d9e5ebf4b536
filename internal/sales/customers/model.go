package customers

// Customer is a buyer contact. The original data set mixes customers and
// generic contacts in one table keyed by type; only CUSTOMER rows sell.
type Customer struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	Province    string `json:"province,omitempty"`
	District    string `json:"district,omitempty"`
	SubDistrict string `json:"subDistrict,omitempty"`
	ContactInfo string `json:"contactInfo,omitempty"`
	IsActive    bool   `json:"isActive"`
}

const (
	TypeCustomer = "CUSTOMER"
	TypeSupplier = "SUPPLIER"
	TypeOther    = "OTHER"
)
