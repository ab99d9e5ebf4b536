package sales

import (
	"errors"
	"time"
)

// Sale lifecycle statuses.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ValidStatus reports whether s is a known sale status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Sale links one product to one customer. RealizedAmount is the full sum
// collected from the buyer (price plus shipping, installation and other
// add-ons); the legacy schema stores it in the total_cost column. Only
// COMPLETED sales count as realized revenue.
type Sale struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"productId"`
	ProductCode    string    `json:"productCode,omitempty"`
	ProductName    string    `json:"productName,omitempty"`
	ProductCost    float64   `json:"productCost,omitempty"`
	CustomerID     int64     `json:"customerId"`
	CustomerName   string    `json:"customerName,omitempty"`
	SaleDate       time.Time `json:"saleDate"`
	Price          float64   `json:"price"`
	Shipping       float64   `json:"shipping"`
	Installation   float64   `json:"installation"`
	OtherCosts     float64   `json:"otherCosts"`
	RealizedAmount float64   `json:"realizedAmount"`
	Status         Status    `json:"status"`
	Note           string    `json:"note,omitempty"`
}

var (
	// ErrNotFound indicates the sale does not exist.
	ErrNotFound = errors.New("sales: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("sales: invalid input")
	// ErrProductUnavailable blocks selling stock that is not on the shelf.
	ErrProductUnavailable = errors.New("sales: product is not available")
	// ErrInvalidState occurs when action violates the status workflow.
	ErrInvalidState = errors.New("sales: invalid state transition")
)
