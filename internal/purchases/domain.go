package purchases

import (
	"errors"
	"time"
)

// Purchase lifecycle statuses.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ValidStatus reports whether s is a known purchase status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Purchase is a single procurement transaction from a garden. TotalCost is
// the declared total entered by the user; it may legitimately diverge from
// the sum of the cost lines, and the difference is surfaced as variance
// rather than reconciled.
type Purchase struct {
	ID         int64  `json:"id"`
	Code       string `json:"purchaseCode"`
	GardenID   int64  `json:"gardenId"`
	GardenName string `json:"gardenName,omitempty"`
	// DestinationID optionally records which of our own gardens the trees
	// were moved to after purchase.
	DestinationID   int64     `json:"destinationGardenId,omitempty"`
	DestinationName string    `json:"destinationGardenName,omitempty"`
	SupplierRef     string    `json:"supplierRef,omitempty"`
	PurchaseDate    time.Time `json:"purchaseDate"`
	TotalCost       float64   `json:"totalCost"`
	Status          Status    `json:"status"`
	Note            string    `json:"note,omitempty"`
}

// CostLine is one item of a purchase's itemized cost breakdown. Lines are
// replaced wholesale when the breakdown is edited, never patched.
type CostLine struct {
	ID           int64   `json:"id"`
	PurchaseID   int64   `json:"purchaseId"`
	CategoryID   int64   `json:"costCategoryId"`
	CategoryName string  `json:"categoryName,omitempty"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description,omitempty"`
}

// ProductRef is the slim product view attached to purchase detail payloads.
type ProductRef struct {
	ID     int64   `json:"id"`
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Cost   float64 `json:"cost"`
}

var (
	// ErrNotFound indicates the purchase does not exist.
	ErrNotFound = errors.New("purchases: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("purchases: invalid input")
	// ErrDuplicateCode indicates the purchase code is taken.
	ErrDuplicateCode = errors.New("purchases: purchase code already exists")
	// ErrHasProducts blocks deletion of a purchase that produced stock.
	ErrHasProducts = errors.New("purchases: products exist for this purchase")
)
