package inventory

import (
	"errors"
	"time"
)

// Product stock statuses.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusSold      Status = "SOLD"
	StatusReserved  Status = "RESERVED"
	StatusDead      Status = "DEAD"
)

// ValidStatus reports whether s is a known product status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusSold, StatusReserved, StatusDead:
		return true
	}
	return false
}

// Product is one physical tree unit. Cost is a snapshot taken at creation
// time, typically the purchase total divided across the batch; it is never
// recomputed when the parent purchase's breakdown is edited later.
type Product struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	HeightM     float64 `json:"height,omitempty"`
	TrunkSizeCm float64 `json:"faceWood,omitempty"`
	PotWidthM   float64 `json:"potWidth,omitempty"`
	PotHeightM  float64 `json:"potHeight,omitempty"`
	Location    string  `json:"location,omitempty"`
	Cost        float64 `json:"cost"`
	Price       float64 `json:"price"`
	Status      Status  `json:"status"`

	// PurchaseID links back to the originating purchase; zero for products
	// registered without one.
	PurchaseID int64 `json:"purchaseId,omitempty"`
	// GardenID is the own-garden the tree currently stands in.
	GardenID   int64     `json:"gardenId,omitempty"`
	GardenName string    `json:"gardenName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

var (
	// ErrNotFound indicates the product does not exist.
	ErrNotFound = errors.New("inventory: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("inventory: invalid input")
	// ErrDuplicateCode indicates the product code is taken.
	ErrDuplicateCode = errors.New("inventory: product code already exists")
	// ErrInvalidTransition occurs when the requested status change is not allowed.
	ErrInvalidTransition = errors.New("inventory: invalid status transition")
)

// CanTransition validates a manual status change. Sold stock only comes
// back through sale cancellation; manual edits may park stock as reserved,
// write it off as dead, or release a reservation.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusAvailable:
		return to == StatusReserved || to == StatusDead
	case StatusReserved:
		return to == StatusAvailable || to == StatusDead
	case StatusDead:
		return false
	case StatusSold:
		return false
	}
	return false
}
