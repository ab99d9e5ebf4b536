package users

import (
	"errors"
	"time"

	"github.com/mailom-erp/mailom-erp/internal/rbac"
)

// User is the account record managed by administrators.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      rbac.Role `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	// ErrNotFound indicates account missing.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("users: email already registered")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("users: invalid input")
)
