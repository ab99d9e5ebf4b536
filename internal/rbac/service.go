package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// Service resolves effective permissions for users. Permissions are a
// static function of the user's role; only the role itself lives in the
// database.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs the RBAC service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// RoleOf returns the role recorded for the user.
func (s *Service) RoleOf(ctx context.Context, userID int64) (Role, error) {
	var role string
	err := s.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1 AND is_active`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", fmt.Errorf("rbac: role lookup: %w", err)
	}
	return Role(role), nil
}

// EffectivePermissions resolves the permission set for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	role, err := s.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return PermissionsForRole(role), nil
}
