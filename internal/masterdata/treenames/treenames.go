// Package treenames serves the distinct tree species names already present in
// stock, used as an autocomplete source when registering products.
package treenames

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailom-erp/mailom-erp/internal/masterdata/shared"
)

type Repository interface {
	Distinct(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Distinct(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT name FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("treenames: distinct: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *repository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("treenames: exists: %w", err)
	}
	return exists, nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.repo.Distinct(ctx)
}

// CheckAvailable reports whether a proposed tree name is not yet in use.
func (s *Service) CheckAvailable(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: tree name is required", shared.ErrValidation)
	}
	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	return !exists, nil
}
