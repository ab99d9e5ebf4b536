package costcategories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailom-erp/mailom-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, includeInactive bool) ([]CostCategory, error)
	Get(ctx context.Context, id int64) (CostCategory, error)
	Create(ctx context.Context, category CostCategory) (CostCategory, error)
	Update(ctx context.Context, id int64, category CostCategory) error
	Remove(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const categoryColumns = `c.id, c.name, COALESCE(c.name_en, ''), COALESCE(c.description, ''), c.is_active,
	(SELECT COUNT(*) FROM purchase_cost_lines l WHERE l.cost_category_id = c.id)`

func (r *repository) List(ctx context.Context, includeInactive bool) ([]CostCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM cost_categories c`
	if !includeInactive {
		query += ` WHERE c.is_active`
	}
	query += ` ORDER BY c.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("costcategories: list: %w", err)
	}
	defer rows.Close()

	var categories []CostCategory
	for rows.Next() {
		var c CostCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.NameEn, &c.Description, &c.IsActive, &c.UsageCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (CostCategory, error) {
	var c CostCategory
	err := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM cost_categories c WHERE c.id = $1`, id).
		Scan(&c.ID, &c.Name, &c.NameEn, &c.Description, &c.IsActive, &c.UsageCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return CostCategory{}, shared.ErrNotFound
	}
	if err != nil {
		return CostCategory{}, fmt.Errorf("costcategories: get: %w", err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, category CostCategory) (CostCategory, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cost_categories (name, name_en, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		RETURNING id`,
		category.Name, category.NameEn, category.Description,
	).Scan(&category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return CostCategory{}, shared.ErrDuplicate
		}
		return CostCategory{}, fmt.Errorf("costcategories: create: %w", err)
	}
	category.IsActive = true
	return category, nil
}

func (r *repository) Update(ctx context.Context, id int64, category CostCategory) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cost_categories
		SET name = $1, name_en = $2, description = $3, updated_at = NOW()
		WHERE id = $4`,
		category.Name, category.NameEn, category.Description, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicate
		}
		return fmt.Errorf("costcategories: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Remove hard-deletes an unused category and deactivates one that purchase
// cost lines still reference, so historic breakdowns keep their labels.
func (r *repository) Remove(ctx context.Context, id int64) error {
	var used int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM purchase_cost_lines WHERE cost_category_id = $1`, id,
	).Scan(&used)
	if err != nil {
		return fmt.Errorf("costcategories: usage check: %w", err)
	}

	if used > 0 {
		tag, err := r.pool.Exec(ctx,
			`UPDATE cost_categories SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("costcategories: deactivate: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM cost_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("costcategories: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
