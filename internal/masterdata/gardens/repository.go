package gardens

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailom-erp/mailom-erp/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Garden, int, error)
	Get(ctx context.Context, id int64) (Garden, error)
	Create(ctx context.Context, garden Garden) (Garden, error)
	Update(ctx context.Context, id int64, garden Garden) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const gardenColumns = `g.id, g.kind, g.name,
	COALESCE(g.owner_name, ''), COALESCE(g.manager_name, ''),
	COALESCE(g.location, ''), COALESCE(g.province, ''),
	COALESCE(g.district, ''), COALESCE(g.sub_district, ''),
	COALESCE(g.contact_info, ''), COALESCE(g.description, ''),
	g.is_active,
	(SELECT COUNT(*) FROM purchases p WHERE p.garden_id = g.id),
	(SELECT COUNT(*) FROM products pr WHERE pr.garden_id = g.id)`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Garden, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		ph := `$` + strconv.Itoa(argCount)
		where += ` AND (g.name ILIKE ` + ph + ` OR g.owner_name ILIKE ` + ph +
			` OR g.location ILIKE ` + ph + ` OR g.province ILIKE ` + ph + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Kind != "" {
		argCount++
		where += ` AND g.kind = $` + strconv.Itoa(argCount)
		args = append(args, filters.Kind)
	}
	if filters.Province != "" {
		argCount++
		where += ` AND g.province = $` + strconv.Itoa(argCount)
		args = append(args, filters.Province)
	}
	if filters.IsActive != nil {
		argCount++
		where += ` AND g.is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM gardens g`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("gardens: count: %w", err)
	}

	query := `SELECT ` + gardenColumns + ` FROM gardens g` + where +
		` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("gardens: list: %w", err)
	}
	defer rows.Close()

	var gardens []Garden
	for rows.Next() {
		g, err := scanGarden(rows)
		if err != nil {
			return nil, 0, err
		}
		gardens = append(gardens, g)
	}
	return gardens, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Garden, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+gardenColumns+` FROM gardens g WHERE g.id = $1`, id)
	g, err := scanGarden(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Garden{}, shared.ErrNotFound
	}
	if err != nil {
		return Garden{}, fmt.Errorf("gardens: get: %w", err)
	}
	return g, nil
}

func (r *repository) Create(ctx context.Context, garden Garden) (Garden, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO gardens (kind, name, owner_name, manager_name, location, province,
			district, sub_district, contact_info, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, NOW(), NOW())
		RETURNING id`,
		garden.Kind, garden.Name, garden.OwnerName, garden.ManagerName,
		garden.Location, garden.Province, garden.District, garden.SubDistrict,
		garden.ContactInfo, garden.Description,
	).Scan(&garden.ID)
	if err != nil {
		return Garden{}, fmt.Errorf("gardens: create: %w", err)
	}
	garden.IsActive = true
	return garden, nil
}

func (r *repository) Update(ctx context.Context, id int64, garden Garden) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE gardens
		SET name = $1, owner_name = $2, manager_name = $3, location = $4,
			province = $5, district = $6, sub_district = $7, contact_info = $8,
			description = $9, is_active = $10, updated_at = NOW()
		WHERE id = $11`,
		garden.Name, garden.OwnerName, garden.ManagerName, garden.Location,
		garden.Province, garden.District, garden.SubDistrict, garden.ContactInfo,
		garden.Description, garden.IsActive, id,
	)
	if err != nil {
		return fmt.Errorf("gardens: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a garden that has no purchases or products attached.
func (r *repository) Delete(ctx context.Context, id int64) error {
	var purchases, products int
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM purchases WHERE garden_id = $1),
			(SELECT COUNT(*) FROM products WHERE garden_id = $1)`, id,
	).Scan(&purchases, &products)
	if err != nil {
		return fmt.Errorf("gardens: delete check: %w", err)
	}
	if purchases > 0 || products > 0 {
		return shared.ErrInUse
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM gardens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("gardens: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanGarden(row pgx.Row) (Garden, error) {
	var g Garden
	err := row.Scan(&g.ID, &g.Kind, &g.Name, &g.OwnerName, &g.ManagerName,
		&g.Location, &g.Province, &g.District, &g.SubDistrict,
		&g.ContactInfo, &g.Description, &g.IsActive,
		&g.PurchaseCount, &g.ProductCount)
	return g, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "province":
		return "g.province " + dir
	case "owner":
		return "g.owner_name " + dir
	case "name":
		return "g.name " + dir
	default:
		return "g.name " + dir
	}
}
