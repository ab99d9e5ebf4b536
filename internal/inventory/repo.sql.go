package inventory

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListFilters restricts the product listing.
type ListFilters struct {
	Search   string
	Status   Status
	GardenID int64
	Page     int
	Limit    int
}

const productColumns = `p.id, p.code, p.name, COALESCE(p.description, ''),
	COALESCE(p.height_m, 0), COALESCE(p.trunk_size_cm, 0),
	COALESCE(p.pot_width_m, 0), COALESCE(p.pot_height_m, 0),
	COALESCE(p.location, ''), p.cost, p.price, p.status,
	COALESCE(p.purchase_id, 0), COALESCE(p.garden_id, 0), COALESCE(g.name, ''), p.created_at`

// List returns products newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		ph := `$` + strconv.Itoa(argCount)
		where += ` AND (p.code ILIKE ` + ph + ` OR p.name ILIKE ` + ph + ` OR p.description ILIKE ` + ph + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Status != "" {
		argCount++
		where += ` AND p.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.GardenID > 0 {
		argCount++
		where += ` AND p.garden_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.GardenID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns +
		` FROM products p LEFT JOIN gardens g ON g.id = p.garden_id` + where +
		` ORDER BY p.created_at DESC, p.id DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// Get returns one product.
func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+
		` FROM products p LEFT JOIN gardens g ON g.id = p.garden_id WHERE p.id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

// Create inserts one product.
func (r *Repository) Create(ctx context.Context, p Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO products
		(code, name, description, height_m, trunk_size_cm, pot_width_m, pot_height_m,
		 location, cost, price, status, purchase_id, garden_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW()) RETURNING id`,
		p.Code, p.Name, p.Description, p.HeightM, p.TrunkSizeCm, p.PotWidthM, p.PotHeightM,
		p.Location, p.Cost, p.Price, p.Status, nullID(p.PurchaseID), nullID(p.GardenID)).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateCode
	}
	return id, err
}

// CreateBatch inserts a batch of products in one transaction.
func (r *Repository) CreateBatch(ctx context.Context, products []Product) ([]int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		var id int64
		err := tx.QueryRow(ctx, `INSERT INTO products
			(code, name, description, height_m, trunk_size_cm, pot_width_m, pot_height_m,
			 location, cost, price, status, purchase_id, garden_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW()) RETURNING id`,
			p.Code, p.Name, p.Description, p.HeightM, p.TrunkSizeCm, p.PotWidthM, p.PotHeightM,
			p.Location, p.Cost, p.Price, p.Status, nullID(p.PurchaseID), nullID(p.GardenID)).Scan(&id)
		if err != nil {
			_ = tx.Rollback(ctx)
			if isUniqueViolation(err) {
				return nil, ErrDuplicateCode
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, tx.Commit(ctx)
}

// Update rewrites the mutable product fields.
func (r *Repository) Update(ctx context.Context, id int64, p Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products
		SET code=$1, name=$2, description=$3, height_m=$4, trunk_size_cm=$5,
			pot_width_m=$6, pot_height_m=$7, location=$8, price=$9,
			garden_id=$10, updated_at=NOW()
		WHERE id=$11`,
		p.Code, p.Name, p.Description, p.HeightM, p.TrunkSizeCm,
		p.PotWidthM, p.PotHeightM, p.Location, p.Price, nullID(p.GardenID), id)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus changes the stock status of one product.
func (r *Repository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkDeadBefore writes off available stock created before the cutoff.
// Used by the dead-stock scan job; returns the affected product IDs.
func (r *Repository) MarkDeadBefore(ctx context.Context, cutoff time.Time) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `UPDATE products
		SET status=$1, updated_at=NOW()
		WHERE status=$2 AND created_at < $3
		RETURNING id`, StatusDead, StatusAvailable, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description,
		&p.HeightM, &p.TrunkSizeCm, &p.PotWidthM, &p.PotHeightM,
		&p.Location, &p.Cost, &p.Price, &p.Status,
		&p.PurchaseID, &p.GardenID, &p.GardenName, &p.CreatedAt)
	return p, err
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
