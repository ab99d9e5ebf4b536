package sales

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
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

// ListFilters restricts the sale listing.
type ListFilters struct {
	Status     Status
	CustomerID int64
	ProductID  int64
	Page       int
	Limit      int
}

const saleColumns = `s.id, s.product_id, p.code, p.name, p.cost,
	s.customer_id, c.name, s.sale_date, s.price, s.shipping, s.installation,
	s.other_costs, s.total_cost, s.status, COALESCE(s.note, '')`

const saleJoins = ` FROM sales s
	JOIN products p ON p.id = s.product_id
	JOIN customers c ON c.id = s.customer_id`

// List returns sales newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Sale, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Status != "" {
		argCount++
		where += ` AND s.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.CustomerID > 0 {
		argCount++
		where += ` AND s.customer_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.CustomerID)
	}
	if filters.ProductID > 0 {
		argCount++
		where += ` AND s.product_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.ProductID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+saleJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + saleColumns + saleJoins + where + ` ORDER BY s.sale_date DESC, s.id DESC`
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

	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, s)
	}
	return sales, total, rows.Err()
}

// Get returns one sale.
func (r *Repository) Get(ctx context.Context, id int64) (Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+saleJoins+` WHERE s.id = $1`, id)
	s, err := scanSale(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	return s, err
}

// Create inserts a sale. RealizedAmount lands in the legacy total_cost column.
func (r *Repository) Create(ctx context.Context, s Sale) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO sales
		(product_id, customer_id, sale_date, price, shipping, installation,
		 other_costs, total_cost, status, note, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW()) RETURNING id`,
		s.ProductID, s.CustomerID, s.SaleDate, s.Price, s.Shipping, s.Installation,
		s.OtherCosts, s.RealizedAmount, s.Status, s.Note).Scan(&id)
	return id, err
}

// SetStatus updates only the lifecycle status.
func (r *Repository) SetStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sales SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.ProductID, &s.ProductCode, &s.ProductName, &s.ProductCost,
		&s.CustomerID, &s.CustomerName, &s.SaleDate, &s.Price, &s.Shipping, &s.Installation,
		&s.OtherCosts, &s.RealizedAmount, &s.Status, &s.Note)
	return s, err
}
