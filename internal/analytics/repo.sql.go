package analytics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo runs the raw aggregate queries behind the cost-analysis reports.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs the repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// purchaseWhere renders the scope filter against the purchases alias p.
// Both date bounds are inclusive and only apply together.
func purchaseWhere(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.HasDateRange() {
		args = append(args, f.StartDate)
		conds = append(conds, "p.purchase_date >= $"+strconv.Itoa(len(args)))
		args = append(args, f.EndDate)
		conds = append(conds, "p.purchase_date <= $"+strconv.Itoa(len(args)))
	}
	if f.GardenID > 0 {
		args = append(args, f.GardenID)
		conds = append(conds, "p.garden_id = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CostLineRows returns every cost line in scope joined with its category.
// Orphaned lines come back with an empty category name.
func (r *Repo) CostLineRows(ctx context.Context, f Filter) ([]CostLineRow, error) {
	where, args := purchaseWhere(f)
	rows, err := r.pool.Query(ctx, `SELECT l.cost_category_id,
		COALESCE(c.name, ''), COALESCE(c.name_en, ''), l.amount
		FROM purchase_cost_lines l
		JOIN purchases p ON p.id = l.purchase_id
		LEFT JOIN cost_categories c ON c.id = l.cost_category_id`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics: query cost lines: %w", err)
	}
	defer rows.Close()

	var out []CostLineRow
	for rows.Next() {
		var row CostLineRow
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.CategoryNameEn, &row.Amount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PurchaseRows returns every purchase in scope with its garden fields.
func (r *Repo) PurchaseRows(ctx context.Context, f Filter) ([]PurchaseRow, error) {
	where, args := purchaseWhere(f)
	rows, err := r.pool.Query(ctx, `SELECT p.garden_id, COALESCE(g.name, ''),
		COALESCE(g.location, ''), COALESCE(g.owner_name, ''),
		p.purchase_date, p.total_cost
		FROM purchases p
		LEFT JOIN gardens g ON g.id = p.garden_id`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics: query purchases: %w", err)
	}
	defer rows.Close()

	var out []PurchaseRow
	for rows.Next() {
		var row PurchaseRow
		if err := rows.Scan(&row.GardenID, &row.GardenName, &row.Location,
			&row.OwnerName, &row.PurchaseDate, &row.TotalCost); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ProductSaleRows returns products with their complete sale history. Only
// the garden filter applies here; profit is a lifetime view per product.
func (r *Repo) ProductSaleRows(ctx context.Context, f Filter) ([]ProductSaleRow, error) {
	query := `SELECT pr.id, pr.code, pr.name, pr.cost, pr.price, pr.status,
		COALESCE(g.name, '')
		FROM products pr
		LEFT JOIN purchases p ON p.id = pr.purchase_id
		LEFT JOIN gardens g ON g.id = p.garden_id`
	var args []any
	if f.GardenID > 0 {
		query += ` WHERE p.garden_id = $1`
		args = append(args, f.GardenID)
	}
	query += ` ORDER BY pr.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics: query products: %w", err)
	}
	defer rows.Close()

	var products []ProductSaleRow
	var ids []int64
	for rows.Next() {
		var row ProductSaleRow
		if err := rows.Scan(&row.ProductID, &row.ProductCode, &row.ProductName,
			&row.Cost, &row.Price, &row.Status, &row.GardenName); err != nil {
			return nil, err
		}
		products = append(products, row)
		ids = append(ids, row.ProductID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	saleRows, err := r.pool.Query(ctx,
		`SELECT product_id, status, total_cost FROM sales WHERE product_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("analytics: query sales: %w", err)
	}
	defer saleRows.Close()

	salesByProduct := make(map[int64][]SaleRow)
	for saleRows.Next() {
		var productID int64
		var sale SaleRow
		if err := saleRows.Scan(&productID, &sale.Status, &sale.RealizedAmount); err != nil {
			return nil, err
		}
		salesByProduct[productID] = append(salesByProduct[productID], sale)
	}
	if err := saleRows.Err(); err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Sales = salesByProduct[products[i].ProductID]
	}
	return products, nil
}

// PurchaseTotals returns purchase count and declared-cost sum in scope.
func (r *Repo) PurchaseTotals(ctx context.Context, f Filter) (int64, float64, error) {
	where, args := purchaseWhere(f)
	var count int64
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(p.total_cost), 0) FROM purchases p`+where, args...).
		Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("analytics: purchase totals: %w", err)
	}
	return count, total, nil
}

// ProductTotals returns product count and cost sum, scoped by garden only.
func (r *Repo) ProductTotals(ctx context.Context, f Filter) (int64, float64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(pr.cost), 0) FROM products pr`
	var args []any
	if f.GardenID > 0 {
		query += ` JOIN purchases p ON p.id = pr.purchase_id WHERE p.garden_id = $1`
		args = append(args, f.GardenID)
	}
	var count int64
	var costSum float64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count, &costSum); err != nil {
		return 0, 0, fmt.Errorf("analytics: product totals: %w", err)
	}
	return count, costSum, nil
}

// SaleTotals returns the count and realized revenue of completed sales. A
// garden filter scopes sales through the product's source purchase so revenue
// lines up with the cost side of the summary.
func (r *Repo) SaleTotals(ctx context.Context, f Filter) (int64, float64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(s.total_cost), 0)
		FROM sales s WHERE s.status = 'COMPLETED'`
	var args []any
	if f.GardenID > 0 {
		query = `SELECT COUNT(*), COALESCE(SUM(s.total_cost), 0)
		FROM sales s
		JOIN products pr ON pr.id = s.product_id
		JOIN purchases p ON p.id = pr.purchase_id
		WHERE s.status = 'COMPLETED' AND p.garden_id = $1`
		args = append(args, f.GardenID)
	}
	var count int64
	var revenue float64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count, &revenue); err != nil {
		return 0, 0, fmt.Errorf("analytics: sale totals: %w", err)
	}
	return count, revenue, nil
}

// RecentPurchases returns the latest purchases in scope with their product
// counts, newest first.
func (r *Repo) RecentPurchases(ctx context.Context, f Filter, limit int) ([]RecentPurchase, error) {
	where, args := purchaseWhere(f)
	args = append(args, limit)
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.purchase_code, COALESCE(g.name, ''),
		p.purchase_date, p.total_cost,
		(SELECT COUNT(*) FROM products WHERE purchase_id = p.id)
		FROM purchases p
		LEFT JOIN gardens g ON g.id = p.garden_id`+where+
		` ORDER BY p.purchase_date DESC, p.id DESC LIMIT $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("analytics: recent purchases: %w", err)
	}
	defer rows.Close()

	var out []RecentPurchase
	for rows.Next() {
		var row RecentPurchase
		if err := rows.Scan(&row.ID, &row.Code, &row.GardenName,
			&row.PurchaseDate, &row.TotalCost, &row.ProductCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
