package purchases

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailom-erp/mailom-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the write operations that run inside one transaction.
// Cost lines are always replaced as a whole collection, never patched.
type TxRepository interface {
	CreatePurchase(ctx context.Context, p Purchase) (int64, error)
	UpdatePurchase(ctx context.Context, id int64, p Purchase) error
	DeleteCostLines(ctx context.Context, purchaseID int64) error
	InsertCostLine(ctx context.Context, line CostLine) error
	DeletePurchase(ctx context.Context, id int64) error
	CountProducts(ctx context.Context, purchaseID int64) (int, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// ListFilters restricts the purchase listing.
type ListFilters struct {
	Search   string
	GardenID int64
	Status   Status
	Page     int
	Limit    int
}

// List returns purchases newest first with their cost lines and slim product
// refs attached, so handlers can compute metrics without extra round trips.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Purchase, map[int64][]CostLine, map[int64][]ProductRef, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		ph := `$` + strconv.Itoa(argCount)
		where += ` AND (p.purchase_code ILIKE ` + ph + ` OR p.supplier_ref ILIKE ` + ph +
			` OR p.note ILIKE ` + ph + ` OR g.name ILIKE ` + ph + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.GardenID > 0 {
		argCount++
		where += ` AND p.garden_id = $` + strconv.Itoa(argCount)
		args = append(args, filters.GardenID)
	}
	if filters.Status != "" {
		argCount++
		where += ` AND p.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}

	from := ` FROM purchases p JOIN gardens g ON g.id = p.garden_id
		LEFT JOIN gardens og ON og.id = p.destination_garden_id`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, nil, nil, 0, err
	}

	query := `SELECT p.id, p.purchase_code, p.garden_id, g.name,
		COALESCE(p.destination_garden_id, 0), COALESCE(og.name, ''), COALESCE(p.supplier_ref, ''),
		p.purchase_date, p.total_cost, p.status, COALESCE(p.note, '')` + from + where +
		` ORDER BY p.purchase_date DESC, p.id DESC`
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
		return nil, nil, nil, 0, err
	}
	defer rows.Close()

	var purchases []Purchase
	var ids []int64
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.Code, &p.GardenID, &p.GardenName,
			&p.DestinationID, &p.DestinationName, &p.SupplierRef,
			&p.PurchaseDate, &p.TotalCost, &p.Status, &p.Note); err != nil {
			return nil, nil, nil, 0, err
		}
		purchases = append(purchases, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, 0, err
	}

	lines, err := r.costLinesFor(ctx, ids)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	products, err := r.productRefsFor(ctx, ids)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	return purchases, lines, products, total, nil
}

// Get returns one purchase with its cost lines and product refs.
func (r *Repository) Get(ctx context.Context, id int64) (Purchase, []CostLine, []ProductRef, error) {
	var p Purchase
	err := r.pool.QueryRow(ctx, `SELECT p.id, p.purchase_code, p.garden_id, g.name,
		COALESCE(p.destination_garden_id, 0), COALESCE(og.name, ''),
		COALESCE(p.supplier_ref, ''), p.purchase_date, p.total_cost, p.status, COALESCE(p.note, '')
		FROM purchases p JOIN gardens g ON g.id = p.garden_id
		LEFT JOIN gardens og ON og.id = p.destination_garden_id WHERE p.id = $1`, id).
		Scan(&p.ID, &p.Code, &p.GardenID, &p.GardenName,
			&p.DestinationID, &p.DestinationName, &p.SupplierRef,
			&p.PurchaseDate, &p.TotalCost, &p.Status, &p.Note)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchase{}, nil, nil, ErrNotFound
	}
	if err != nil {
		return Purchase{}, nil, nil, err
	}

	lines, err := r.costLinesFor(ctx, []int64{id})
	if err != nil {
		return Purchase{}, nil, nil, err
	}
	products, err := r.productRefsFor(ctx, []int64{id})
	if err != nil {
		return Purchase{}, nil, nil, err
	}
	return p, lines[id], products[id], nil
}

// CodeExists reports whether a purchase code is already taken by another row.
func (r *Repository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchases WHERE purchase_code = $1 AND id <> $2)`,
		code, excludeID).Scan(&exists)
	return exists, err
}

func (r *Repository) costLinesFor(ctx context.Context, purchaseIDs []int64) (map[int64][]CostLine, error) {
	result := make(map[int64][]CostLine, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT l.id, l.purchase_id, l.cost_category_id, c.name,
		l.amount, COALESCE(l.description, '')
		FROM purchase_cost_lines l JOIN cost_categories c ON c.id = l.cost_category_id
		WHERE l.purchase_id = ANY($1) ORDER BY l.id`, purchaseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line CostLine
		if err := rows.Scan(&line.ID, &line.PurchaseID, &line.CategoryID, &line.CategoryName,
			&line.Amount, &line.Description); err != nil {
			return nil, err
		}
		result[line.PurchaseID] = append(result[line.PurchaseID], line)
	}
	return result, rows.Err()
}

func (r *Repository) productRefsFor(ctx context.Context, purchaseIDs []int64) (map[int64][]ProductRef, error) {
	result := make(map[int64][]ProductRef, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, purchase_id, code, name, status, cost
		FROM products WHERE purchase_id = ANY($1) ORDER BY id`, purchaseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref ProductRef
		var purchaseID int64
		if err := rows.Scan(&ref.ID, &purchaseID, &ref.Code, &ref.Name, &ref.Status, &ref.Cost); err != nil {
			return nil, err
		}
		result[purchaseID] = append(result[purchaseID], ref)
	}
	return result, rows.Err()
}

func (tx *txRepo) CreatePurchase(ctx context.Context, p Purchase) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO purchases
		(purchase_code, garden_id, destination_garden_id, supplier_ref, purchase_date, total_cost, status, note, created_at, updated_at)
		VALUES ($1,$2,NULLIF($3,0),$4,$5,$6,$7,$8,NOW(),NOW()) RETURNING id`,
		p.Code, p.GardenID, p.DestinationID, p.SupplierRef, p.PurchaseDate, p.TotalCost, p.Status, p.Note).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateCode
	}
	return id, err
}

func (tx *txRepo) UpdatePurchase(ctx context.Context, id int64, p Purchase) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE purchases
		SET purchase_code=$1, garden_id=$2, destination_garden_id=NULLIF($3,0), supplier_ref=$4,
			purchase_date=$5, total_cost=$6, status=$7, note=$8, updated_at=NOW()
		WHERE id=$9`,
		p.Code, p.GardenID, p.DestinationID, p.SupplierRef, p.PurchaseDate, p.TotalCost, p.Status, p.Note, id)
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

func (tx *txRepo) DeleteCostLines(ctx context.Context, purchaseID int64) error {
	_, err := tx.tx.Exec(ctx, `DELETE FROM purchase_cost_lines WHERE purchase_id=$1`, purchaseID)
	return err
}

func (tx *txRepo) InsertCostLine(ctx context.Context, line CostLine) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO purchase_cost_lines
		(purchase_id, cost_category_id, amount, description)
		VALUES ($1,$2,$3,$4)`,
		line.PurchaseID, line.CategoryID, line.Amount, line.Description)
	return err
}

func (tx *txRepo) DeletePurchase(ctx context.Context, id int64) error {
	if err := tx.DeleteCostLines(ctx, id); err != nil {
		return err
	}
	tag, err := tx.tx.Exec(ctx, `DELETE FROM purchases WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) CountProducts(ctx context.Context, purchaseID int64) (int, error) {
	var count int
	err := tx.tx.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE purchase_id=$1`, purchaseID).Scan(&count)
	return count, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
