package importer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailom-erp/mailom-erp/internal/platform/db"
)

// Repo persists import plans. All writes for one workbook run inside a
// single repeatable-read transaction so a failed import leaves nothing
// behind.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs the repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// TxRepository exposes the write primitives the import needs.
type TxRepository interface {
	EnsureCostCategory(ctx context.Context, name, nameEn string) (int64, error)
	EnsureGarden(ctx context.Context, name string) (int64, error)
	InsertPurchase(ctx context.Context, code string, gardenID int64, date time.Time, supplierRef string, totalCost float64) (int64, error)
	InsertCostLine(ctx context.Context, purchaseID, categoryID int64, amount float64, description string) error
	InsertProduct(ctx context.Context, purchaseID, gardenID int64, code string, tree TreeRow) error
}

// WithTx runs fn inside one transaction.
func (r *Repo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

type txRepo struct {
	tx pgx.Tx
}

// EnsureCostCategory finds or creates a cost category by Thai name.
func (t *txRepo) EnsureCostCategory(ctx context.Context, name, nameEn string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM cost_categories WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}
	err = t.tx.QueryRow(ctx, `INSERT INTO cost_categories (name, name_en, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW()) RETURNING id`, name, nameEn).Scan(&id)
	return id, err
}

// EnsureGarden finds or creates a supplier garden by name.
func (t *txRepo) EnsureGarden(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM gardens WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}
	err = t.tx.QueryRow(ctx, `INSERT INTO gardens (kind, name, is_active, created_at, updated_at)
		VALUES ('SUPPLIER', $1, TRUE, NOW(), NOW()) RETURNING id`, name).Scan(&id)
	return id, err
}

func (t *txRepo) InsertPurchase(ctx context.Context, code string, gardenID int64, date time.Time, supplierRef string, totalCost float64) (int64, error) {
	if date.IsZero() {
		date = time.Now()
	}
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO purchases
		(purchase_code, garden_id, supplier_ref, purchase_date, total_cost, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'COMPLETED', NOW(), NOW()) RETURNING id`,
		code, gardenID, supplierRef, date, totalCost).Scan(&id)
	return id, err
}

func (t *txRepo) InsertCostLine(ctx context.Context, purchaseID, categoryID int64, amount float64, description string) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO purchase_cost_lines
		(purchase_id, cost_category_id, amount, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())`, purchaseID, categoryID, amount, description)
	return err
}

func (t *txRepo) InsertProduct(ctx context.Context, purchaseID, gardenID int64, code string, tree TreeRow) error {
	cost := tree.TotalCost
	if cost <= 0 {
		cost = tree.Price
	}
	price := tree.SalePrice
	if price <= 0 {
		// Listing price defaults to a 30% markup until someone prices it.
		price = cost * 1.3
	}
	_, err := t.tx.Exec(ctx, `INSERT INTO products
		(code, name, description, height_m, trunk_size_cm, pot_width_m, pot_height_m,
		 cost, price, status, purchase_id, garden_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'AVAILABLE',$10,$11,NOW(),NOW())`,
		code, tree.TreeName, tree.Note, tree.Height, tree.FaceWood,
		tree.PotWidth, tree.PotHeight, cost, price, purchaseID, gardenID)
	return err
}
