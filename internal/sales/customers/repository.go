package customers

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
	List(ctx context.Context, filters shared.ListFilters, typ string) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, c Customer) (Customer, error)
	Update(ctx context.Context, id int64, c Customer) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = `id, name, type, COALESCE(phone, ''), COALESCE(email, ''),
	COALESCE(address, ''), COALESCE(province, ''), COALESCE(district, ''),
	COALESCE(sub_district, ''), COALESCE(contact_info, ''), is_active`

func (r *repository) List(ctx context.Context, filters shared.ListFilters, typ string) ([]Customer, int, error) {
	where := ` WHERE is_active`
	args := []any{}
	argCount := 0

	if typ != "" {
		argCount++
		where += ` AND type = $` + strconv.Itoa(argCount)
		args = append(args, typ)
	}
	if filters.Search != "" {
		argCount++
		ph := `$` + strconv.Itoa(argCount)
		where += ` AND (name ILIKE ` + ph + ` OR phone ILIKE ` + ph + ` OR email ILIKE ` + ph + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("customers: count: %w", err)
	}

	query := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY name ASC`
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
		return nil, 0, fmt.Errorf("customers: list: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, c Customer) (Customer, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO customers
		(name, type, phone, email, address, province, district, sub_district,
		 contact_info, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,TRUE,NOW(),NOW()) RETURNING id`,
		c.Name, c.Type, c.Phone, c.Email, c.Address, c.Province, c.District,
		c.SubDistrict, c.ContactInfo).Scan(&c.ID)
	if err != nil {
		return Customer{}, fmt.Errorf("customers: create: %w", err)
	}
	c.IsActive = true
	return c, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Customer) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers
		SET name=$1, type=$2, phone=$3, email=$4, address=$5, province=$6,
			district=$7, sub_district=$8, contact_info=$9, updated_at=NOW()
		WHERE id=$10`,
		c.Name, c.Type, c.Phone, c.Email, c.Address, c.Province, c.District,
		c.SubDistrict, c.ContactInfo, id)
	if err != nil {
		return fmt.Errorf("customers: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Deactivate soft-deletes; sales keep their customer reference.
func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("customers: deactivate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Phone, &c.Email, &c.Address,
		&c.Province, &c.District, &c.SubDistrict, &c.ContactInfo, &c.IsActive)
	return c, err
}
