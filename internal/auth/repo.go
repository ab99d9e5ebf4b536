package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// Repository describes persistence operations used by the auth service.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	RecordLogin(ctx context.Context, userID int64, at time.Time, ip, userAgent string) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `SELECT id, email, COALESCE(name,''), password_hash, role, is_active, created_at, updated_at FROM users WHERE email = $1`, email)
}

func (r *pgRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, `SELECT id, email, COALESCE(name,''), password_hash, role, is_active, created_at, updated_at FROM users WHERE id = $1`, id)
}

func (r *pgRepository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *pgRepository) RecordLogin(ctx context.Context, userID int64, at time.Time, ip, userAgent string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO login_logs (user_id, logged_in_at, ip, user_agent) VALUES ($1, $2, $3, $4)`,
		userID, at, ip, userAgent)
	return err
}
