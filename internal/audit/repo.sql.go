package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo reads audit_logs with the actor name resolved from users.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo constructs a repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func timelineWhere(f Filters) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if !f.From.IsZero() {
		add("a.occurred_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("a.occurred_at <= $%d", f.To)
	}
	if actor := strings.TrimSpace(f.Actor); actor != "" {
		add("u.name ILIKE $%d", "%"+actor+"%")
	}
	if entity := strings.TrimSpace(f.Entity); entity != "" {
		add("a.entity = $%d", entity)
	}
	if action := strings.TrimSpace(f.Action); action != "" {
		add("a.action = $%d", action)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

const timelineSelect = `
SELECT a.id, a.occurred_at, a.actor_id, COALESCE(u.name, ''), a.action, a.entity, a.entity_id, a.meta
FROM audit_logs a
LEFT JOIN users u ON u.id = a.actor_id`

// Timeline returns entries newest first. limit 0 means no limit.
func (r *Repo) Timeline(ctx context.Context, f Filters, limit, offset int) ([]Entry, error) {
	where, args := timelineWhere(f)
	query := timelineSelect + where + " ORDER BY a.occurred_at DESC, a.id DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit timeline: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.ActorID, &e.ActorName, &e.Action, &e.Entity, &e.EntityID, &e.Meta); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
