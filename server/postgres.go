package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const plansSchema = `
CREATE TABLE IF NOT EXISTS plans (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	body       JSONB NOT NULL
)`

// PostgresStore keeps plans as JSON documents in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ PlanStore = &PostgresStore{}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the plans table if it is missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, plansSchema); err != nil {
		return fmt.Errorf("failed to create plans table: %w", err)
	}
	return nil
}

func (p *PostgresStore) SavePlan(ctx context.Context, plan Plan) error {
	body, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO plans (id, created_at, body) VALUES ($1, $2, $3)`,
		plan.ID, plan.CreatedAt, body)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

func (p *PostgresStore) GetPlan(ctx context.Context, id string) (Plan, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, `SELECT body FROM plans WHERE id = $1`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, fmt.Errorf("failed to get plan: %w", err)
	}
	var plan Plan
	if err := json.Unmarshal(body, &plan); err != nil {
		return Plan{}, fmt.Errorf("failed to decode plan: %w", err)
	}
	return plan, nil
}

func (p *PostgresStore) ListPlans(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id FROM plans ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan plan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
