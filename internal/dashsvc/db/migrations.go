package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS dashboard_layouts (
		id             bigserial PRIMARY KEY,
		dashboard_name text NOT NULL UNIQUE,
		layout         jsonb NOT NULL,
		created_at     timestamptz NOT NULL DEFAULT now(),
		updated_at     timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dashboard_layouts_name
		ON dashboard_layouts (dashboard_name)`,
}

// RunMigrations bootstraps the schema. Statements are idempotent so this
// is safe to run on every startup.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, m := range migrations {
		if _, err := pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
