package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chestergarett/twba/internal/dashsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLayoutNotFound is returned when no layout row exists for a name.
// Callers decide the fallback (the UI renders a default empty layout).
var ErrLayoutNotFound = errors.New("dashboard layout not found")

type LayoutStore struct {
	db *pgxpool.Pool
}

func NewLayoutStore(db *pgxpool.Pool) *LayoutStore {
	return &LayoutStore{db: db}
}

// SaveLayout inserts a row for an unseen dashboard name or overwrites the
// existing one. The ON CONFLICT clause keeps the name unique under
// concurrent first saves; whichever commits second wins.
func (r *LayoutStore) SaveLayout(ctx context.Context, name string, layout json.RawMessage) (*models.DashboardLayout, error) {
	query := `
        INSERT INTO dashboard_layouts (dashboard_name, layout)
        VALUES ($1, $2)
        ON CONFLICT (dashboard_name)
        DO UPDATE SET layout = EXCLUDED.layout, updated_at = now()
        RETURNING id, dashboard_name, layout, created_at, updated_at;
    `

	l := &models.DashboardLayout{}
	err := r.db.QueryRow(ctx, query, name, layout).Scan(
		&l.ID,
		&l.DashboardName,
		&l.Layout,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("could not save layout for %q: %w", name, err)
	}

	return l, nil
}

// GetLayoutByName returns the stored layout row, or ErrLayoutNotFound.
func (r *LayoutStore) GetLayoutByName(ctx context.Context, name string) (*models.DashboardLayout, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, dashboard_name, layout, created_at, updated_at
        FROM dashboard_layouts
        WHERE dashboard_name = $1
    `, name)

	l := &models.DashboardLayout{}
	err := row.Scan(
		&l.ID,
		&l.DashboardName,
		&l.Layout,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLayoutNotFound
	}
	if err != nil {
		return nil, err
	}

	return l, nil
}

// ListLayouts returns all saved layouts, most recently updated first.
func (r *LayoutStore) ListLayouts(ctx context.Context) ([]models.DashboardLayout, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, dashboard_name, layout, created_at, updated_at
        FROM dashboard_layouts
        ORDER BY updated_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layouts []models.DashboardLayout
	for rows.Next() {
		var l models.DashboardLayout
		if err := rows.Scan(&l.ID, &l.DashboardName, &l.Layout, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}

	return layouts, rows.Err()
}
