package query

import (
	"context"

	"github.com/chestergarett/twba/internal/dashsvc/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MaxRows caps ad-hoc query results so a careless SELECT cannot drag the
// whole table over the wire.
const MaxRows = 1000

type Runner struct {
	db *pgxpool.Pool
}

func NewRunner(db *pgxpool.Pool) *Runner {
	return &Runner{db: db}
}

// Run validates sql as a SELECT and executes it, returning columns and
// row values. Results stop at MaxRows and the cap is flagged.
func (r *Runner) Run(ctx context.Context, sql string) (*models.QueryResult, error) {
	if err := ValidateSelect(sql); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &models.QueryResult{Columns: columns}
	for rows.Next() {
		if result.RowCount >= MaxRows {
			result.Capped = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, values)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
