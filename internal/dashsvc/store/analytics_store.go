package store

import (
	"context"

	"github.com/chestergarett/twba/internal/dashsvc/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AnalyticsStore struct {
	db *pgxpool.Pool
}

func NewAnalyticsStore(db *pgxpool.Pool) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// TransactionSummary aggregates the transactions table. Baskets below 500
// are dropped as outliers, matching how the dashboard charts filter.
func (c *AnalyticsStore) TransactionSummary(ctx context.Context) (*models.TransactionSummary, error) {
	var count int64
	var gross decimal.Decimal

	err := c.db.QueryRow(ctx, `
        SELECT
            COUNT(*),
            COALESCE(SUM(basket_total), 0)
        FROM twba_transactions
        WHERE basket_total >= 500
    `).Scan(&count, &gross)
	if err != nil {
		return nil, err
	}

	s := &models.TransactionSummary{
		TxnCount:     count,
		GrossRevenue: gross,
	}
	if count > 0 {
		s.AvgBasket = gross.Div(decimal.NewFromInt(count)).Round(2)
	}

	return s, nil
}
