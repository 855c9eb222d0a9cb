package models

import "github.com/shopspring/decimal"

// TransactionSummary aggregates the twba_transactions table.
type TransactionSummary struct {
	TxnCount     int64           `json:"txn_count"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	AvgBasket    decimal.Decimal `json:"avg_basket"`
}
