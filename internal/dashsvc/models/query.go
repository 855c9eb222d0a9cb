package models

// QueryResult holds the outcome of an ad-hoc SELECT.
type QueryResult struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
	Capped   bool     `json:"capped,omitempty"`
}
