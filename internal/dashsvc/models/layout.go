package models

import (
	"encoding/json"
	"time"
)

// DashboardLayout represents the dashboard_layouts table in the database.
// One row per dashboard name; layout holds the serialized UI arrangement.
type DashboardLayout struct {
	ID            int64           `json:"id"`
	DashboardName string          `json:"dashboard_name"`
	Layout        json.RawMessage `json:"layout"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
