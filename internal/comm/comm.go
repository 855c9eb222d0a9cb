package comm

import (
	"encoding/json"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "subscribe", "layout_saved"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

type SubscribeData struct {
	DashboardName string `json:"dashboard_name"`
}
