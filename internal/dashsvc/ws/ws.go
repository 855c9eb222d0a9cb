package ws

import (
	"encoding/json"
	"sync"

	"github.com/chestergarett/twba/internal/comm"
	"github.com/chestergarett/twba/internal/dashsvc/models"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// client pairs a connection with a write lock. gorilla/websocket allows
// at most one concurrent writer, and notifications arrive from many
// request goroutines at once.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks websocket connections and which dashboard each one watches.
type Hub struct {
	connMap sync.Map // socketId -> *client
	dashMap sync.Map // socketId -> dashboard name
}

func NewHub() *Hub {
	return &Hub{}
}

// SocketMessage handles a message from a web client.
func (h *Hub) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "subscribe":
		h.handleSubscribe(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (h *Hub) handleSubscribe(socketId string, msg *comm.WSMessage) {
	var payload comm.SubscribeData
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("malformed subscribe payload from socket %s: %v", socketId, err)
		return
	}

	if payload.DashboardName == "" {
		log.Errorf("invalid subscribe payload: missing dashboard_name")
		return
	}

	h.dashMap.Store(socketId, payload.DashboardName)
	log.Infof("socket %s subscribed to dashboard %q", socketId, payload.DashboardName)
}

// NotifyLayoutSaved pushes the saved layout row to every socket watching
// that dashboard name. Safe to call from concurrent request goroutines;
// writes to each socket are serialized by its client lock.
func (h *Hub) NotifyLayoutSaved(layout *models.DashboardLayout) {
	data, err := json.Marshal(layout)
	if err != nil {
		log.Errorf("failed to marshal layout notification: %v", err)
		return
	}
	out := comm.WSMessage{Type: "layout_saved", Data: data}

	h.dashMap.Range(func(key, value any) bool {
		if value.(string) != layout.DashboardName {
			return true
		}
		socketId := key.(string)
		c, ok := h.connMap.Load(socketId)
		if !ok {
			return true
		}
		if err := c.(*client).writeJSON(out); err != nil {
			log.Errorf("failed to notify socket %s: %v", socketId, err)
			h.HandleDisconnect(socketId)
		}
		return true
	})
}

func (h *Hub) StoreConnection(socketId string, conn *websocket.Conn) {
	h.connMap.Store(socketId, &client{conn: conn})
}

func (h *Hub) GetConnection(socketId string) (*websocket.Conn, bool) {
	c, ok := h.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return c.(*client).conn, true
}

// HandleDisconnect drops the socket from both registries.
func (h *Hub) HandleDisconnect(socketId string) {
	h.connMap.Delete(socketId)
	h.dashMap.Delete(socketId)
}
