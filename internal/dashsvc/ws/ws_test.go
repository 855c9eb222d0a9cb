package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chestergarett/twba/internal/comm"
	"github.com/chestergarett/twba/internal/dashsvc/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialHub spins up a throwaway server that registers every incoming
// connection under the given socket id.
func dialHub(t *testing.T, h *Hub, socketId string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		h.StoreConnection(socketId, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// wait for the server side to land in the hub
	require.Eventually(t, func() bool {
		_, ok := h.GetConnection(socketId)
		return ok
	}, time.Second, 10*time.Millisecond)

	return client
}

func subscribe(t *testing.T, h *Hub, socketId, dashboard string) {
	t.Helper()
	data, err := json.Marshal(comm.SubscribeData{DashboardName: dashboard})
	require.NoError(t, err)
	h.SocketMessage(socketId, &comm.WSMessage{Type: "subscribe", Data: data})
}

func TestNotifyLayoutSavedReachesSubscriber(t *testing.T) {
	h := NewHub()
	client := dialHub(t, h, "sock-1")
	subscribe(t, h, "sock-1", "main")

	h.NotifyLayoutSaved(&models.DashboardLayout{
		ID:            1,
		DashboardName: "main",
		Layout:        json.RawMessage(`{"tabs":[]}`),
	})

	client.SetReadDeadline(time.Now().Add(time.Second))
	var msg comm.WSMessage
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, "layout_saved", msg.Type)

	var l models.DashboardLayout
	require.NoError(t, json.Unmarshal(msg.Data, &l))
	assert.Equal(t, "main", l.DashboardName)
}

func TestConcurrentNotifiesDeliverIntactFrames(t *testing.T) {
	h := NewHub()
	client := dialHub(t, h, "sock-c")
	subscribe(t, h, "sock-c", "main")

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			h.NotifyLayoutSaved(&models.DashboardLayout{
				ID:            int64(n),
				DashboardName: "main",
				Layout:        json.RawMessage(`{"tabs":["overview"]}`),
			})
		}(i)
	}
	wg.Wait()

	// every frame must arrive as parseable JSON; interleaved writes
	// would corrupt frames and break the first read
	client.SetReadDeadline(time.Now().Add(time.Second))
	for i := 0; i < writers; i++ {
		var msg comm.WSMessage
		require.NoError(t, client.ReadJSON(&msg))
		assert.Equal(t, "layout_saved", msg.Type)

		var l models.DashboardLayout
		require.NoError(t, json.Unmarshal(msg.Data, &l))
		assert.Equal(t, "main", l.DashboardName)
	}
}

func TestNotifyLayoutSavedSkipsOtherDashboards(t *testing.T) {
	h := NewHub()
	client := dialHub(t, h, "sock-2")
	subscribe(t, h, "sock-2", "other")

	h.NotifyLayoutSaved(&models.DashboardLayout{
		DashboardName: "main",
		Layout:        json.RawMessage(`{}`),
	})

	client.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err := client.ReadMessage()
	assert.Error(t, err, "no notification expected for an unrelated dashboard")
}

func TestHandleDisconnectCleansRegistries(t *testing.T) {
	h := NewHub()
	dialHub(t, h, "sock-3")
	subscribe(t, h, "sock-3", "main")

	h.HandleDisconnect("sock-3")

	_, ok := h.GetConnection("sock-3")
	assert.False(t, ok)
	_, ok = h.dashMap.Load("sock-3")
	assert.False(t, ok)
}

func TestSubscribeIgnoresBadPayload(t *testing.T) {
	h := NewHub()
	h.SocketMessage("sock-4", &comm.WSMessage{Type: "subscribe", Data: json.RawMessage(`{"dashboard_name":`)})
	h.SocketMessage("sock-4", &comm.WSMessage{Type: "subscribe", Data: json.RawMessage(`{}`)})

	_, ok := h.dashMap.Load("sock-4")
	assert.False(t, ok)
}
