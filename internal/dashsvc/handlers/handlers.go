package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chestergarett/twba/internal/comm"
	"github.com/chestergarett/twba/internal/dashsvc/ai"
	"github.com/chestergarett/twba/internal/dashsvc/config"
	"github.com/chestergarett/twba/internal/dashsvc/models"
	"github.com/chestergarett/twba/internal/dashsvc/query"
	"github.com/chestergarett/twba/internal/dashsvc/service"
	"github.com/chestergarett/twba/internal/dashsvc/store"
	"github.com/chestergarett/twba/internal/dashsvc/ws"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// maxLayoutBytes bounds a single layout document.
const maxLayoutBytes = 1 << 20

// maxSocketFrameBytes bounds inbound websocket frames; clients only ever
// send small subscribe messages.
const maxSocketFrameBytes = 4 << 10

// QueryRunner executes a validated ad-hoc SELECT.
type QueryRunner interface {
	Run(ctx context.Context, sql string) (*models.QueryResult, error)
}

// AskAssistant answers natural language questions with generated SQL.
type AskAssistant interface {
	Enabled() bool
	Ask(ctx context.Context, question string) (string, *models.QueryResult, error)
}

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	cfg       config.Config
	layouts   *service.LayoutService
	analytics *service.AnalyticsService
	runner    QueryRunner
	assistant AskAssistant
	hub       *ws.Hub
	upgrader  websocket.Upgrader
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func NewHandler(cfg config.Config, layouts *service.LayoutService, analytics *service.AnalyticsService,
	runner QueryRunner, assistant AskAssistant, hub *ws.Hub) *Handler {
	return &Handler{
		cfg:       cfg,
		layouts:   layouts,
		analytics: analytics,
		runner:    runner,
		assistant: assistant,
		hub:       hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "dashboard service is running at port " + h.cfg.Port,
		Code:    http.StatusOK,
	})
}

// LoginHandler checks the env-configured credentials and issues a JWT.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid JSON body"})
		return
	}

	if req.Username != h.cfg.AuthUsername || req.Password != h.cfg.AuthPassword {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid username or password"})
		return
	}

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"username": req.Username,
		"exp":      expirationTime,
	})
	if err != nil {
		log.Errorf("failed to encode JWT: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "could not issue token"})
		return
	}

	h.CreateResponse(w, Response{
		Message: "login successful",
		Code:    http.StatusOK,
		Data:    map[string]string{"token": tokenString},
	})
}

func (h *Handler) ListLayoutsHandler(w http.ResponseWriter, r *http.Request) {
	layouts, err := h.layouts.ListLayouts(r.Context())
	if err != nil {
		log.Errorf("failed to list layouts: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "could not list layouts"})
		return
	}
	if layouts == nil {
		layouts = []models.DashboardLayout{}
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: layouts})
}

func (h *Handler) GetLayoutHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	layout, err := h.layouts.GetLayout(r.Context(), name)
	if errors.Is(err, store.ErrLayoutNotFound) {
		// caller falls back to its default empty layout
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "layout not found"})
		return
	}
	if err != nil {
		log.Errorf("failed to load layout %q: %v", name, err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "could not load layout"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: layout})
}

// SaveLayoutHandler upserts the layout for the named dashboard. The body
// is the raw layout JSON document.
func (h *Handler) SaveLayoutHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLayoutBytes))
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "could not read layout body"})
		return
	}
	if !json.Valid(body) {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "layout must be a valid JSON document"})
		return
	}

	saved, err := h.layouts.SaveLayout(r.Context(), name, body)
	if err != nil {
		log.Errorf("failed to save layout %q: %v", name, err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "could not save layout"})
		return
	}

	if h.hub != nil {
		h.hub.NotifyLayoutSaved(saved)
	}

	h.CreateResponse(w, Response{Message: "layout saved", Code: http.StatusOK, Data: saved})
}

// QueryHandler runs a SELECT-only ad-hoc query from the query editor.
func (h *Handler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SQL string `json:"sql"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid JSON body"})
		return
	}

	if err := query.ValidateSelect(req.SQL); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: err.Error()})
		return
	}

	result, err := h.runner.Run(r.Context(), req.SQL)
	if err != nil {
		log.Errorf("query execution failed: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "query execution failed"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: result})
}

// AskHandler turns a natural language question into SQL and runs it.
func (h *Handler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !h.assistant.Enabled() {
		h.CreateResponse(w, Response{Code: http.StatusServiceUnavailable, Error: ai.ErrNotConfigured.Error()})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "question is empty"})
		return
	}

	sql, result, err := h.assistant.Ask(r.Context(), req.Question)
	if err != nil {
		log.Errorf("ask ai failed: %v", err)
		code := http.StatusBadGateway // upstream OpenAI or query execution failure
		if errors.Is(err, ai.ErrInvalidSQL) {
			code = http.StatusBadRequest
		}
		h.CreateResponse(w, Response{
			Code:  code,
			Data:  map[string]string{"sql": sql},
			Error: err.Error(),
		})
		return
	}

	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: map[string]interface{}{"sql": sql, "result": result},
	})
}

func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.TransactionSummary(r.Context())
	if err != nil {
		log.Errorf("failed to build transaction summary: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "could not build summary"})
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: summary})
}

// HandleWebSocket upgrades the connection and feeds client messages into
// the hub until the socket closes.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("failed to upgrade to WebSocket: %v", err)
		return
	}

	socketId := uuid.New().String()
	h.hub.StoreConnection(socketId, conn)

	log.Infof("new WebSocket connection established: %s", socketId)

	go h.handleConnection(conn, socketId)
}

func (h *Handler) handleConnection(conn *websocket.Conn, socketId string) {
	defer func() {
		log.Infof("closing WebSocket connection: %s", socketId)
		conn.Close()
		h.hub.HandleDisconnect(socketId)
	}()

	conn.SetReadLimit(maxSocketFrameBytes)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("WebSocket unexpected close for socket %s: %v", socketId, err)
			}
			break
		}

		message := &comm.WSMessage{}
		if err := json.Unmarshal(raw, message); err != nil {
			log.Errorf("failed to unmarshal message from socket %s: %v", socketId, err)
			continue
		}

		h.hub.SocketMessage(socketId, message)
	}
}
