package board

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"propertydesk/internal/middleware"
	"propertydesk/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type Handler struct {
	hub      *Hub
	service  *Service
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewHandler builds the websocket endpoint. allowedOrigins empty means any
// origin is accepted (local development).
func NewHandler(hub *Hub, service *Service, allowedOrigins []string, log logrus.FieldLogger) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub:     hub,
		service: service,
		log:     logger.OrDiscard(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// RegisterRoutes expects rg to be behind JWTAuth, which accepts ?token= for
// browsers that cannot set headers on websocket requests.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/board", h.HandleWebSocket)
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID := middleware.UserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("board websocket upgrade failed")
		return
	}

	cl := h.hub.register(userID, conn)
	log := h.log.WithField("user_id", userID)
	log.Debug("board client connected")
	defer func() {
		h.hub.unregister(cl)
		log.Debug("board client disconnected")
	}()

	at := time.Now()
	if rooms, err := h.service.Snapshot(c.Request.Context(), at); err == nil {
		_ = cl.writeJSON(SnapshotEvent{Type: EventSnapshot, Rooms: rooms, At: at})
	} else {
		log.WithError(err).Warn("board snapshot failed")
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(cl, done)

	h.readLoop(c.Request.Context(), cl)
}

func pingLoop(cl *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := cl.ping(); err != nil {
				return
			}
		}
	}
}

// readLoop only answers pings and snapshot requests; the board is push-only.
func (h *Handler) readLoop(ctx context.Context, cl *client) {
	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Debug("board websocket closed")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = cl.writeJSON(ErrorEvent{Type: EventError, Code: "INVALID_JSON", Message: "Failed to parse message"})
			continue
		}

		switch msg.Type {
		case "ping":
			_ = cl.writeJSON(gin.H{"type": EventPong})
		case "snapshot":
			at := time.Now()
			rooms, err := h.service.Snapshot(ctx, at)
			if err != nil {
				_ = cl.writeJSON(ErrorEvent{Type: EventError, Code: "SNAPSHOT_FAILED", Message: "Could not load the board"})
				continue
			}
			_ = cl.writeJSON(SnapshotEvent{Type: EventSnapshot, Rooms: rooms, At: at})
		default:
			_ = cl.writeJSON(ErrorEvent{Type: EventError, Code: "UNKNOWN_TYPE", Message: "Unknown message type: " + msg.Type})
		}
	}
}
