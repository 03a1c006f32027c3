package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"diskpanel/internal/logging"
	"diskpanel/internal/middleware"
	"diskpanel/internal/services"
)

const (
	maxMessageSize = 4096
	writeWait      = 10 * time.Second
)

// WebSocketController attaches sort sessions to rendered dashboard pages
type WebSocketController struct {
	store     *services.SnapshotStore
	auth      *services.AuthService
	hub       *services.SessionHub
	metrics   *services.PipelineMetrics
	validator *middleware.InputValidator
	upgrader  websocket.Upgrader
}

func NewWebSocketController(store *services.SnapshotStore, auth *services.AuthService, hub *services.SessionHub, metrics *services.PipelineMetrics) *WebSocketController {
	return &WebSocketController{
		store:     store,
		auth:      auth,
		hub:       hub,
		metrics:   metrics,
		validator: middleware.NewInputValidator(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Sessions are bound by token, not by origin
				return true
			},
		},
	}
}

// HandleWebSocket handles incoming WebSocket connections
func (wc *WebSocketController) HandleWebSocket(c *gin.Context) {
	logger := logging.With("ws")

	token := c.Query("token")
	if !wc.validator.ValidateToken(token) {
		logger.Warn().Str("ip", c.ClientIP()).Msg("Rejected session with malformed token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed token"})
		return
	}

	claims, err := wc.auth.ValidateToken(token)
	if err != nil {
		logger.Warn().Str("ip", c.ClientIP()).Err(err).Msg("Rejected session with invalid token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	snap, err := wc.store.Get(claims.SnapshotID)
	if errors.Is(err, services.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot expired, reload the page"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ws, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Upgrade error")
		return
	}
	ws.SetReadLimit(maxMessageSize)

	session := services.NewSortSession(uuid.NewString(), snap, wc.metrics)
	session.Conn = ws
	wc.hub.Register(session)

	// Initial table in source order
	session.Send <- session.TableMessage()

	go wc.readPump(session)
	go wc.writePump(session)
}

// readPump handles client messages one at a time
func (wc *WebSocketController) readPump(session *services.SortSession) {
	defer func() {
		wc.hub.Unregister(session.ID)
		session.Conn.Close()
	}()

	for {
		var msg services.WebSocketMessage
		if err := session.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.With("ws").Debug().Str("session", session.ID).Err(err).Msg("Read error")
			}
			return
		}

		reply, keep := session.Handle(msg)
		if reply != nil {
			select {
			case session.Send <- *reply:
			case <-session.Close:
				return
			}
		}
		if !keep {
			return
		}
	}
}

// writePump writes messages to the WebSocket client
func (wc *WebSocketController) writePump(session *services.SortSession) {
	defer session.Conn.Close()

	for {
		select {
		case msg := <-session.Send:
			session.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := session.Conn.WriteJSON(msg); err != nil {
				logging.With("ws").Debug().Str("session", session.ID).Err(err).Msg("Write error")
				return
			}

		case <-session.Close:
			session.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			session.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
