package services

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"diskpanel/internal/logging"
	"diskpanel/internal/models"
)

// Message types exchanged with dashboard pages
const (
	MessageSort        = "sort"
	MessagePing        = "ping"
	MessageUnsubscribe = "unsubscribe"
	MessageTable       = "table"
	MessagePong        = "pong"
	MessageError       = "error"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Key       string      `json:"key,omitempty"` // column for sort requests
}

// TablePayload is the table in its current display order
type TablePayload struct {
	SnapshotID string               `json:"snapshot_id"`
	Sort       models.SortState     `json:"sort"`
	Columns    []models.TableColumn `json:"columns"`
	Rows       []models.TableRow    `json:"rows"`
}

// SortSession owns the table order of one connected page. Messages are
// handled one at a time by the connection's read loop.
type SortSession struct {
	ID         string
	SnapshotID string
	Conn       *websocket.Conn
	Send       chan WebSocketMessage
	Close      chan struct{}

	controller *TableSortController
	metrics    *PipelineMetrics
	closeOnce  sync.Once
}

// NewSortSession builds a fresh, unsorted table from the snapshot
func NewSortSession(id string, snap *models.VolumeSnapshot, metrics *PipelineMetrics) *SortSession {
	return &SortSession{
		ID:         id,
		SnapshotID: snap.ID,
		Send:       make(chan WebSocketMessage, 16),
		Close:      make(chan struct{}),
		controller: NewTableSortController(models.NewVolumeTable(snap.Records)),
		metrics:    metrics,
	}
}

// Shutdown signals the write loop to stop
func (s *SortSession) Shutdown() {
	s.closeOnce.Do(func() { close(s.Close) })
}

// TableMessage returns the table in its current order. The rows are copied
// because the message is encoded on the write loop while later sorts reorder
// the controller's table.
func (s *SortSession) TableMessage() WebSocketMessage {
	table := s.controller.Table()
	return WebSocketMessage{
		Type:      MessageTable,
		Timestamp: time.Now(),
		Data: TablePayload{
			SnapshotID: s.SnapshotID,
			Sort:       s.controller.State(),
			Columns:    table.Columns,
			Rows:       slices.Clone(table.Rows),
		},
	}
}

// Handle processes one client message. It returns the reply, if any, and
// false when the client asked to end the session.
func (s *SortSession) Handle(msg WebSocketMessage) (*WebSocketMessage, bool) {
	switch msg.Type {
	case MessageSort:
		key, err := models.ParseSortKey(msg.Key)
		if err == nil {
			_, err = s.controller.Select(key)
		}
		if err != nil {
			return errorMessage(err), true
		}
		s.metrics.recordSort(string(key))
		reply := s.TableMessage()
		return &reply, true

	case MessagePing:
		return &WebSocketMessage{Type: MessagePong, Timestamp: time.Now()}, true

	case MessageUnsubscribe:
		return nil, false

	default:
		return errorMessage(errors.New("unknown message type: " + msg.Type)), true
	}
}

func errorMessage(err error) *WebSocketMessage {
	return &WebSocketMessage{Type: MessageError, Timestamp: time.Now(), Error: err.Error()}
}

// SessionHub tracks connected sort sessions
type SessionHub struct {
	mu       sync.RWMutex
	sessions map[string]*SortSession
	metrics  *PipelineMetrics
}

func NewSessionHub(metrics *PipelineMetrics) *SessionHub {
	return &SessionHub{
		sessions: make(map[string]*SortSession),
		metrics:  metrics,
	}
}

// Register adds a session to the hub
func (h *SessionHub) Register(s *SortSession) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	total := len(h.sessions)
	h.mu.Unlock()

	h.metrics.sessionOpened()
	logging.With("ws").Info().Str("session", s.ID).Str("snapshot", s.SnapshotID).Int("total", total).Msg("Sort session connected")
}

// Unregister removes a session and stops its write loop
func (h *SessionHub) Unregister(id string) {
	h.mu.Lock()
	s, exists := h.sessions[id]
	if exists {
		delete(h.sessions, id)
	}
	total := len(h.sessions)
	h.mu.Unlock()

	if !exists {
		return
	}
	s.Shutdown()
	h.metrics.sessionClosed()
	logging.With("ws").Info().Str("session", id).Int("total", total).Msg("Sort session disconnected")
}

// Count returns the number of connected sessions
func (h *SessionHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CloseAll shuts down every session, used on server shutdown
func (h *SessionHub) CloseAll() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Unregister(id)
	}
}
