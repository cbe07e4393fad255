package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is one notification pushed to panel clients. The panel reacts to
// the type alone; the counts let it show a "3 calendars, 1 unreachable"
// style summary without an extra fetch.
type Message struct {
	Type       string `json:"type"`
	SourceID   int64  `json:"source_id,omitempty"`
	EventCount int    `json:"event_count,omitempty"`
	ErrorCount int    `json:"error_count,omitempty"`
}

// CalendarRefreshed announces that a refresh cycle swapped in a new snapshot.
func CalendarRefreshed(eventCount, errorCount int) Message {
	return Message{Type: "calendar_refreshed", EventCount: eventCount, ErrorCount: errorCount}
}

// SourceCreated, SourceUpdated, and SourceDeleted announce registry changes.
// Each is followed by a CalendarRefreshed once the triggered refresh lands.
func SourceCreated(id int64) Message { return Message{Type: "source_created", SourceID: id} }
func SourceUpdated(id int64) Message { return Message{Type: "source_updated", SourceID: id} }
func SourceDeleted(id int64) Message { return Message{Type: "source_deleted", SourceID: id} }

// Hub tracks connected panel clients and fans notifications out to them. The
// most recent calendar_refreshed is kept and replayed to clients that connect
// later, so a panel reconnecting between refresh cycles still learns the
// current snapshot state.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	lastRefresh []byte
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client and replays the last calendar notification to it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.lastRefresh != nil {
		select {
		case c.send <- h.lastRefresh:
		default:
		}
	}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a notification to every connected client. A client whose
// send queue is full has the notification dropped; the panel recovers on the
// next refresh, and a stalled connection must never block the cycle.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal notification", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if msg.Type == "calendar_refreshed" {
		h.lastRefresh = data
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
