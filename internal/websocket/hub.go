package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a change notification pushed to browsers so open tabs can
// refresh the affected card.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     string         `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action, id string, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// Hub maintains the set of active WebSocket clients grouped by session.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	logger   *slog.Logger
	onChange func(count int)
}

// NewHub creates a new Hub. onChange, if set, is told the client count after
// every register and unregister.
func NewHub(logger *slog.Logger, onChange func(count int)) *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		logger:   logger,
		onChange: onChange,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.notify(n)
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.notify(n)
}

// CloseSession drops every client of an expired session and reports how many
// there were. Their connections close once the write loop sees the closed
// channel.
func (h *Hub) CloseSession(sessionKey string) int {
	h.mu.Lock()
	dropped := 0
	for c := range h.clients {
		if c.sessionKey != sessionKey {
			continue
		}
		delete(h.clients, c)
		close(c.send)
		dropped++
	}
	n := len(h.clients)
	h.mu.Unlock()
	if dropped > 0 {
		h.notify(n)
	}
	return dropped
}

// Broadcast sends a message to every connected client.
func (h *Hub) Broadcast(msg Message) {
	h.send(msg, func(*Client) bool { return true })
}

// Publish sends a message only to the clients of one session.
func (h *Hub) Publish(sessionKey string, msg Message) {
	h.send(msg, func(c *Client) bool { return c.sessionKey == sessionKey })
}

func (h *Hub) send(msg Message, match func(*Client) bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop rather than block the publisher.
			h.logger.Debug("dropped message for slow client", "type", msg.Type)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) notify(n int) {
	if h.onChange != nil {
		h.onChange(n)
	}
}
