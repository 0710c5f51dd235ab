package ws

import (
	"encoding/json"
	"sync"

	"carvfi/internal/domain"
	"carvfi/internal/logger"
)

// Hub fans points events out to the websocket connections of each user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	connectedClients.Inc()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	connectedClients.Dec()
}

// Connections returns the number of open connections for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish delivers ev to the user's connections. Slow clients drop the
// message rather than block the caller.
func (h *Hub) Publish(ev domain.PointsEvent) {
	msg, err := json.Marshal(PointsMessage{Type: MsgPoints, PointsEvent: ev})
	if err != nil {
		logger.Error("ws: marshal points event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[ev.UserID] {
		select {
		case c.Send <- msg:
		default:
			droppedMessages.Inc()
			logger.Warn("ws: send buffer full, dropping message", "user_id", c.UserID)
		}
	}
}
