package notifications

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// Hub is a websocket hub mapping userID -> connected Clients. It fans
// every change-feed event out to all connections; clients respond by
// re-fetching the feed.
type Hub struct {
	mu          sync.RWMutex
	conns       map[string]map[*Client]struct{}
	totalConns  int
	unsubscribe func()
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*Client]struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "feed hub" }

// Register a connection for a given userID. Returns the Client or an error
// if limits are exceeded.
func (h *Hub) Register(userID string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}

	if len(m) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	return client, nil
}

// UnregisterClient removes a client from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(message)
		}
	}
}

// ConnectionCount reports the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring subscribes the hub to the change feed so every row-level
// event reaches connected clients.
func (h *Hub) StartWiring(ctx context.Context, feed ChangeFeed) error {
	unsubscribe, err := feed.Subscribe(ctx, func(e Event) {
		h.BroadcastAll([]byte(e.Encode()))
	})
	if err != nil {
		return err
	}
	h.unsubscribe = unsubscribe
	return nil
}

// Shutdown unsubscribes from the change feed and closes every connection.
func (h *Hub) Shutdown(_ context.Context) error {
	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.conns {
		for c := range clients {
			c.CloseSend()
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
