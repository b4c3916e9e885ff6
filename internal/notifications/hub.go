package notifications

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"mdd/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 5
	// Max total connections
	maxTotalConns = 10000
)

var (
	ErrUserConnLimit   = errors.New("user connection limit reached")
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrHubClosed       = errors.New("hub is shut down")
)

// SubscriptionLookup answers which themes a user follows.
type SubscriptionLookup interface {
	SubscribedThemeIDs(ctx context.Context, userID uint) ([]uint, error)
}

// Hub maps userID -> connected feed clients and routes article events to
// users subscribed to the article's theme.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool

	subs SubscriptionLookup
}

// NewHub creates a hub that consults subs on every delivery.
func NewHub(subs SubscriptionLookup) *Hub {
	return &Hub{
		conns: make(map[uint]map[*Client]struct{}),
		subs:  subs,
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "feed hub" }

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := NewClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	middleware.ActiveWebSockets.Inc()
	return client, nil
}

// UnregisterClient removes client; calling it twice is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; exists {
		delete(m, client)
		h.totalConns--
		middleware.ActiveWebSockets.Dec()
		close(client.Send)
	}
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Connected returns the number of open connections for userID.
func (h *Hub) Connected(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// DeliverArticle sends payload to every connected user subscribed to themeID
// and returns how many users it reached.
func (h *Hub) DeliverArticle(ctx context.Context, themeID uint, payload []byte) int {
	h.mu.RLock()
	users := make([]uint, 0, len(h.conns))
	for userID := range h.conns {
		users = append(users, userID)
	}
	h.mu.RUnlock()

	reached := 0
	for _, userID := range users {
		ids, err := h.subs.SubscribedThemeIDs(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "feed delivery skipped user",
				slog.Uint64("user_id", uint64(userID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !slices.Contains(ids, themeID) {
			continue
		}
		if h.sendToUser(userID, payload) {
			reached++
		}
	}
	return reached
}

func (h *Hub) sendToUser(userID uint, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := false
	for c := range h.conns[userID] {
		if c.TrySend(payload) {
			sent = true
		}
	}
	return sent
}

// StartWiring connects the Notifier to this hub: every article event from
// Redis is routed through DeliverArticle.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartArticleSubscriber(ctx, func(themeID uint, payload string) {
		h.DeliverArticle(ctx, themeID, []byte(payload))
	})
}

// Shutdown closes every client's send channel; each WritePump then sends a
// close frame and drops its connection.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for _, userConns := range h.conns {
		for client := range userConns {
			close(client.Send)
			middleware.ActiveWebSockets.Dec()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
