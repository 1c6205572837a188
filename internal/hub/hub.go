package hub

import (
	"encoding/json"
	"sync"

	"github.com/anonto42/matrimony/backend/internal/models"
	"go.uber.org/zap"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one open notification stream of a user
type Client chan []byte

// Hub fans stored notifications out to the open streams of their recipient.
// Delivery is best effort: a client whose buffer is full misses the event and
// catches up from the notification list.
type Hub struct {
	users  map[string]map[Client]bool
	mu     sync.RWMutex
	closed bool
	logger *zap.Logger
}

// NewHub creates a new Hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		users:  make(map[string]map[Client]bool),
		logger: logger,
	}
}

// Subscribe registers a new stream for userID
func (h *Hub) Subscribe(userID string, bufferSize int) Client {
	client := make(Client, bufferSize)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(client)
		return client
	}

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
	return client
}

// Unsubscribe removes a stream and closes its channel
func (h *Hub) Unsubscribe(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Close ends every open stream and turns later subscriptions away.
// The server calls it on shutdown so stream handlers return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for userID, clients := range h.users {
		for client := range clients {
			close(client)
		}
		delete(h.users, userID)
	}
	h.logger.Info("notification hub closed")
}

// Subscribers returns how many streams userID has open
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Broadcast sends an event to every stream of userID without blocking
func (h *Hub) Broadcast(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode hub event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	for client := range clients {
		select {
		case client <- messageBytes:
		default:
			h.logger.Debug("dropping event for slow client", zap.String("user_id", userID))
		}
	}
}

// Publish implements ledger.Publisher
func (h *Hub) Publish(userID string, notification models.Notification) {
	h.Broadcast(userID, Event{Type: "notification", Payload: notification})
}
