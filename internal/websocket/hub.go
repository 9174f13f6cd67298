package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/Sahani-Mohottige/SafeOnlineShop/pkg/logger"
)

const sendBufferSize = 64

// OrderEvent is pushed to every session of the order's owner.
type OrderEvent struct {
	Type       string       `json:"type"` // order.created, order.cancelled
	Order      *model.Order `json:"order"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// Client is one websocket session of a user.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Hub tracks websocket sessions per user and fans out order events to them.
type Hub struct {
	// UserID -> sessions, one per device
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage
	stop       chan struct{}
	stopOnce   sync.Once

	mu sync.RWMutex
}

type userMessage struct {
	UserID  uint
	Message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *userMessage, 1024),
		stop:       make(chan struct{}),
	}
}

// Run processes registrations and deliveries until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[message.UserID] {
				select {
				case client.Send <- message.Message:
				default:
					// slow consumer
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": message.UserID,
					})
				}
			}
			h.mu.RUnlock()

		case <-h.stop:
			h.mu.Lock()
			for userID, list := range h.clients {
				for _, client := range list {
					close(client.Send)
				}
				delete(h.clients, userID)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	remaining := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return
	}
	if len(remaining) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = remaining
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(remaining),
	})
}

// Stop ends Run and closes every session's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// NotifyOrder queues an order event for the owner's sessions. Events for users
// without a session are dropped.
func (h *Hub) NotifyOrder(userID uint, event string, order *model.Order) {
	if !h.IsUserOnline(userID) {
		return
	}

	data, err := json.Marshal(OrderEvent{
		Type:       event,
		Order:      order,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Error("Failed to marshal order event", err, map[string]interface{}{
			"user_id": userID,
			"event":   event,
		})
		return
	}

	select {
	case h.broadcast <- &userMessage{UserID: userID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, order event dropped", map[string]interface{}{
			"user_id": userID,
			"event":   event,
		})
	}
}

func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SessionCount returns the number of open sessions of a user.
func (h *Hub) SessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
