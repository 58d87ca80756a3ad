package websocket

import (
	"context"
	"log"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/evea/evea_backend/models"
)

const sendBuffer = 32

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected, authenticated WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Role   string
	send   chan Notification
}

func newClient(userID primitive.ObjectID, role string) *Client {
	return &Client{UserID: userID, Role: role, send: make(chan Notification, sendBuffer)}
}

// Hub tracks connected reviewers and vendors and fans registration events out to them.
// It implements services.EventPublisher.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Run blocks until ctx is done and then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// ConnectedClients reports how many sockets are open
func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishToAdmins sends an event to every connected reviewer
func (h *Hub) PublishToAdmins(event models.RegistrationEvent) {
	h.broadcast(eventNotification(event), func(c *Client) bool {
		return c.Role == models.RoleAdmin
	})
}

// PublishToUser sends an event to every connection of one vendor
func (h *Hub) PublishToUser(userID primitive.ObjectID, event models.RegistrationEvent) {
	h.broadcast(eventNotification(event), func(c *Client) bool {
		return c.UserID == userID
	})
}

// broadcast never blocks the caller. Slow clients lose the message.
func (h *Hub) broadcast(n Notification, match func(*Client) bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.send <- n:
		default:
			log.Printf("WebSocket send buffer full for %s, dropping %s", client.UserID.Hex(), n.Type)
		}
	}
}

func eventNotification(event models.RegistrationEvent) Notification {
	return Notification{Type: event.Type, Message: event.Message, Data: event}
}
