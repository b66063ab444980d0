// Package websocket fans panel events out to connected dashboard sessions.
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Message is the frame pushed to dashboard clients.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ToJSON serializes the message, falling back to an error frame if the
// payload is unencodable.
func (m Message) ToJSON() []byte {
	raw, err := json.Marshal(m)
	if err != nil {
		raw, _ = json.Marshal(Message{Type: "error", Timestamp: m.Timestamp})
	}
	return raw
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *logrus.Logger

	mu    sync.RWMutex
	stats HubStats
}

// HubStats is a snapshot of hub activity.
type HubStats struct {
	ConnectedClients int   `json:"connected_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
}

// NewHub creates a hub; call Run on its own goroutine.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run handles registration and broadcasting until the process exits.
func (h *Hub) Run() {
	if h.logger != nil {
		h.logger.Info("WebSocket hub started")
	}
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Broadcast queues a typed message for every connected client.
func (h *Hub) Broadcast(msgType string, data interface{}) {
	msg := Message{Type: msgType, Data: data, Timestamp: time.Now().UTC()}
	select {
	case h.broadcast <- msg.ToJSON():
	default:
		// Hub backlog full; drop rather than stall the producer.
		if h.logger != nil {
			h.logger.Warn("WebSocket broadcast backlog full, dropping message")
		}
	}
}

// Stats returns a snapshot of hub activity.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	h.stats.TotalConnections++
	h.stats.ConnectedClients = len(h.clients)

	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{
			"client_id":         client.ID,
			"connected_clients": len(h.clients),
		}).Info("WebSocket client connected")
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.stats.ConnectedClients = len(h.clients)

	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{
			"client_id":         client.ID,
			"connected_clients": len(h.clients),
		}).Info("WebSocket client disconnected")
	}
}

func (h *Hub) broadcastMessage(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
			h.stats.MessagesSent++
		default:
			// Slow consumer; cut it loose instead of backing up the hub.
			delete(h.clients, client)
			close(client.send)
		}
	}
	h.stats.ConnectedClients = len(h.clients)
}
