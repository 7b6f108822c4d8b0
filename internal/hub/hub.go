// Package hub fans board updates out to connected display clients.
package hub

import (
	"log/slog"
	"sync"

	"qms/core-api/internal/logger"

	jsoniter "github.com/json-iterator/go"
)

// Subscription narrows what a client receives. The zero value means the
// whole board.
type Subscription struct {
	Queue string
}

type Client struct {
	ID           string
	Send         chan []byte
	Subscription Subscription
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *slog.Logger
}

type SubscribeMessage struct {
	Action string `json:"action"`
	Queue  string `json:"queue"`
}

func New(log *slog.Logger) *Hub {
	if log == nil {
		log = logger.WithComponent("hub")
	}
	return &Hub{clients: make(map[string]*Client), log: log}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) UpdateSubscription(client *Client, sub Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.Subscription = sub
}

// Subscriptions returns each distinct subscription held by a connected client.
func (h *Hub) Subscriptions() []Subscription {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := make(map[Subscription]struct{}, len(h.clients))
	subs := make([]Subscription, 0, len(h.clients))
	for _, client := range h.clients {
		if _, ok := seen[client.Subscription]; ok {
			continue
		}
		seen[client.Subscription] = struct{}{}
		subs = append(subs, client.Subscription)
	}
	return subs
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers payload to every client holding exactly sub. Slow
// clients whose buffer is full miss the message.
func (h *Hub) Broadcast(payload []byte, sub Subscription) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.Subscription != sub {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			h.log.Warn("drop message for slow client", "client_id", client.ID)
		}
	}
}

func ParseSubscribe(data []byte) (SubscribeMessage, bool) {
	var msg SubscribeMessage
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &msg); err != nil {
		return SubscribeMessage{}, false
	}
	if msg.Action != "subscribe" && msg.Action != "unsubscribe" {
		return SubscribeMessage{}, false
	}
	return msg, true
}
