package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TopicOrders receives every order event. A client following a single order
// subscribes to OrderTopic(id) instead.
const TopicOrders = "ordenes"

// OrderTopic is the room for events of one order.
func OrderTopic(id uuid.UUID) string {
	return "orden:" + id.String()
}

// Event is the message pushed to subscribers.
type Event struct {
	Type      string          `json:"type"`
	OrderID   uuid.UUID       `json:"orden_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// topicEvent routes an encoded event to the rooms it belongs to.
type topicEvent struct {
	topics  []string
	message []byte
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by topic
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *topicEvent

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *topicEvent, 256),
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for topic, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, topic)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.topic] == nil {
				h.rooms[client.topic] = make(map[*Client]bool)
			}
			h.rooms[client.topic][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			for _, topic := range event.topics {
				for client := range h.rooms[topic] {
					select {
					case client.send <- event.message:
					default:
						// Slow consumer; drop it.
						h.remove(client)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove drops client from its room. Caller holds h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.topic]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.topic)
	}
}

// Publish pushes an order event to the global room and to the order's own
// room. It never blocks: when the broadcast queue is full the event is dropped
// and clients catch up on their next read.
func (h *Hub) Publish(eventType string, orderID uuid.UUID, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("ws: marshal payload")
		return
	}
	message, err := json.Marshal(Event{
		Type:      eventType,
		OrderID:   orderID,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("ws: marshal event")
		return
	}

	select {
	case h.broadcast <- &topicEvent{topics: []string{TopicOrders, OrderTopic(orderID)}, message: message}:
	default:
		log.Warn().Str("event", eventType).Str("orden_id", orderID.String()).Msg("ws: broadcast queue full, event dropped")
	}
}

// Subscribers returns the number of clients in a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic])
}
