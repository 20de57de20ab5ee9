package events

import (
	"context"
	"encoding/json"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/metrics"
)

const clientBufferSize = 256

type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Client is a single dashboard connection. A client without topics receives every event.
type Client struct {
	ID     string
	Send   chan []byte
	topics mapset.Set[string]
}

func NewClient() *Client {
	return &Client{
		ID:     uuid.New().String(),
		Send:   make(chan []byte, clientBufferSize),
		topics: mapset.NewThreadUnsafeSet[string](),
	}
}

func (c *Client) wants(topic string) bool {
	return c.topics.Cardinality() == 0 || c.topics.Contains(topic)
}

// Hub tracks connected dashboards and broadcasts events to them
type Hub struct {
	mu      sync.RWMutex
	clients mapset.Set[*Client]

	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

var _ Publisher = &Hub{}

func NewHub(logger *zap.SugaredLogger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients: mapset.NewThreadUnsafeSet[*Client](),
		logger:  logger,
		metrics: m,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients.Add(client)
}

// Unregister removes the client and closes its send channel. Calling it twice is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients.Contains(client) {
		return
	}
	h.clients.Remove(client)
	close(client.Send)
}

func (h *Hub) Subscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.topics.Append(topics...)
}

func (h *Hub) Unsubscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.topics.RemoveAll(topics...)
}

func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		h.Subscribe(client, msg.Topics)
	case "unsubscribe":
		h.Unsubscribe(client, msg.Topics)
	}
}

func (h *Hub) Publish(_ context.Context, name string, payload any) error {
	event, err := NewEvent(name, payload)
	if err != nil {
		return err
	}

	h.metrics.EventsPublished.WithLabelValues(name).Inc()
	h.Broadcast(event)
	return nil
}

// Broadcast delivers the event to every interested client without blocking.
// Clients with a full buffer miss the event.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorw("unable to marshal event", "event", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	h.clients.Each(func(client *Client) bool {
		if !client.wants(event.Type) {
			return false
		}

		select {
		case client.Send <- data:
		default:
			h.metrics.EventsDropped.WithLabelValues(event.Type).Inc()
			h.logger.Warnw("dropping event for slow client", "event", event.Type, "clientId", client.ID)
		}
		return false
	})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.clients.Cardinality()
}

// SubscriberCount returns the number of clients that would receive an event of the given type
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	h.clients.Each(func(client *Client) bool {
		if client.wants(topic) {
			count++
		}
		return false
	})
	return count
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients.ToSlice() {
		close(client.Send)
	}
	h.clients.Clear()
}
