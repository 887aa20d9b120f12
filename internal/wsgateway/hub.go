// Package wsgateway implements the WebSocket hub of spec §4.7: client
// connections with bounded outbound queues, idempotent subscribe/
// unsubscribe, bounded-latest overflow semantics, and a single serialized
// writer per connection.
//
// Grounded on the connection-registry/write-pump shape of
// dangdinh2405-cryto-trading-web-backend/internal/handler/websocket_handler.go
// (register/unregister channels run from one goroutine, ping ticker,
// SetReadDeadline/SetWriteDeadline pattern) and on
// chycee-CryptoGo/internal/infra/websocket_worker.go for the
// single-writer-goroutine discipline. The per-channel bounded-latest drop
// policy and per-client overflow counter are spec-specific additions the
// teacher pack's hubs don't need, since the teacher's own hubs evict the
// whole client on a saturated queue instead.
package wsgateway

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/davidting0918/VegaExchange/internal/eventbus"
	"github.com/davidting0918/VegaExchange/internal/platform/logging"
	"github.com/davidting0918/VegaExchange/internal/platform/metrics"
)

// Config controls the hub's queueing and timeout behavior.
type Config struct {
	OutboundQueueSize int
	WriteDeadline     time.Duration
	PingInterval      time.Duration
}

// DefaultConfig matches spec §4.7's stated defaults.
func DefaultConfig() Config {
	return Config{OutboundQueueSize: 256, WriteDeadline: 10 * time.Second, PingInterval: 30 * time.Second}
}

// topicState tracks which clients are currently subscribed to one bus
// topic and the func that tears down the hub's own bus subscription.
type topicState struct {
	unsubscribe func()
	clients     map[*Client]struct{}
}

// Hub fans bus events out to connected WebSocket clients. One Hub per
// process; construct with New and start background bookkeeping is
// unnecessary — registration happens synchronously as clients (un)subscribe.
type Hub struct {
	bus     *eventbus.Bus
	metrics *metrics.Metrics
	cfg     Config

	mu      sync.Mutex
	clients map[*Client]struct{}
	topics  map[string]*topicState
}

// New constructs a Hub bound to bus.
func New(bus *eventbus.Bus, m *metrics.Metrics, cfg Config) *Hub {
	if cfg.OutboundQueueSize <= 0 {
		cfg.OutboundQueueSize = 256
	}
	if cfg.WriteDeadline <= 0 {
		cfg.WriteDeadline = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Hub{
		bus: bus, metrics: m, cfg: cfg,
		clients: make(map[*Client]struct{}),
		topics:  make(map[string]*topicState),
	}
}

// Serve upgrades conn into a registered Client and blocks until the
// connection closes (read loop exit), at which point it unregisters the
// client and tears down any now-empty topic subscriptions. userID is
// "" for an unauthenticated connection; such a client may still
// subscribe to public channels but not "user".
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID string) {
	c := newClient(h, conn, userID)

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSActiveConnections.Inc()
	}
	logging.Info(ctx, "ws client connected", "user_id", userID)

	go c.writePump()
	c.readPump(ctx) // blocks until the connection drops

	h.unregister(c)
	if h.metrics != nil {
		h.metrics.WSActiveConnections.Dec()
	}
	logging.Info(ctx, "ws client disconnected", "user_id", userID)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	for topic, st := range h.topics {
		if _, ok := st.clients[c]; ok {
			delete(st.clients, c)
			if len(st.clients) == 0 {
				st.unsubscribe()
				delete(h.topics, topic)
			}
		}
	}
	h.mu.Unlock()
	c.close()
}

// subscribe adds c to topic, lazily registering the hub's bus subscription
// the first time any client asks for it. Idempotent per spec §4.7.
func (h *Hub) subscribe(topic string, kind eventbus.Kind, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.topics[topic]
	if !ok {
		st = &topicState{clients: make(map[*Client]struct{})}
		st.unsubscribe = h.bus.Subscribe(topic, func(ev eventbus.Event) { h.dispatch(topic, ev) })
		h.topics[topic] = st
	}
	st.clients[c] = struct{}{}
}

// unsubscribe removes c from topic. Idempotent: a client not currently
// subscribed is a no-op.
func (h *Hub) unsubscribe(topic string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(st.clients, c)
	if len(st.clients) == 0 {
		st.unsubscribe()
		delete(h.topics, topic)
	}
}

// dispatch is called synchronously from eventbus.Bus.Publish; it must not
// block, so each client enqueue applies the bounded-latest drop policy
// itself rather than waiting on a full queue.
func (h *Hub) dispatch(topic string, ev eventbus.Event) {
	h.mu.Lock()
	st, ok := h.topics[topic]
	var targets []*Client
	if ok {
		targets = make([]*Client, 0, len(st.clients))
		for c := range st.clients {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	if len(targets) == 0 {
		return
	}

	frame := frameFromEvent(ev)
	data, err := frame.marshal()
	if err != nil {
		return
	}
	for _, c := range targets {
		c.enqueue(topic, data, h.metrics)
	}
}
