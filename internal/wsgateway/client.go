package wsgateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/davidting0918/VegaExchange/internal/platform/logging"
	"github.com/davidting0918/VegaExchange/internal/platform/metrics"
)

type outboundMsg struct {
	topic string
	data  []byte
}

// Client is one connected WebSocket session. Reads run on the calling
// goroutine (Hub.Serve blocks in readPump); writes are serialized by the
// single writePump goroutine per spec §4.7 ("writer is single-goroutine-
// equivalent per connection").
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	queueMu  sync.Mutex
	queue    []outboundMsg
	notify   chan struct{}
	closed   bool
	closeCh  chan struct{}
	closeOne sync.Once

	overflowMu sync.Mutex
	overflow   uint64
}

func newClient(h *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub: h, conn: conn, userID: userID,
		notify:  make(chan struct{}, 1),
		closeCh: make(chan struct{}),
	}
}

// enqueue applies spec §4.7's bounded-latest policy: push if there's room;
// otherwise drop the oldest pending message on the same topic and push.
// If the queue is full and nothing on this topic is pending (a backlog of
// other channels saturated it), the globally oldest message is dropped
// instead so the new one is never silently lost.
func (c *Client) enqueue(topic string, data []byte, m *metrics.Metrics) {
	c.queueMu.Lock()
	if c.closed {
		c.queueMu.Unlock()
		return
	}
	if len(c.queue) >= c.hub.cfg.OutboundQueueSize {
		dropped := false
		for i, msg := range c.queue {
			if msg.topic == topic {
				c.queue = append(c.queue[:i], c.queue[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			c.queue = c.queue[1:]
		}
		c.overflowMu.Lock()
		c.overflow++
		c.overflowMu.Unlock()
		if m != nil {
			m.WSOverflowTotal.WithLabelValues(topic).Inc()
		}
	}
	c.queue = append(c.queue, outboundMsg{topic: topic, data: data})
	c.queueMu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// OverflowCount reports how many messages this client has had dropped by
// the bounded-latest policy, per spec §4.7's "per-client overflow counter
// exposed internally."
func (c *Client) OverflowCount() uint64 {
	c.overflowMu.Lock()
	defer c.overflowMu.Unlock()
	return c.overflow
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case <-c.closeCh:
			return
		case <-c.notify:
			for {
				c.queueMu.Lock()
				if len(c.queue) == 0 {
					c.queueMu.Unlock()
					break
				}
				msg := c.queue[0]
				c.queue = c.queue[1:]
				c.queueMu.Unlock()

				c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteDeadline))
				if err := c.conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
					return
				}
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump blocks reading control frames until the connection errors or
// closes, applying subscribe/unsubscribe requests as they arrive.
func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			logging.Warn(ctx, "ws client sent malformed frame", "user_id", c.userID, "error", err)
			continue
		}
		topic, kind, ok := resolveTopic(frame.Channel, frame.Symbol, c.userID)
		if !ok {
			continue // unknown channel, or an unauthenticated "user" subscribe — refused silently
		}
		switch frame.Action {
		case "subscribe":
			c.hub.subscribe(topic, kind, c)
		case "unsubscribe":
			c.hub.unsubscribe(topic, c)
		}
	}
}

func (c *Client) close() {
	c.closeOne.Do(func() {
		c.queueMu.Lock()
		c.closed = true
		c.queueMu.Unlock()
		close(c.closeCh)
		c.conn.Close()
	})
}
