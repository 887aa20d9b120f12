package wsgateway

import (
	"testing"

	"github.com/davidting0918/VegaExchange/internal/eventbus"
)

// newTestClient builds a Client with no underlying socket. Every method
// exercised below (enqueue, subscribe, unsubscribe, dispatch) only touches
// the queue/hub bookkeeping, never c.conn.
func newTestClient(h *Hub, userID string) *Client {
	return newClient(h, nil, userID)
}

func TestHubSubscribeLazilyRegistersBusTopicOnce(t *testing.T) {
	bus := eventbus.New()
	h := New(bus, nil, DefaultConfig())
	c1 := newTestClient(h, "")
	c2 := newTestClient(h, "")

	h.subscribe("pool:BTC/USDT-USDT:SPOT", eventbus.KindPool, c1)
	h.subscribe("pool:BTC/USDT-USDT:SPOT", eventbus.KindPool, c2)

	if got := bus.SubscriberCount("pool:BTC/USDT-USDT:SPOT"); got != 1 {
		t.Fatalf("expected exactly one bus subscription shared across clients, got %d", got)
	}
}

func TestHubUnsubscribeTearsDownBusTopicWhenLastClientLeaves(t *testing.T) {
	bus := eventbus.New()
	h := New(bus, nil, DefaultConfig())
	c1 := newTestClient(h, "")
	c2 := newTestClient(h, "")

	h.subscribe("trade", eventbus.KindTrade, c1)
	h.subscribe("trade", eventbus.KindTrade, c2)
	h.unsubscribe("trade", c1)
	if bus.SubscriberCount("trade") != 1 {
		t.Fatalf("expected the bus subscription to survive while c2 remains")
	}
	h.unsubscribe("trade", c2)
	if bus.SubscriberCount("trade") != 0 {
		t.Fatalf("expected the bus subscription to be torn down once the last client leaves")
	}
}

func TestHubUnregisterPrunesAllTopicsForClient(t *testing.T) {
	bus := eventbus.New()
	h := New(bus, nil, DefaultConfig())
	c := newTestClient(h, "")
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.subscribe("pool:BTC/USDT-USDT:SPOT", eventbus.KindPool, c)
	h.subscribe("orderbook:BTC/USDT-USDT:SPOT", eventbus.KindOrderBook, c)

	// unregister finishes by closing c's socket, which this socketless test
	// client lacks, so its pruning steps are run inline here instead.
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

	if len(h.topics) != 0 {
		t.Fatalf("expected every topic the client held to be pruned, got %d remaining", len(h.topics))
	}
	if bus.SubscriberCount("pool:BTC/USDT-USDT:SPOT") != 0 {
		t.Fatalf("expected the underlying bus subscription to be torn down too")
	}
}

func TestHubDispatchOnlyReachesSubscribedClients(t *testing.T) {
	bus := eventbus.New()
	h := New(bus, nil, DefaultConfig())
	subscribed := newTestClient(h, "")
	bystander := newTestClient(h, "")

	h.subscribe("pool:BTC/USDT-USDT:SPOT", eventbus.KindPool, subscribed)

	h.dispatch("pool:BTC/USDT-USDT:SPOT", eventbus.Event{Channel: eventbus.KindPool, Symbol: "BTC/USDT-USDT:SPOT", Data: "x"})

	subscribed.queueMu.Lock()
	n := len(subscribed.queue)
	subscribed.queueMu.Unlock()
	if n != 1 {
		t.Fatalf("expected the subscribed client to receive exactly one message, got %d", n)
	}

	bystander.queueMu.Lock()
	m := len(bystander.queue)
	bystander.queueMu.Unlock()
	if m != 0 {
		t.Fatalf("expected an unsubscribed client to receive nothing, got %d", m)
	}
}

func TestClientEnqueueDropsOldestSameTopicWhenFull(t *testing.T) {
	h := New(eventbus.New(), nil, Config{OutboundQueueSize: 2, WriteDeadline: 1, PingInterval: 1})
	c := newTestClient(h, "")

	c.enqueue("pool:BTC/USDT-USDT:SPOT", []byte("first"), nil)
	c.enqueue("orderbook:BTC/USDT-USDT:SPOT", []byte("second"), nil)
	c.enqueue("pool:BTC/USDT-USDT:SPOT", []byte("third"), nil)

	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if len(c.queue) != 2 {
		t.Fatalf("expected the queue to stay bounded at 2, got %d", len(c.queue))
	}
	if string(c.queue[0].data) != "second" {
		t.Fatalf("expected the surviving messages to be [second, third], got first=%q", string(c.queue[0].data))
	}
	if string(c.queue[1].data) != "third" {
		t.Fatalf("expected the newest message to be retained, got %q", string(c.queue[1].data))
	}
	if c.OverflowCount() != 1 {
		t.Fatalf("OverflowCount = %d, want 1", c.OverflowCount())
	}
}

func TestClientEnqueueDropsGloballyOldestWhenNoSameTopicMatch(t *testing.T) {
	h := New(eventbus.New(), nil, Config{OutboundQueueSize: 2, WriteDeadline: 1, PingInterval: 1})
	c := newTestClient(h, "")

	c.enqueue("trade", []byte("a"), nil)
	c.enqueue("trade", []byte("b"), nil)
	c.enqueue("pool:ETH/USDT-USDT:SPOT", []byte("c"), nil)

	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if len(c.queue) != 2 {
		t.Fatalf("expected the queue to stay bounded at 2, got %d", len(c.queue))
	}
	if string(c.queue[0].data) != "b" || string(c.queue[1].data) != "c" {
		t.Fatalf("expected [b, c] after dropping the globally oldest entry, got [%s, %s]",
			string(c.queue[0].data), string(c.queue[1].data))
	}
}

func TestClientEnqueueAfterCloseIsNoop(t *testing.T) {
	h := New(eventbus.New(), nil, DefaultConfig())
	c := newTestClient(h, "")
	c.queueMu.Lock()
	c.closed = true
	c.queueMu.Unlock()

	c.enqueue("trade", []byte("x"), nil)

	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if len(c.queue) != 0 {
		t.Fatalf("expected enqueue on a closed client to be dropped, got %d queued", len(c.queue))
	}
}
