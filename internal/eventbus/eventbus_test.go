package eventbus

import "testing"

func TestTopicRendersChannelAndSymbol(t *testing.T) {
	if got := Topic(KindPool, "BTC/USDT-USDT:spot"); got != "pool:BTC/USDT-USDT:spot" {
		t.Fatalf("unexpected topic: %s", got)
	}
	if got := Topic(KindTrade, "ignored"); got != "trade" {
		t.Fatalf("trade topic should ignore symbol, got %s", got)
	}
	if got := Topic(KindUser, "000123"); got != "user:000123" {
		t.Fatalf("unexpected user topic: %s", got)
	}
}

func TestSubscribePublishDelivers(t *testing.T) {
	b := New()
	var received []Event
	b.Subscribe("pool:X", func(ev Event) { received = append(received, ev) })

	b.Publish("pool:X", Event{Channel: KindPool, Symbol: "X"})
	if len(received) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(received))
	}
}

func TestPublishToUnsubscribedTopicIsNoop(t *testing.T) {
	b := New()
	// Should not panic even though nothing is subscribed.
	b.Publish("pool:NONE", Event{})
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	unsub := b.Subscribe("trade", func(Event) { count++ })

	b.Publish("trade", Event{})
	unsub()
	b.Publish("trade", Event{})

	if count != 1 {
		t.Fatalf("expected exactly 1 delivery before unsubscribe, got %d", count)
	}
	if b.SubscriberCount("trade") != 0 {
		t.Fatalf("expected topic to be cleaned up after last unsubscribe")
	}
}

func TestMultipleSubscribersAllReceive(t *testing.T) {
	b := New()
	var a, c int
	b.Subscribe("alert:X", func(Event) { a++ })
	b.Subscribe("alert:X", func(Event) { c++ })

	b.Publish("alert:X", Event{})

	if a != 1 || c != 1 {
		t.Fatalf("expected both subscribers to be called, got a=%d c=%d", a, c)
	}
}

func TestUnsubscribeOnlyRemovesItsOwnHandler(t *testing.T) {
	b := New()
	var first, second int
	unsubFirst := b.Subscribe("orderbook:X", func(Event) { first++ })
	b.Subscribe("orderbook:X", func(Event) { second++ })

	unsubFirst()
	b.Publish("orderbook:X", Event{})

	if first != 0 {
		t.Fatalf("unsubscribed handler should not have been called")
	}
	if second != 1 {
		t.Fatalf("remaining handler should still be called")
	}
}
