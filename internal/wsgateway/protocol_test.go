package wsgateway

import (
	"testing"

	"github.com/davidting0918/VegaExchange/internal/eventbus"
)

func TestResolveTopicPublicChannels(t *testing.T) {
	cases := []struct {
		channel, symbol, userID string
		wantTopic               string
		wantKind                eventbus.Kind
	}{
		{"pool", "BTC/USDT-USDT:SPOT", "", "pool:BTC/USDT-USDT:SPOT", eventbus.KindPool},
		{"orderbook", "ETH/USDT-USDT:SPOT", "", "orderbook:ETH/USDT-USDT:SPOT", eventbus.KindOrderBook},
		{"trade", "", "", "trade", eventbus.KindTrade},
	}
	for _, c := range cases {
		topic, kind, ok := resolveTopic(c.channel, c.symbol, c.userID)
		if !ok {
			t.Fatalf("channel %q should resolve without auth", c.channel)
		}
		if topic != c.wantTopic || kind != c.wantKind {
			t.Fatalf("resolveTopic(%q) = (%q, %q), want (%q, %q)", c.channel, topic, kind, c.wantTopic, c.wantKind)
		}
	}
}

func TestResolveTopicUserChannelRequiresAuth(t *testing.T) {
	if _, _, ok := resolveTopic("user", "", ""); ok {
		t.Fatalf("an unauthenticated client must not be able to subscribe to the user channel")
	}
	topic, kind, ok := resolveTopic("user", "", "000123")
	if !ok {
		t.Fatalf("an authenticated client should be able to subscribe to its own user channel")
	}
	if topic != "user:000123" || kind != eventbus.KindUser {
		t.Fatalf("unexpected user topic: %s/%s", topic, kind)
	}
}

func TestResolveTopicUnknownChannelRefused(t *testing.T) {
	if _, _, ok := resolveTopic("does-not-exist", "", "000123"); ok {
		t.Fatalf("an unrecognized channel name must be refused")
	}
}

func TestFrameFromEventRoundTrips(t *testing.T) {
	ev := eventbus.Event{Channel: eventbus.KindPool, Symbol: "BTC/USDT-USDT:SPOT", Data: map[string]any{"x": 1}}
	frame := frameFromEvent(ev)
	data, err := frame.marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty marshaled frame")
	}
}
