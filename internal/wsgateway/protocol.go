package wsgateway

import (
	"encoding/json"

	"github.com/davidting0918/VegaExchange/internal/eventbus"
)

// clientFrame is an inbound control message: spec §6's
// {action: "subscribe"|"unsubscribe", channel, symbol?}.
type clientFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
	Symbol  string `json:"symbol,omitempty"`
}

// serverFrame is an outbound event: spec §6's {channel, symbol?, data}.
type serverFrame struct {
	Channel string `json:"channel"`
	Symbol  string `json:"symbol,omitempty"`
	Data    any    `json:"data"`
}

func (f serverFrame) marshal() ([]byte, error) { return json.Marshal(f) }

func frameFromEvent(ev eventbus.Event) serverFrame {
	return serverFrame{Channel: string(ev.Channel), Symbol: ev.Symbol, Data: ev.Data}
}

// resolveTopic maps a client-facing channel name + symbol to the internal
// eventbus topic, substituting userID for the "user" channel's symbol
// slot per eventbus.Topic's convention. ok is false for an unrecognized
// channel name or an unauthenticated "user" subscription.
func resolveTopic(channel, symbol, userID string) (topic string, kind eventbus.Kind, ok bool) {
	switch channel {
	case "pool":
		return eventbus.Topic(eventbus.KindPool, symbol), eventbus.KindPool, true
	case "orderbook":
		return eventbus.Topic(eventbus.KindOrderBook, symbol), eventbus.KindOrderBook, true
	case "trade":
		return eventbus.Topic(eventbus.KindTrade, ""), eventbus.KindTrade, true
	case "user":
		if userID == "" {
			return "", "", false
		}
		return eventbus.Topic(eventbus.KindUser, userID), eventbus.KindUser, true
	default:
		return "", "", false
	}
}
