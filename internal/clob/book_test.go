package clob

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newTestOrder(id string, side Side, price, qty string) *Order {
	p := decimal.RequireFromString(price)
	q := decimal.RequireFromString(qty)
	return &Order{OrderID: id, Side: side, Price: p, Quantity: q, Remaining: q, Status: StatusOpen}
}

func TestBookDepthBestPriceFirst(t *testing.T) {
	b := NewBook(1)
	b.insert(newTestOrder("bid1", SideBuy, "10", "1"))
	b.insert(newTestOrder("bid2", SideBuy, "12", "1"))
	b.insert(newTestOrder("bid3", SideBuy, "11", "1"))
	b.insert(newTestOrder("ask1", SideSell, "105", "1"))
	b.insert(newTestOrder("ask2", SideSell, "101", "1"))
	b.insert(newTestOrder("ask3", SideSell, "103", "1"))

	bids, asks := b.Depth(10)

	wantBids := []string{"12", "11", "10"}
	if len(bids) != len(wantBids) {
		t.Fatalf("expected %d bid levels, got %d", len(wantBids), len(bids))
	}
	for i, w := range wantBids {
		if bids[i].Price.String() != w {
			t.Fatalf("bid[%d] = %s, want %s", i, bids[i].Price.String(), w)
		}
	}

	wantAsks := []string{"101", "103", "105"}
	if len(asks) != len(wantAsks) {
		t.Fatalf("expected %d ask levels, got %d", len(wantAsks), len(asks))
	}
	for i, w := range wantAsks {
		if asks[i].Price.String() != w {
			t.Fatalf("ask[%d] = %s, want %s", i, asks[i].Price.String(), w)
		}
	}
}

func TestBookDepthRespectsLimit(t *testing.T) {
	b := NewBook(1)
	b.insert(newTestOrder("bid1", SideBuy, "10", "1"))
	b.insert(newTestOrder("bid2", SideBuy, "12", "1"))
	b.insert(newTestOrder("bid3", SideBuy, "11", "1"))

	bids, _ := b.Depth(2)
	if len(bids) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(bids))
	}
	if bids[0].Price.String() != "12" {
		t.Fatalf("expected best bid first, got %s", bids[0].Price.String())
	}
}

func TestBookAggregatesSamePriceLevel(t *testing.T) {
	b := NewBook(1)
	b.insert(newTestOrder("bid1", SideBuy, "10", "1"))
	b.insert(newTestOrder("bid2", SideBuy, "10", "2.5"))

	bids, _ := b.Depth(10)
	if len(bids) != 1 {
		t.Fatalf("expected orders at the same price to aggregate into one level, got %d", len(bids))
	}
	if bids[0].Remaining.String() != "3.5" {
		t.Fatalf("expected aggregated remaining 3.5, got %s", bids[0].Remaining.String())
	}
}

func TestBookRemovePrunesEmptyLevel(t *testing.T) {
	b := NewBook(1)
	b.insert(newTestOrder("bid1", SideBuy, "10", "1"))

	if !b.remove("bid1") {
		t.Fatalf("expected remove to report success")
	}
	bids, _ := b.Depth(10)
	if len(bids) != 0 {
		t.Fatalf("expected the level to be pruned once empty, got %d levels", len(bids))
	}
	if b.remove("bid1") {
		t.Fatalf("expected a second remove of the same order to report false")
	}
}

func TestBookFrontOrderIsFIFO(t *testing.T) {
	b := NewBook(1)
	b.insert(newTestOrder("first", SideBuy, "10", "1"))
	b.insert(newTestOrder("second", SideBuy, "10", "1"))

	lvl := b.bidLevels["10"]
	if lvl.frontOrder().OrderID != "first" {
		t.Fatalf("expected FIFO ordering, front was %s", lvl.frontOrder().OrderID)
	}
}

func TestBookShrinkReducesLevelRemaining(t *testing.T) {
	b := NewBook(1)
	b.insert(newTestOrder("bid1", SideBuy, "10", "5"))
	b.shrink("bid1", decimal.RequireFromString("2"))

	bids, _ := b.Depth(10)
	if bids[0].Remaining.String() != "3" {
		t.Fatalf("expected remaining 3 after shrink, got %s", bids[0].Remaining.String())
	}
}
