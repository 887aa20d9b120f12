package clob

import (
	"container/list"
	"context"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// level is one price's FIFO queue of resting orders, maintained per spec
// §4.5 ("bid side is a max-ordered mapping price → queue<Order> ... ask
// side is a min-ordered mapping"). Aggregated remaining quantity is kept
// incrementally so Depth never walks the list.
type level struct {
	price     decimal.Decimal
	orders    *list.List // of *Order
	remaining decimal.Decimal
}

// askItem/bidItem give the two sides opposite btree.Item orderings over
// the same level type: asks sort ascending (best = lowest price), bids
// sort descending (best = highest price). Grounded on
// vegaprotocol-vega/matching/pricelevel.go's use of google/btree for
// price-level ordering, generalized to two independently-ordered trees
// instead of one tree keyed on a signed price.
type askItem struct{ lvl *level }

func (a askItem) Less(than btree.Item) bool {
	return a.lvl.price.LessThan(than.(askItem).lvl.price)
}

type bidItem struct{ lvl *level }

func (b bidItem) Less(than btree.Item) bool {
	return b.lvl.price.GreaterThan(than.(bidItem).lvl.price)
}

const btreeDegree = 32

// bookEntry lets Cancel locate an order's queue position in O(1) instead
// of walking every level.
type bookEntry struct {
	order *Order
	side  Side
	lvl   *level
	elem  *list.Element
}

// Book is the in-memory order book for one symbol. A Book is a singleton
// per the router's binding cache (spec §4.6): it is constructed once and
// reused for the process lifetime, rehydrated from persisted open/partial
// orders on construction.
type Book struct {
	SymbolID uint64

	asks      *btree.BTree
	bids      *btree.BTree
	askLevels map[string]*level
	bidLevels map[string]*level
	entries   map[string]*bookEntry // by OrderID
}

// NewBook constructs an empty book for symbolID.
func NewBook(symbolID uint64) *Book {
	return &Book{
		SymbolID:  symbolID,
		asks:      btree.New(btreeDegree),
		bids:      btree.New(btreeDegree),
		askLevels: make(map[string]*level),
		bidLevels: make(map[string]*level),
		entries:   make(map[string]*bookEntry),
	}
}

// Rehydrate loads persisted open/partial orders ordered by created_at and
// re-inserts them into the in-memory ladders, per spec §4.5's "on process
// start, the book is rehydrated from persisted open/partial orders".
func (b *Book) Rehydrate(ctx context.Context, repo Repository) error {
	orders, err := repo.ListOpenBySymbol(ctx, b.SymbolID)
	if err != nil {
		return err
	}
	for _, o := range orders {
		b.insert(o)
	}
	return nil
}

func (b *Book) levelsFor(side Side) (map[string]*level, *btree.BTree) {
	if side == SideBuy {
		return b.bidLevels, b.bids
	}
	return b.askLevels, b.asks
}

// insert places o at the tail of its price's FIFO queue, creating the
// level if absent. o.Remaining must already reflect any prior fills.
func (b *Book) insert(o *Order) {
	levels, tree := b.levelsFor(o.Side)
	key := o.Price.String()
	lvl, ok := levels[key]
	if !ok {
		lvl = &level{price: o.Price, orders: list.New(), remaining: decimal.Zero}
		levels[key] = lvl
		if o.Side == SideBuy {
			tree.ReplaceOrInsert(bidItem{lvl: lvl})
		} else {
			tree.ReplaceOrInsert(askItem{lvl: lvl})
		}
	}
	elem := lvl.orders.PushBack(o)
	lvl.remaining = lvl.remaining.Add(o.Remaining)
	b.entries[o.OrderID] = &bookEntry{order: o, side: o.Side, lvl: lvl, elem: elem}
}

// remove drops orderID from its queue and prunes the level if it empties.
// Returns false if the order isn't resting in the book.
func (b *Book) remove(orderID string) bool {
	e, ok := b.entries[orderID]
	if !ok {
		return false
	}
	e.lvl.orders.Remove(e.elem)
	delete(b.entries, orderID)
	if e.lvl.orders.Len() == 0 {
		levels, tree := b.levelsFor(e.side)
		key := e.lvl.price.String()
		delete(levels, key)
		if e.side == SideBuy {
			tree.Delete(bidItem{lvl: e.lvl})
		} else {
			tree.Delete(askItem{lvl: e.lvl})
		}
	}
	return true
}

// shrink reduces the level's cached remaining total after a partial fill
// without moving the order in its queue.
func (b *Book) shrink(orderID string, amount decimal.Decimal) {
	if e, ok := b.entries[orderID]; ok {
		e.lvl.remaining = e.lvl.remaining.Sub(amount)
	}
}

// bestAsk/bestBid return the head level of the best price, if any.
func (b *Book) bestAsk() *level {
	item := b.asks.Min()
	if item == nil {
		return nil
	}
	return item.(askItem).lvl
}

func (b *Book) bestBid() *level {
	item := b.bids.Min()
	if item == nil {
		return nil
	}
	return item.(bidItem).lvl
}

func (b *Book) bestOpposite(side Side) *level {
	if side == SideBuy {
		return b.bestAsk()
	}
	return b.bestBid()
}

// frontOrder peeks the level's head order without removing it.
func (lv *level) frontOrder() *Order {
	if lv == nil || lv.orders.Len() == 0 {
		return nil
	}
	return lv.orders.Front().Value.(*Order)
}

// DepthLevel is one aggregated row of a Depth query result.
type DepthLevel struct {
	Price     decimal.Decimal
	Remaining decimal.Decimal
}

// Depth returns the top-n aggregated levels per side, best price first,
// per spec §4.5 operation 4.
func (b *Book) Depth(n int) (bids, asks []DepthLevel) {
	b.bids.Ascend(func(i btree.Item) bool {
		lv := i.(bidItem).lvl
		bids = append(bids, DepthLevel{Price: lv.price, Remaining: lv.remaining})
		return len(bids) < n
	})
	b.asks.Ascend(func(i btree.Item) bool {
		lv := i.(askItem).lvl
		asks = append(asks, DepthLevel{Price: lv.price, Remaining: lv.remaining})
		return len(asks) < n
	})
	return bids, asks
}
