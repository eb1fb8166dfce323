package orderbook

import (
	"container/list"
	"time"
)

// PriceLevel holds the orders resting at one price, oldest first. A level
// exists only while it has at least one order.
type PriceLevel struct {
	Price int32
	queue *list.List // of *Order, front = earliest arrival
}

func newPriceLevel(price int32) *PriceLevel {
	return &PriceLevel{Price: price, queue: list.New()}
}

func (pl *PriceLevel) Len() int {
	return pl.queue.Len()
}

// TotalQuantity sums the remaining quantity of every order at this level.
func (pl *PriceLevel) TotalQuantity() uint32 {
	var total uint32
	for e := pl.queue.Front(); e != nil; e = e.Next() {
		total += e.Value.(*Order).Remaining
	}
	return total
}

func (pl *PriceLevel) front() *Order {
	return pl.queue.Front().Value.(*Order)
}

// handle locates a resting order without a second owning reference: the
// level owns the order, the index only points at it.
type handle struct {
	order *Order
	level *PriceLevel
	elem  *list.Element
}

// LevelSummary is one aggregated (price, quantity) rung of the ladder.
type LevelSummary struct {
	Price    int32  `json:"price"`
	Quantity uint32 `json:"quantity"`
}

// Book is the matching engine for a single symbol: bids sorted descending,
// asks sorted ascending, plus an id index for O(1) cancellation.
//
// Book is not synchronized. The owning Market serializes every call,
// including the read-only queries.
type Book struct {
	bids  []*PriceLevel // best (highest) bid first
	asks  []*PriceLevel // best (lowest) ask first
	index map[uint64]handle
}

func NewBook() *Book {
	return &Book{
		bids:  make([]*PriceLevel, 0),
		asks:  make([]*PriceLevel, 0),
		index: make(map[uint64]handle),
	}
}

// Submit matches an incoming order against the book and returns the
// resulting trades, earliest match first. A duplicate id is silently
// ignored. An unfilled GoodTillCancel remainder rests; an ImmediateOrCancel
// remainder is discarded and never enters the index.
func (b *Book) Submit(order *Order) []Trade {
	if _, exists := b.index[order.ID]; exists {
		return nil
	}
	if order.Remaining == 0 {
		order.Remaining = order.Quantity
	}

	trades := b.match(order)

	if order.Remaining > 0 && order.TIF == GoodTillCancel {
		b.rest(order)
	}
	return trades
}

// match runs the crossing loop: strictly level by level, FIFO within a
// level, stopping exactly at the first non-crossing price.
func (b *Book) match(order *Order) []Trade {
	var trades []Trade

	if order.Side == Buy {
		for order.Remaining > 0 && len(b.asks) > 0 && b.asks[0].Price <= order.Price {
			level := b.asks[0]
			resting := level.front()

			qty := min(order.Remaining, resting.Remaining)
			order.fill(qty)
			resting.fill(qty)

			trades = append(trades, Trade{
				RestingID:   resting.ID,
				AggressorID: order.ID,
				Price:       level.Price,
				Quantity:    qty,
				Timestamp:   time.Now().UnixNano(),
				Aggressor:   Buy,
			})

			if resting.Filled() {
				level.queue.Remove(level.queue.Front())
				delete(b.index, resting.ID)
				if level.Len() == 0 {
					b.asks = b.asks[1:]
				}
			}
		}
	} else {
		for order.Remaining > 0 && len(b.bids) > 0 && b.bids[0].Price >= order.Price {
			level := b.bids[0]
			resting := level.front()

			qty := min(order.Remaining, resting.Remaining)
			order.fill(qty)
			resting.fill(qty)

			trades = append(trades, Trade{
				RestingID:   resting.ID,
				AggressorID: order.ID,
				Price:       level.Price,
				Quantity:    qty,
				Timestamp:   time.Now().UnixNano(),
				Aggressor:   Sell,
			})

			if resting.Filled() {
				level.queue.Remove(level.queue.Front())
				delete(b.index, resting.ID)
				if level.Len() == 0 {
					b.bids = b.bids[1:]
				}
			}
		}
	}

	return trades
}

// rest places the order at the back of its price level, creating the level
// if needed, and records it in the index.
func (b *Book) rest(order *Order) {
	var level *PriceLevel
	if order.Side == Buy {
		level = findOrInsertLevel(&b.bids, order.Price, func(a, existing int32) bool { return a > existing })
	} else {
		level = findOrInsertLevel(&b.asks, order.Price, func(a, existing int32) bool { return a < existing })
	}
	elem := level.queue.PushBack(order)
	b.index[order.ID] = handle{order: order, level: level, elem: elem}
}

// findOrInsertLevel locates the level at price, inserting a new one at the
// position where `better(price, existing)` first holds.
func findOrInsertLevel(levels *[]*PriceLevel, price int32, better func(a, existing int32) bool) *PriceLevel {
	for i, level := range *levels {
		if level.Price == price {
			return level
		}
		if better(price, level.Price) {
			nl := newPriceLevel(price)
			*levels = append((*levels)[:i], append([]*PriceLevel{nl}, (*levels)[i:]...)...)
			return nl
		}
	}
	nl := newPriceLevel(price)
	*levels = append(*levels, nl)
	return nl
}

// Cancel removes a resting order. An unknown id is a no-op, so cancelling
// twice is the same as cancelling once.
func (b *Book) Cancel(id uint64) {
	h, ok := b.index[id]
	if !ok {
		return
	}

	h.level.queue.Remove(h.elem)
	delete(b.index, id)

	if h.level.Len() == 0 {
		if h.order.Side == Buy {
			b.removeLevel(&b.bids, h.level)
		} else {
			b.removeLevel(&b.asks, h.level)
		}
	}
}

func (b *Book) removeLevel(levels *[]*PriceLevel, level *PriceLevel) {
	for i, l := range *levels {
		if l == level {
			*levels = append((*levels)[:i], (*levels)[i+1:]...)
			return
		}
	}
}

// SeedAsks pre-populates an ask ladder starting at price 100 so the book
// is non-empty before any live flow arrives. Seed order ids start at 100000.
func (b *Book) SeedAsks(levels int, qty uint32) {
	for i := 0; i < levels; i++ {
		px := int32(100 + i)
		b.rest(NewOrder(uint64(100000+i), Sell, GoodTillCancel, px, qty))
	}
}

// BestBid returns the highest bid price, or 0 if there are no bids.
func (b *Book) BestBid() int32 {
	if len(b.bids) == 0 {
		return 0
	}
	return b.bids[0].Price
}

// BestAsk returns the lowest ask price, or 0 if there are no asks.
func (b *Book) BestAsk() int32 {
	if len(b.asks) == 0 {
		return 0
	}
	return b.asks[0].Price
}

// RestingCount returns the number of orders currently resting in the book.
func (b *Book) RestingCount() int {
	return len(b.index)
}

// TopBids returns up to n aggregated bid levels, best first.
func (b *Book) TopBids(n int) []LevelSummary {
	return summarize(b.bids, n)
}

// TopAsks returns up to n aggregated ask levels, best first.
func (b *Book) TopAsks(n int) []LevelSummary {
	return summarize(b.asks, n)
}

func summarize(levels []*PriceLevel, n int) []LevelSummary {
	if n > len(levels) {
		n = len(levels)
	}
	out := make([]LevelSummary, 0, n)
	for _, level := range levels[:n] {
		out = append(out, LevelSummary{Price: level.Price, Quantity: level.TotalQuantity()})
	}
	return out
}
