package market

import (
	"sync"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

// MaxTape is the number of recent trades kept on a market's tape.
const MaxTape = 12

// TradeFunc observes executed trades. Callbacks run after the market guard
// is released, so they may do I/O.
type TradeFunc func(symbol string, trade orderbook.Trade)

// Market couples one order book with a bounded, most-recent-first trade
// tape and a running trade counter. One mutex guards all three so every
// observer sees a consistent prefix of the per-symbol mutation order;
// it is the only lock in the system.
type Market struct {
	Symbol string

	mu         sync.Mutex
	book       *orderbook.Book
	tape       []orderbook.Trade // newest first
	tradeCount uint64

	onTrade []TradeFunc
}

func New(symbol string) *Market {
	return &Market{
		Symbol: symbol,
		book:   orderbook.NewBook(),
	}
}

// SeedAsks pre-populates the book's ask ladder. Meant for startup, before
// any producers run.
func (m *Market) SeedAsks(levels int, qty uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.book.SeedAsks(levels, qty)
}

// OnTrade registers a callback for every executed trade. Register before
// producers start; registration is not synchronized with Submit.
func (m *Market) OnTrade(fn TradeFunc) {
	m.onTrade = append(m.onTrade, fn)
}

// Submit runs the order through the book and records any resulting trades
// on the tape, evicting the oldest entries past capacity.
func (m *Market) Submit(order *orderbook.Order) []orderbook.Trade {
	m.mu.Lock()
	trades := m.book.Submit(order)
	for _, t := range trades {
		m.tape = append([]orderbook.Trade{t}, m.tape...)
		if len(m.tape) > MaxTape {
			m.tape = m.tape[:MaxTape]
		}
	}
	m.tradeCount += uint64(len(trades))
	m.mu.Unlock()

	// Notify outside the critical section: the guard is never held
	// across I/O.
	for _, fn := range m.onTrade {
		for _, t := range trades {
			fn(m.Symbol, t)
		}
	}
	return trades
}

// Cancel removes a resting order by id. Unknown ids are ignored and the
// tape is untouched.
func (m *Market) Cancel(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.book.Cancel(id)
}

// Snapshot is a point-in-time read of one market, taken under its guard.
type Snapshot struct {
	Symbol     string                   `json:"symbol"`
	BestBid    int32                    `json:"best_bid"`
	BestAsk    int32                    `json:"best_ask"`
	Resting    int                      `json:"resting"`
	TradeCount uint64                   `json:"trade_count"`
	Bids       []orderbook.LevelSummary `json:"bids"`
	Asks       []orderbook.LevelSummary `json:"asks"`
	Tape       []orderbook.Trade        `json:"tape"`
}

// Spread returns best ask minus best bid, or 0 when a side is empty.
func (s Snapshot) Spread() int32 {
	if s.BestBid == 0 || s.BestAsk == 0 {
		return 0
	}
	return s.BestAsk - s.BestBid
}

// Snapshot copies the top `depth` ladder rungs, the tape and the counters
// in one critical section.
func (m *Market) Snapshot(depth int) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		Symbol:     m.Symbol,
		BestBid:    m.book.BestBid(),
		BestAsk:    m.book.BestAsk(),
		Resting:    m.book.RestingCount(),
		TradeCount: m.tradeCount,
		Bids:       m.book.TopBids(depth),
		Asks:       m.book.TopAsks(depth),
		Tape:       make([]orderbook.Trade, len(m.tape)),
	}
	copy(snap.Tape, m.tape)
	return snap
}
