package market

import (
	"sync/atomic"
)

// DefaultSymbols is the symbol set the simulator trades out of the box.
var DefaultSymbols = []string{"AAPL", "MSFT", "BTCUSD"}

// Registry is the fixed set of tradable symbols, each bound to one Market,
// plus the "active symbol" selector the display and input loops share.
//
// The selector is a plain atomic read/written without any market's lock.
// That race is tolerated on purpose: a reader may act on a selector that is
// one update stale, which only changes which independent market it touches
// next. Do not wrap it in a mutex.
type Registry struct {
	symbols []string
	markets map[string]*Market
	active  atomic.Int32
}

// NewRegistry creates one seeded market per symbol. With no symbols given
// it uses DefaultSymbols.
func NewRegistry(symbols ...string) *Registry {
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}
	r := &Registry{
		symbols: symbols,
		markets: make(map[string]*Market, len(symbols)),
	}
	for _, s := range symbols {
		m := New(s)
		m.SeedAsks(15, 20)
		r.markets[s] = m
	}
	return r
}

// Symbols returns the registered symbols in display order.
func (r *Registry) Symbols() []string {
	return r.symbols
}

// Market returns the market for a symbol.
func (r *Registry) Market(symbol string) (*Market, bool) {
	m, ok := r.markets[symbol]
	return m, ok
}

// Markets returns every market in symbol order.
func (r *Registry) Markets() []*Market {
	out := make([]*Market, 0, len(r.symbols))
	for _, s := range r.symbols {
		out = append(out, r.markets[s])
	}
	return out
}

// SetActive selects the symbol at idx. Out-of-range values are stored as-is
// and clamped on read, never indexed out of bounds.
func (r *Registry) SetActive(idx int) {
	r.active.Store(int32(idx))
}

// ActiveIndex returns the selector clamped to the valid symbol range.
func (r *Registry) ActiveIndex() int {
	idx := int(r.active.Load())
	if idx < 0 {
		idx = 0
	}
	if idx > len(r.symbols)-1 {
		idx = len(r.symbols) - 1
	}
	return idx
}

// ActiveSymbol resolves the selector to a symbol name.
func (r *Registry) ActiveSymbol() string {
	return r.symbols[r.ActiveIndex()]
}

// ActiveMarket resolves the selector to its market.
func (r *Registry) ActiveMarket() *Market {
	return r.markets[r.ActiveSymbol()]
}
