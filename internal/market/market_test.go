package market

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

func TestSubmitRecordsTapeNewestFirst(t *testing.T) {
	m := New("TEST")

	m.Submit(orderbook.NewOrder(1, orderbook.Sell, orderbook.GoodTillCancel, 100, 30))
	m.Submit(orderbook.NewOrder(2, orderbook.Buy, orderbook.GoodTillCancel, 100, 10))
	m.Submit(orderbook.NewOrder(3, orderbook.Buy, orderbook.GoodTillCancel, 100, 10))

	snap := m.Snapshot(5)
	if len(snap.Tape) != 2 {
		t.Fatalf("expected 2 tape entries, got %d", len(snap.Tape))
	}
	if snap.Tape[0].AggressorID != 3 || snap.Tape[1].AggressorID != 2 {
		t.Errorf("tape not newest-first: %+v", snap.Tape)
	}
	if snap.TradeCount != 2 {
		t.Errorf("expected trade count 2, got %d", snap.TradeCount)
	}
}

func TestTapeBounded(t *testing.T) {
	m := New("TEST")

	// One resting sell per buy so every submit prints exactly one trade.
	for i := 0; i < 2*MaxTape; i++ {
		m.Submit(orderbook.NewOrder(uint64(1000+i), orderbook.Sell, orderbook.GoodTillCancel, 100, 10))
		m.Submit(orderbook.NewOrder(uint64(2000+i), orderbook.Buy, orderbook.GoodTillCancel, 100, 10))
	}

	snap := m.Snapshot(0)
	if len(snap.Tape) != MaxTape {
		t.Errorf("expected tape capped at %d, got %d", MaxTape, len(snap.Tape))
	}
	if snap.TradeCount != uint64(2*MaxTape) {
		t.Errorf("expected counter %d, got %d", 2*MaxTape, snap.TradeCount)
	}
	// The newest trade survives eviction.
	if snap.Tape[0].AggressorID != uint64(2000+2*MaxTape-1) {
		t.Errorf("unexpected newest tape entry: %+v", snap.Tape[0])
	}
}

func TestCancelLeavesTapeAlone(t *testing.T) {
	m := New("TEST")

	m.Submit(orderbook.NewOrder(1, orderbook.Sell, orderbook.GoodTillCancel, 100, 10))
	m.Submit(orderbook.NewOrder(2, orderbook.Buy, orderbook.GoodTillCancel, 100, 5))
	m.Cancel(1)

	snap := m.Snapshot(5)
	if snap.Resting != 0 {
		t.Errorf("expected empty book after cancel, resting=%d", snap.Resting)
	}
	if len(snap.Tape) != 1 || snap.TradeCount != 1 {
		t.Errorf("cancel must not touch the tape: %+v", snap)
	}
}

func TestSnapshotDepth(t *testing.T) {
	m := New("TEST")
	m.SeedAsks(15, 20)

	snap := m.Snapshot(5)
	if len(snap.Asks) != 5 {
		t.Errorf("expected 5 ask rungs, got %d", len(snap.Asks))
	}
	if snap.BestAsk != 100 || snap.BestBid != 0 {
		t.Errorf("unexpected tops: bid=%d ask=%d", snap.BestBid, snap.BestAsk)
	}
	if snap.Spread() != 0 {
		t.Errorf("spread with an empty side must be 0, got %d", snap.Spread())
	}
	if snap.Resting != 15 {
		t.Errorf("expected 15 resting, got %d", snap.Resting)
	}
}

func TestOnTradeCallback(t *testing.T) {
	m := New("TEST")

	var got []orderbook.Trade
	m.OnTrade(func(symbol string, tr orderbook.Trade) {
		if symbol != "TEST" {
			t.Errorf("unexpected symbol %q", symbol)
		}
		got = append(got, tr)
	})

	m.Submit(orderbook.NewOrder(1, orderbook.Sell, orderbook.GoodTillCancel, 100, 10))
	m.Submit(orderbook.NewOrder(2, orderbook.Buy, orderbook.GoodTillCancel, 100, 10))

	if len(got) != 1 || got[0].Quantity != 10 {
		t.Errorf("expected one observed trade, got %+v", got)
	}
}

// Hammers one market from several goroutines and checks that the guarded
// counter agrees with the trades each submitter saw. Run with -race.
func TestConcurrentSubmitters(t *testing.T) {
	m := New("TEST")

	const workers = 4
	const opsPerWorker = 500

	var wg sync.WaitGroup
	var observed atomic.Uint64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				id := uint64(w*1_000_000 + i + 1)
				side := orderbook.Buy
				px := int32(100 + i%5)
				if i%2 == 1 {
					side = orderbook.Sell
					px = int32(99 + i%5)
				}
				trades := m.Submit(orderbook.NewOrder(id, side, orderbook.GoodTillCancel, px, 10))
				observed.Add(uint64(len(trades)))
				if i%100 == 0 {
					m.Cancel(id)
				}
			}
		}(w)
	}
	wg.Wait()

	snap := m.Snapshot(0)
	if snap.TradeCount != observed.Load() {
		t.Errorf("counter %d != trades observed by submitters %d", snap.TradeCount, observed.Load())
	}
	if len(snap.Tape) > MaxTape {
		t.Errorf("tape overflow: %d", len(snap.Tape))
	}
}

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()

	if len(r.Symbols()) != 3 {
		t.Fatalf("expected 3 default symbols, got %d", len(r.Symbols()))
	}
	for _, sym := range r.Symbols() {
		m, ok := r.Market(sym)
		if !ok {
			t.Fatalf("missing market for %s", sym)
		}
		snap := m.Snapshot(1)
		if snap.Resting != 15 || snap.BestAsk != 100 {
			t.Errorf("%s not seeded: %+v", sym, snap)
		}
	}
}

func TestRegistrySelectorClamped(t *testing.T) {
	r := NewRegistry("A", "B")

	r.SetActive(1)
	if r.ActiveSymbol() != "B" {
		t.Errorf("expected B, got %s", r.ActiveSymbol())
	}

	r.SetActive(99)
	if r.ActiveSymbol() != "B" {
		t.Errorf("expected clamp to last symbol, got %s", r.ActiveSymbol())
	}

	r.SetActive(-7)
	if r.ActiveSymbol() != "A" {
		t.Errorf("expected clamp to first symbol, got %s", r.ActiveSymbol())
	}

	if r.ActiveMarket() == nil {
		t.Error("ActiveMarket must always resolve")
	}
}
