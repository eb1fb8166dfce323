package bots

import (
	"fmt"
	"time"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/market"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

// Maker keeps a two-sided GoodTillCancel quote resting around the touch,
// pulling and re-posting it every cycle. It is the producer that exercises
// cancel-by-id against live flow.
type Maker struct {
	market   *market.Market
	interval time.Duration
	size     uint32

	nextID uint64
	bidID  uint64
	askID  uint64

	stopCh chan struct{}
}

// NewMaker creates a maker for one market. Maker ids live in the 500000+
// range.
func NewMaker(mkt *market.Market, interval time.Duration, size uint32) *Maker {
	return &Maker{
		market:   mkt,
		interval: interval,
		size:     size,
		nextID:   500000,
		stopCh:   make(chan struct{}),
	}
}

func (mk *Maker) ID() string {
	return fmt.Sprintf("maker_%s", mk.market.Symbol)
}

func (mk *Maker) Start() {
	go runPeriodic(mk.interval, mk.stopCh, mk.quote)
}

func (mk *Maker) Stop() {
	close(mk.stopCh)
}

// quote pulls the previous quote and posts a fresh one a tick inside the
// current touch. Cancels are no-ops when the old quote already filled.
func (mk *Maker) quote() {
	if mk.bidID != 0 {
		mk.market.Cancel(mk.bidID)
	}
	if mk.askID != 0 {
		mk.market.Cancel(mk.askID)
	}

	snap := mk.market.Snapshot(0)

	bidPx := int32(99)
	if snap.BestAsk != 0 {
		bidPx = snap.BestAsk - 1
	}
	askPx := int32(111)
	if snap.BestBid != 0 {
		askPx = snap.BestBid + 1
	}
	if askPx <= bidPx {
		// Quoting through itself would self-cross; widen to a one-tick
		// spread around the bid.
		askPx = bidPx + 2
	}

	mk.nextID++
	mk.bidID = mk.nextID
	mk.market.Submit(orderbook.NewOrder(mk.bidID, orderbook.Buy, orderbook.GoodTillCancel, bidPx, mk.size))

	mk.nextID++
	mk.askID = mk.nextID
	mk.market.Submit(orderbook.NewOrder(mk.askID, orderbook.Sell, orderbook.GoodTillCancel, askPx, mk.size))
}
