package bots

import (
	"fmt"
	"time"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/market"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

// Feed pumps a deterministic stream of ImmediateOrCancel orders into one
// market: alternating sides walking a 30-tick price ladder. The per-symbol
// skew shifts the ladder's center and the cadence so symbols don't move in
// lockstep.
type Feed struct {
	market   *market.Market
	skew     int
	interval time.Duration

	nextID uint64
	sell   bool

	stopCh chan struct{}
}

// NewFeed creates a feed for one market. Feed order ids count up from 1,
// well clear of the seed ladder (100000+) and manual input (900000+) ranges.
func NewFeed(mkt *market.Market, skew int) *Feed {
	return &Feed{
		market:   mkt,
		skew:     skew,
		interval: time.Duration(25+skew%10) * time.Millisecond,
		nextID:   1,
		sell:     skew%2 != 0,
		stopCh:   make(chan struct{}),
	}
}

func (f *Feed) ID() string {
	return fmt.Sprintf("feed_%s", f.market.Symbol)
}

func (f *Feed) Start() {
	go runPeriodic(f.interval, f.stopCh, f.place)
}

func (f *Feed) Stop() {
	close(f.stopCh)
}

// place submits the next order in the sequence.
func (f *Feed) place() {
	side := orderbook.Buy
	if f.sell {
		side = orderbook.Sell
	}
	f.sell = !f.sell

	px := int32(100 + int(f.nextID%30) + f.skew)
	f.market.Submit(orderbook.NewOrder(f.nextID, side, orderbook.ImmediateOrCancel, px, 10))
	f.nextID++
}
