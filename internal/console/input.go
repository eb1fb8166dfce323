package console

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/market"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

// Input turns line commands into symbol switches and manual orders:
// a digit selects the symbol, B/S submit GTC orders near the touch,
// C pokes the best ask with a tiny IOC, Q quits.
type Input struct {
	registry *market.Registry
	in       io.Reader

	nextID uint64 // manual order ids count up from 900000
}

func NewInput(registry *market.Registry, in io.Reader) *Input {
	return &Input{
		registry: registry,
		in:       in,
		nextID:   900000,
	}
}

// Run reads commands until Q, EOF, or context cancellation. quit is called
// once when the loop decides to stop.
func (in *Input) Run(ctx context.Context, quit func()) {
	defer quit()

	scanner := bufio.NewScanner(in.in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !in.handle(strings.ToUpper(line)) {
			return
		}
	}
}

// handle executes one command; false means quit.
func (in *Input) handle(cmd string) bool {
	if idx, err := strconv.Atoi(cmd); err == nil {
		in.registry.SetActive(idx - 1)
		return true
	}

	switch cmd {
	case "Q":
		return false
	case "B":
		in.buy()
	case "S":
		in.sell()
	case "C":
		in.cancelTake()
	}
	return true
}

// buy submits a GTC bid two ticks under the ask so it usually rests.
func (in *Input) buy() {
	mkt := in.registry.ActiveMarket()
	px := int32(99)
	if ask := mkt.Snapshot(0).BestAsk; ask != 0 {
		px = ask - 2
	}
	in.nextID++
	mkt.Submit(orderbook.NewOrder(in.nextID, orderbook.Buy, orderbook.GoodTillCancel, px, 10))
}

// sell submits a GTC offer well above the bid so it rests.
func (in *Input) sell() {
	mkt := in.registry.ActiveMarket()
	px := int32(110)
	if bid := mkt.Snapshot(0).BestBid; bid != 0 {
		px = bid + 5
	}
	in.nextID++
	mkt.Submit(orderbook.NewOrder(in.nextID, orderbook.Sell, orderbook.GoodTillCancel, px, 10))
}

// cancelTake is demo glue, not a real cancel: it lifts one lot off the best
// ask with an IOC. True cancellation is Market.Cancel by order id.
func (in *Input) cancelTake() {
	mkt := in.registry.ActiveMarket()
	ask := mkt.Snapshot(0).BestAsk
	if ask == 0 {
		return
	}
	in.nextID++
	mkt.Submit(orderbook.NewOrder(in.nextID, orderbook.Buy, orderbook.ImmediateOrCancel, ask, 1))
}
