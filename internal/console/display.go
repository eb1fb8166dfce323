package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/market"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

// ANSI escapes for the snapshot printer. Works in any VT-capable terminal.
const (
	ansiReset   = "\033[0m"
	ansiGreen   = "\033[1;32m"
	ansiRed     = "\033[1;31m"
	ansiCyan    = "\033[1;36m"
	ansiYellow  = "\033[1;33m"
	ansiGray    = "\033[90m"
	ansiMagenta = "\033[1;35m"
	ansiClear   = "\033[2J\033[H"
)

const rule = "---------------------------------------------------------"

// Display periodically renders the active market's snapshot.
type Display struct {
	registry *market.Registry
	out      io.Writer
	depth    int
	interval time.Duration
}

func NewDisplay(registry *market.Registry, out io.Writer, depth int, interval time.Duration) *Display {
	return &Display{
		registry: registry,
		out:      out,
		depth:    depth,
		interval: interval,
	}
}

// Run refreshes the screen until the context is cancelled.
func (d *Display) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.render()
		case <-ctx.Done():
			return
		}
	}
}

func (d *Display) render() {
	snap := d.registry.ActiveMarket().Snapshot(d.depth)
	fmt.Fprint(d.out, ansiClear)
	WriteSnapshot(d.out, snap)
	d.writeHelp()
}

// WriteSnapshot prints one market snapshot: the ladder, a stats line and
// the recent-trades tape.
func WriteSnapshot(w io.Writer, snap market.Snapshot) {
	fmt.Fprintf(w, "%s=========== %s ORDER BOOK (Top %d) ===========%s\n",
		ansiCyan, snap.Symbol, max(len(snap.Bids), len(snap.Asks)), ansiReset)
	fmt.Fprintf(w, "%s%-15s%-10s | %-10s%-15s%s\n",
		ansiYellow, "BID_QTY", "BID_PX", "ASK_PX", "ASK_QTY", ansiReset)
	fmt.Fprintf(w, "%s%s%s\n", ansiGray, rule, ansiReset)

	rows := max(len(snap.Bids), len(snap.Asks))
	for i := 0; i < rows; i++ {
		var bidQty, bidPx, askPx, askQty string
		if i < len(snap.Bids) {
			bidQty = fmt.Sprint(snap.Bids[i].Quantity)
			bidPx = fmt.Sprint(snap.Bids[i].Price)
		}
		if i < len(snap.Asks) {
			askPx = fmt.Sprint(snap.Asks[i].Price)
			askQty = fmt.Sprint(snap.Asks[i].Quantity)
		}
		fmt.Fprintf(w, "%s%-15s%-10s%s | %s%-10s%-15s%s\n",
			ansiGreen, bidQty, bidPx, ansiReset,
			ansiRed, askPx, askQty, ansiReset)
	}

	fmt.Fprintf(w, "%s%s%s\n", ansiGray, rule, ansiReset)
	fmt.Fprintf(w, "%sTrades=%d  Resting=%d  Top=(%d,%d)  Spread=%d%s\n",
		ansiCyan, snap.TradeCount, snap.Resting, snap.BestBid, snap.BestAsk, snap.Spread(), ansiReset)

	fmt.Fprintf(w, "%s\nRecent Trades (%s):%s\n", ansiMagenta, snap.Symbol, ansiReset)
	fmt.Fprintf(w, "%s%s%s\n", ansiGray, rule, ansiReset)
	for _, t := range snap.Tape {
		col := ansiGreen
		label := "BUY"
		if t.Aggressor == orderbook.Sell {
			col = ansiRed
			label = "SELL"
		}
		fmt.Fprintf(w, "%s%6s%s @ %5d x %5d%s  id(%d,%d)%s\n",
			col, label, ansiReset, t.Price, t.Quantity, ansiGray, t.RestingID, t.AggressorID, ansiReset)
	}
}

func (d *Display) writeHelp() {
	fmt.Fprintf(d.out, "%sCommands:", ansiYellow)
	for i, sym := range d.registry.Symbols() {
		fmt.Fprintf(d.out, " [%d]%s", i+1, sym)
	}
	fmt.Fprintf(d.out, "   [B]uy  [S]ell  [C]ancel  [Q]uit%s\n", ansiReset)
}

// WriteSummary prints the end-of-run per-symbol totals.
func WriteSummary(w io.Writer, registry *market.Registry) {
	fmt.Fprintln(w, "\n=== FINAL SUMMARY ===")
	for _, m := range registry.Markets() {
		snap := m.Snapshot(0)
		fmt.Fprintf(w, "%s: trades=%d resting=%d top=(%d,%d) spread=%d\n",
			snap.Symbol, snap.TradeCount, snap.Resting, snap.BestBid, snap.BestAsk, snap.Spread())
	}
	fmt.Fprintln(w, "======================")
}
