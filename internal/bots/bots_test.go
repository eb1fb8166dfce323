package bots

import (
	"testing"
	"time"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/market"
)

func TestFeedTradesAgainstSeededLadder(t *testing.T) {
	mkt := market.New("TEST")
	mkt.SeedAsks(15, 20)

	feed := NewFeed(mkt, 0)
	if feed.ID() != "feed_TEST" {
		t.Errorf("unexpected id %q", feed.ID())
	}

	// Drive the loop body directly; the ladder guarantees the buy legs
	// cross the seeded asks.
	for i := 0; i < 60; i++ {
		feed.place()
	}

	snap := mkt.Snapshot(5)
	if snap.TradeCount == 0 {
		t.Error("expected feed buys to trade against the seed ladder")
	}
	if len(snap.Tape) == 0 {
		t.Error("expected tape entries")
	}
}

func TestFeedIOCNeverRests(t *testing.T) {
	mkt := market.New("TEST") // empty book, nothing to cross

	feed := NewFeed(mkt, 0)
	for i := 0; i < 40; i++ {
		feed.place()
	}

	snap := mkt.Snapshot(5)
	if snap.Resting != 0 {
		t.Errorf("IOC flow must leave nothing resting, got %d", snap.Resting)
	}
	if snap.TradeCount != 0 {
		t.Errorf("expected no trades on an empty book, got %d", snap.TradeCount)
	}
}

func TestMakerRepostsQuote(t *testing.T) {
	mkt := market.New("TEST")
	mkt.SeedAsks(15, 20)

	maker := NewMaker(mkt, time.Second, 5)

	maker.quote()
	first := mkt.Snapshot(5)
	if first.Resting != 17 { // 15 seeds + bid + ask
		t.Fatalf("expected 17 resting after first quote, got %d", first.Resting)
	}
	if first.BestBid != 99 {
		t.Errorf("expected bid one tick under the 100 ask, got %d", first.BestBid)
	}

	// Re-quoting cancels the old pair before posting the new one, so the
	// count is stable.
	maker.quote()
	second := mkt.Snapshot(5)
	if second.Resting != 17 {
		t.Errorf("expected stable resting count across requotes, got %d", second.Resting)
	}
}

func TestManagerStartStop(t *testing.T) {
	mkt := market.New("TEST")
	mkt.SeedAsks(5, 10)

	mgr := NewManager()
	mgr.Add(NewFeed(mkt, 0))
	mgr.Add(NewMaker(mkt, 10*time.Millisecond, 5))
	if mgr.Count() != 2 {
		t.Fatalf("expected 2 bots, got %d", mgr.Count())
	}

	mgr.StartAll()
	time.Sleep(100 * time.Millisecond)
	mgr.StopAll()

	snap := mkt.Snapshot(0)
	if snap.TradeCount == 0 {
		t.Error("expected some trades while bots were running")
	}
}
