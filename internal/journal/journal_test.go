package journal

import (
	"os"
	"testing"
	"time"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

func tempPath(t *testing.T) string {
	t.Helper()

	f, err := os.CreateTemp("", "lob-journal-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	path := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(path) })
	return path
}

func TestRecordAndRecent(t *testing.T) {
	path := tempPath(t)

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	base := time.Now().UnixNano()
	for i := 0; i < 3; i++ {
		j.Record("AAPL", orderbook.Trade{
			RestingID:   uint64(100 + i),
			AggressorID: uint64(200 + i),
			Price:       100,
			Quantity:    10,
			Timestamp:   base + int64(i),
			Aggressor:   orderbook.Buy,
		})
	}
	j.Record("MSFT", orderbook.Trade{
		RestingID:   1,
		AggressorID: 2,
		Price:       103,
		Quantity:    5,
		Timestamp:   base,
		Aggressor:   orderbook.Sell,
	})

	// Close drains the writer; reopen to query.
	if err := j.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	j, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer j.Close()

	recent, err := j.Recent("AAPL", 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	if recent[0].AggressorID != 202 || recent[1].AggressorID != 201 {
		t.Errorf("rows not newest-first: %+v", recent)
	}
	if recent[0].ID == "" {
		t.Error("expected generated row id")
	}
	if recent[0].Aggressor != "buy" {
		t.Errorf("expected aggressor 'buy', got %q", recent[0].Aggressor)
	}
	if recent[0].ExecutedAt.UnixNano() != base+2 {
		t.Errorf("timestamp mismatch: %v", recent[0].ExecutedAt)
	}

	counts, err := j.CountBySymbol()
	if err != nil {
		t.Fatalf("CountBySymbol failed: %v", err)
	}
	if counts["AAPL"] != 3 || counts["MSFT"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestRecentUnknownSymbol(t *testing.T) {
	j, err := Open(tempPath(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer j.Close()

	rows, err := j.Recent("NOPE", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
