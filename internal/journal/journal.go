package journal

import (
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

// Journal records executed trades to SQLite. Writes go through a buffered
// channel drained by a single goroutine, so callers (which run right after
// a market releases its guard) never block on I/O; entries are dropped if
// the writer falls behind.
type Journal struct {
	db   *sql.DB
	ch   chan entry
	done chan struct{}
}

type entry struct {
	symbol string
	trade  orderbook.Trade
}

// Row is one journaled trade.
type Row struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	RestingID   uint64    `json:"resting_id"`
	AggressorID uint64    `json:"aggressor_id"`
	Price       int32     `json:"price"`
	Quantity    uint32    `json:"quantity"`
	Aggressor   string    `json:"aggressor"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// Open creates the journal at path (":memory:" works for tests) and starts
// the writer.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	j := &Journal{
		db:   db,
		ch:   make(chan entry, 4096),
		done: make(chan struct{}),
	}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	go j.writeLoop()
	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		resting_id INTEGER NOT NULL,
		aggressor_id INTEGER NOT NULL,
		price INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		aggressor TEXT NOT NULL,
		executed_at INTEGER NOT NULL  -- unix nanoseconds
	);

	CREATE INDEX IF NOT EXISTS idx_trades_symbol_time ON trades(symbol, executed_at DESC);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Record enqueues one trade for journaling. Never blocks.
func (j *Journal) Record(symbol string, trade orderbook.Trade) {
	select {
	case j.ch <- entry{symbol: symbol, trade: trade}:
	default:
		// Writer behind; the journal is an output stream, not the book
		// of record, so dropping beats stalling a producer.
	}
}

func (j *Journal) writeLoop() {
	defer close(j.done)
	for e := range j.ch {
		t := e.trade
		_, err := j.db.Exec(`
			INSERT INTO trades (id, symbol, resting_id, aggressor_id, price, quantity, aggressor, executed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), e.symbol, t.RestingID, t.AggressorID, t.Price, t.Quantity,
			t.Aggressor.String(), t.Timestamp)
		if err != nil {
			log.Printf("journal: insert failed: %v", err)
		}
	}
}

// Close drains pending writes and closes the database.
func (j *Journal) Close() error {
	close(j.ch)
	<-j.done
	return j.db.Close()
}

// Recent returns the newest trades for a symbol, newest first.
func (j *Journal) Recent(symbol string, limit int) ([]Row, error) {
	rows, err := j.db.Query(`
		SELECT id, symbol, resting_id, aggressor_id, price, quantity, aggressor, executed_at
		FROM trades
		WHERE symbol = ?
		ORDER BY executed_at DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var ns int64
		if err := rows.Scan(&r.ID, &r.Symbol, &r.RestingID, &r.AggressorID,
			&r.Price, &r.Quantity, &r.Aggressor, &ns); err != nil {
			return nil, err
		}
		r.ExecutedAt = time.Unix(0, ns)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountBySymbol returns how many trades each symbol has journaled.
func (j *Journal) CountBySymbol() (map[string]uint64, error) {
	rows, err := j.db.Query(`SELECT symbol, COUNT(*) FROM trades GROUP BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var symbol string
		var n uint64
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, err
		}
		counts[symbol] = n
	}
	return counts, rows.Err()
}
