package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/market"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

// Config drives a stress run against a single shared market.
type Config struct {
	Ops     int   // total operations across all workers
	Workers int   // concurrent submitters
	Seed    int64 // rng seed; 0 means time-based
}

// WorkerStats holds per-worker latency samples, in nanoseconds per op.
type WorkerStats struct {
	Samples []float64
	Trades  uint64
}

// Avg returns the mean sample.
func (ws *WorkerStats) Avg() float64 {
	if len(ws.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range ws.Samples {
		sum += s
	}
	return sum / float64(len(ws.Samples))
}

// Percentile returns the p-th percentile (0..1) of the samples.
func (ws *WorkerStats) Percentile(p float64) float64 {
	if len(ws.Samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(ws.Samples))
	copy(sorted, ws.Samples)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Report is the outcome of one stress run.
type Report struct {
	Config    Config
	Workers   []WorkerStats
	Resources []ResourceSample
	Trades    uint64
	Resting   int
	Elapsed   time.Duration
}

// Throughput returns operations per second over the whole run.
func (r *Report) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Config.Ops) / r.Elapsed.Seconds()
}

// Run executes the stress workload: every worker submits GoodTillCancel
// orders with randomized side/price/quantity into one shared market, with
// an occasional cancel of one of its own earlier orders, while a monitor
// goroutine samples process resources once a second.
func Run(cfg Config) *Report {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mkt := market.New("STRESS")
	report := &Report{
		Config:  cfg,
		Workers: make([]WorkerStats, cfg.Workers),
	}

	var tradeCount atomic.Uint64
	start := time.Now()

	monitorStop := make(chan struct{})
	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if s, err := sampleResources(start); err == nil {
					report.Resources = append(report.Resources, s)
				}
			case <-monitorStop:
				return
			}
		}
	}()

	opsPerWorker := cfg.Ops / cfg.Workers
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(seed + int64(w)))
			stats := WorkerStats{Samples: make([]float64, 0, opsPerWorker)}

			for i := 0; i < opsPerWorker; i++ {
				t1 := time.Now()

				side := orderbook.Buy
				px := int32(100 + rng.Intn(21))
				if rng.Intn(2) == 1 {
					side = orderbook.Sell
					px = int32(101 + rng.Intn(21))
				}
				qty := uint32(1 + rng.Intn(50))
				id := uint64(w)*10_000_000 + uint64(i)

				trades := mkt.Submit(orderbook.NewOrder(id, side, orderbook.GoodTillCancel, px, qty))
				stats.Trades += uint64(len(trades))
				tradeCount.Add(uint64(len(trades)))

				if i%1000 == 0 && i > 0 {
					mkt.Cancel(uint64(w)*10_000_000 + uint64(rng.Intn(i)))
				}

				stats.Samples = append(stats.Samples, float64(time.Since(t1).Nanoseconds()))
			}
			report.Workers[w] = stats
		}(w)
	}
	wg.Wait()

	close(monitorStop)
	<-monitorDone

	report.Elapsed = time.Since(start)
	report.Trades = tradeCount.Load()
	report.Resting = mkt.Snapshot(0).Resting
	return report
}

// Summarize prints the per-worker and aggregate results.
func (r *Report) Summarize(w io.Writer) {
	fmt.Fprintln(w, "\n=== PER-WORKER LATENCY ===")
	var totalSamples int
	for i := range r.Workers {
		ws := &r.Workers[i]
		totalSamples += len(ws.Samples)
		fmt.Fprintf(w, "Worker %d | ops=%d trades=%d avg=%.2fns p50=%.2fns p99=%.2fns\n",
			i, len(ws.Samples), ws.Trades, ws.Avg(), ws.Percentile(0.50), ws.Percentile(0.99))
	}

	fmt.Fprintln(w, "\n=== STRESS SUMMARY ===")
	fmt.Fprintf(w, "Workers        : %d\n", r.Config.Workers)
	fmt.Fprintf(w, "Total ops      : %d\n", r.Config.Ops)
	fmt.Fprintf(w, "Total samples  : %d\n", totalSamples)
	fmt.Fprintf(w, "Total trades   : %d\n", r.Trades)
	fmt.Fprintf(w, "Final resting  : %d\n", r.Resting)
	fmt.Fprintf(w, "Elapsed time   : %.2f s\n", r.Elapsed.Seconds())
	fmt.Fprintf(w, "Throughput     : %.2f ops/sec\n", r.Throughput())
	fmt.Fprintln(w, "=======================")
}

// WriteLatencyCSV saves every sample as thread_id,op_index,latency_ns.
func (r *Report) WriteLatencyCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"thread_id", "op_index", "latency_ns"}); err != nil {
		return err
	}
	for t := range r.Workers {
		for i, ns := range r.Workers[t].Samples {
			rec := []string{
				fmt.Sprint(t),
				fmt.Sprint(i),
				fmt.Sprintf("%.2f", ns),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResourceCSV saves the monitor samples as time_s,rss_MB,cpu_s.
func (r *Report) WriteResourceCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"time_s", "rss_MB", "cpu_s"}); err != nil {
		return err
	}
	for _, s := range r.Resources {
		rec := []string{
			fmt.Sprintf("%.2f", s.TimeS),
			fmt.Sprintf("%.2f", s.RSSMB),
			fmt.Sprintf("%.2f", s.CPUSec),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
