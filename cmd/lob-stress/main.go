package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/bench"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

func main() {
	ops := flag.Int("ops", 1_000_000, "total operations across all workers")
	workers := flag.Int("workers", 4, "concurrent submitters")
	seed := flag.Int64("seed", 0, "rng seed (0 = time-based)")
	latencyCSV := flag.String("latency-csv", "latency_samples.csv", "latency samples output (empty = skip)")
	resourceCSV := flag.String("resources-csv", "system_usage.csv", "resource samples output (empty = skip)")
	flag.Parse()

	smokeTest()

	fmt.Println("\n=== STRESS TEST START ===")
	report := bench.Run(bench.Config{Ops: *ops, Workers: *workers, Seed: *seed})
	report.Summarize(os.Stdout)

	if *latencyCSV != "" {
		if err := report.WriteLatencyCSV(*latencyCSV); err != nil {
			log.Fatalf("Failed to write latency CSV: %v", err)
		}
		fmt.Printf("Saved latency samples to %s\n", *latencyCSV)
	}
	if *resourceCSV != "" {
		if err := report.WriteResourceCSV(*resourceCSV); err != nil {
			log.Fatalf("Failed to write resource CSV: %v", err)
		}
		fmt.Printf("Saved system metrics to %s\n", *resourceCSV)
	}
}

// smokeTest runs the basic add/match/cancel flow before the stress load.
func smokeTest() {
	fmt.Println("=== FUNCTIONAL TESTS ===")
	book := orderbook.NewBook()

	t1 := book.Submit(orderbook.NewOrder(1, orderbook.Buy, orderbook.GoodTillCancel, 100, 10))
	fmt.Printf("Added BUY 100x10, trades executed = %d\n", len(t1))

	t2 := book.Submit(orderbook.NewOrder(2, orderbook.Sell, orderbook.GoodTillCancel, 99, 10))
	fmt.Printf("Added SELL 99x10, trades executed = %d\n", len(t2))

	book.Submit(orderbook.NewOrder(3, orderbook.Buy, orderbook.GoodTillCancel, 101, 5))
	book.Cancel(3)
	fmt.Printf("Cancelled order #3, book size now = %d\n", book.RestingCount())
	fmt.Println("========================")
}
