package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/api"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/bots"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/console"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/journal"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/market"
)

// Per-symbol ladder skews so the books don't move in lockstep.
var feedSkews = []int{0, 3, 8}

func main() {
	port := flag.String("port", "8088", "HTTP server port")
	dbPath := flag.String("db", "", "SQLite trade journal path (empty = journaling off)")
	corsOrigins := flag.String("cors", "", "comma-separated allowed CORS origins (empty = allow all for dev)")
	refresh := flag.Duration("refresh", 500*time.Millisecond, "console refresh interval")
	depth := flag.Int("depth", 5, "ladder depth shown on the console")
	makers := flag.Bool("makers", true, "run a quoting maker per symbol")
	noUI := flag.Bool("no-ui", false, "disable the console display and input loop")
	flag.Parse()

	registry := market.NewRegistry()

	// Optional trade journal
	var jr *journal.Journal
	if *dbPath != "" {
		var err error
		jr, err = journal.Open(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		log.Printf("Journaling trades to %s", *dbPath)
	} else {
		log.Printf("No -db given - trade journaling disabled")
	}

	server := api.NewServer(registry, jr)
	if *corsOrigins != "" {
		origins := strings.Split(*corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		server.SetCORSOrigins(origins)
		log.Printf("CORS restricted to: %v", origins)
	}

	// Executed trades flow to the WebSocket hub and the journal. The
	// callbacks run after the market guard is released.
	for _, mkt := range registry.Markets() {
		mkt.OnTrade(server.HandleTrade)
		if jr != nil {
			mkt.OnTrade(jr.Record)
		}
	}

	// Synthetic producers: one IOC feed per symbol, optionally a maker.
	manager := bots.NewManager()
	for i, mkt := range registry.Markets() {
		manager.Add(bots.NewFeed(mkt, feedSkews[i%len(feedSkews)]))
		if *makers {
			manager.Add(bots.NewMaker(mkt, 250*time.Millisecond, 5))
		}
	}
	manager.StartAll()

	ctx, cancel := context.WithCancel(context.Background())

	if !*noUI {
		display := console.NewDisplay(registry, os.Stdout, *depth, *refresh)
		go display.Run(ctx)

		input := console.NewInput(registry, os.Stdin)
		go input.Run(ctx, cancel)
	}

	addr := ":" + *port
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}
	go func() {
		log.Printf("Market data server on http://localhost%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for Q on the console or an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		cancel()
	case <-ctx.Done():
	}

	log.Println("Shutting down...")

	manager.StopAll()
	server.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if jr != nil {
		if err := jr.Close(); err != nil {
			log.Printf("Journal close error: %v", err)
		}
	}

	console.WriteSummary(os.Stdout, registry)
}
