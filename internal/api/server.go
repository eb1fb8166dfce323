package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/journal"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/market"
	"github.com/Sallapalli-Prajwal/low-latency-orderbook/internal/orderbook"
)

const defaultDepth = 5

// Server exposes the read-only market-data surface: book snapshots, tapes,
// per-symbol stats, journal history and a WebSocket trade stream. Order
// entry stays off the network on purpose.
type Server struct {
	registry    *market.Registry
	journal     *journal.Journal // may be nil
	hub         *Hub
	upgrader    websocket.Upgrader
	corsOrigins []string
}

// NewServer creates a server over the registry. jr may be nil when
// journaling is disabled.
func NewServer(registry *market.Registry, jr *journal.Journal) *Server {
	s := &Server{
		registry: registry,
		journal:  jr,
		hub:      NewHub(),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

// SetCORSOrigins restricts browser access to the given origins. An empty
// slice allows all (development default).
func (s *Server) SetCORSOrigins(origins []string) {
	s.corsOrigins = origins
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.corsOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range s.corsOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	allowedOrigins := s.corsOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/symbols", s.getSymbols)
		r.Get("/stats", s.getStats)
		r.Get("/book/{symbol}", s.getBook)
		r.Get("/tape/{symbol}", s.getTape)
		r.Get("/history/{symbol}", s.getHistory)
	})

	r.Get("/ws", s.handleWebSocket)

	return r
}

// HandleTrade pushes one executed trade to the WebSocket clients. Wire it
// up via Market.OnTrade.
func (s *Server) HandleTrade(symbol string, trade orderbook.Trade) {
	s.hub.Broadcast(map[string]interface{}{
		"type":   "trade",
		"symbol": symbol,
		"trade":  trade,
	})
}

// Shutdown disconnects all WebSocket clients.
func (s *Server) Shutdown() {
	s.hub.CloseAll()
}

func (s *Server) getSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"symbols": s.registry.Symbols(),
		"active":  s.registry.ActiveSymbol(),
	})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	type stat struct {
		Symbol  string `json:"symbol"`
		Trades  uint64 `json:"trades"`
		Resting int    `json:"resting"`
		BestBid int32  `json:"best_bid"`
		BestAsk int32  `json:"best_ask"`
		Spread  int32  `json:"spread"`
	}

	stats := make([]stat, 0, len(s.registry.Symbols()))
	for _, m := range s.registry.Markets() {
		snap := m.Snapshot(0)
		stats = append(stats, stat{
			Symbol:  snap.Symbol,
			Trades:  snap.TradeCount,
			Resting: snap.Resting,
			BestBid: snap.BestBid,
			BestAsk: snap.BestAsk,
			Spread:  snap.Spread(),
		})
	}
	writeJSON(w, stats)
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	mkt, ok := s.registry.Market(chi.URLParam(r, "symbol"))
	if !ok {
		http.Error(w, "unknown symbol", http.StatusNotFound)
		return
	}

	depth := defaultDepth
	if d := r.URL.Query().Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			http.Error(w, "invalid depth", http.StatusBadRequest)
			return
		}
		depth = n
	}

	writeJSON(w, mkt.Snapshot(depth))
}

func (s *Server) getTape(w http.ResponseWriter, r *http.Request) {
	mkt, ok := s.registry.Market(chi.URLParam(r, "symbol"))
	if !ok {
		http.Error(w, "unknown symbol", http.StatusNotFound)
		return
	}

	snap := mkt.Snapshot(0)
	writeJSON(w, map[string]interface{}{
		"symbol": snap.Symbol,
		"trades": snap.TradeCount,
		"tape":   snap.Tape,
	})
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "journaling disabled", http.StatusServiceUnavailable)
		return
	}

	symbol := chi.URLParam(r, "symbol")
	if _, ok := s.registry.Market(symbol); !ok {
		http.Error(w, "unknown symbol", http.StatusNotFound)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := s.journal.Recent(symbol, limit)
	if err != nil {
		log.Printf("api: history query failed: %v", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []journal.Row{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
	s.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode failed: %v", err)
	}
}
