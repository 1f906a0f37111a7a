package server

import (
	"encoding/json"
	"net/http"
	"time"

	"crypto-trading-bot/internal/bot"
	"crypto-trading-bot/internal/risk"
)

// State tells whether the service has a live bot behind it. Without exchange
// credentials the service still serves its API, but as Uninitialized with
// its own response contract instead of a nil bot scattered through handlers.
type State string

const (
	StateReady         State = "ready"
	StateUninitialized State = "uninitialized"
)

// Service is the HTTP/WebSocket surface over the trading bot.
type Service struct {
	bot   *bot.Bot
	risk  *risk.Manager
	state State
}

// NewService wires the handlers to a live bot.
func NewService(b *bot.Bot, rm *risk.Manager) *Service {
	return &Service{bot: b, risk: rm, state: StateReady}
}

// NewUninitializedService serves the API without a bot (no credentials).
func NewUninitializedService() *Service {
	return &Service{state: StateUninitialized}
}

// Routes registers all endpoints on the mux.
func (s *Service) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/market", s.handleMarket)
	mux.HandleFunc("/api/position", s.handlePosition)
	mux.HandleFunc("/api/bot/start", s.handleStart)
	mux.HandleFunc("/api/bot/stop", s.handleStop)
	mux.HandleFunc("/api/trading/enable", s.handleEnableTrading)
	mux.HandleFunc("/api/trading/disable", s.handleDisableTrading)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/ws", s.handleWS)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"state":     s.state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// requireBot short-circuits requests while uninitialized.
func (s *Service) requireBot(w http.ResponseWriter) bool {
	if s.state == StateUninitialized {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"state": StateUninitialized,
			"error": "exchange credentials not configured",
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
