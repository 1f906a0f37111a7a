package server

import (
	"encoding/json"
	"net/http"
	"time"

	"crypto-trading-bot/internal/bot"
	"crypto-trading-bot/internal/logger"
)

// GET /api/status
func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireBot(w) {
		return
	}

	writeJSON(w, http.StatusOK, s.bot.GetStatus(r.Context()))
}

// GET /api/market
func (s *Service) handleMarket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireBot(w) {
		return
	}

	data, err := s.bot.GetMarketData(r.Context())
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to fetch market data", err)
		writeError(w, http.StatusBadGateway, "failed to fetch market data")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GET /api/position
func (s *Service) handlePosition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireBot(w) {
		return
	}

	pos := s.bot.GetCurrentPosition()
	writeJSON(w, http.StatusOK, map[string]any{"position": pos})
}

// POST /api/bot/start
func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireBot(w) {
		return
	}

	if err := s.bot.Start(r.Context()); err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to start bot", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"isRunning": s.bot.IsActive()})
}

// POST /api/bot/stop
func (s *Service) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireBot(w) {
		return
	}

	s.bot.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"isRunning": s.bot.IsActive()})
}

// POST /api/trading/enable
func (s *Service) handleEnableTrading(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireBot(w) {
		return
	}

	s.bot.EnableTrading()
	writeJSON(w, http.StatusOK, map[string]any{"tradingEnabled": true})
}

// POST /api/trading/disable
func (s *Service) handleDisableTrading(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireBot(w) {
		return
	}

	s.bot.DisableTrading()
	writeJSON(w, http.StatusOK, map[string]any{"tradingEnabled": false})
}

// settingsRequest is the partial settings payload: nil fields are untouched.
type settingsRequest struct {
	bot.ConfigUpdate
	Risk *struct {
		MaxPositionPercent  *float64 `json:"maxPositionPercent"`
		StopLossPercent     *float64 `json:"stopLossPercent"`
		TakeProfitPercent   *float64 `json:"takeProfitPercent"`
		MaxDailyTrades      *int     `json:"maxDailyTrades"`
		MinTradeIntervalSec *int     `json:"minTradeIntervalSeconds"`
	} `json:"risk"`
}

// PUT /api/settings
func (s *Service) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireBot(w) {
		return
	}

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.bot.UpdateConfig(req.ConfigUpdate)

	if req.Risk != nil {
		cfg := s.risk.Config()
		if req.Risk.MaxPositionPercent != nil {
			cfg.MaxPositionPercent = *req.Risk.MaxPositionPercent
		}
		if req.Risk.StopLossPercent != nil {
			cfg.StopLossPercent = *req.Risk.StopLossPercent
		}
		if req.Risk.TakeProfitPercent != nil {
			cfg.TakeProfitPercent = *req.Risk.TakeProfitPercent
		}
		if req.Risk.MaxDailyTrades != nil {
			cfg.MaxDailyTrades = *req.Risk.MaxDailyTrades
		}
		if req.Risk.MinTradeIntervalSec != nil {
			cfg.MinTradeInterval = time.Duration(*req.Risk.MinTradeIntervalSec) * time.Second
		}
		s.risk.UpdateConfig(cfg)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
