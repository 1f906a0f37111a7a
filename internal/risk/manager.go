package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

type Config struct {
	MaxPositionPercent float64 // % of available balance per position
	StopLossPercent    float64
	TakeProfitPercent  float64
	MaxDailyTrades     int
	MinTradeInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxPositionPercent: 10,
		StopLossPercent:    2,
		TakeProfitPercent:  5,
		MaxDailyTrades:     10,
		MinTradeInterval:   5 * time.Minute,
	}
}

// TradeSize is the sizing result for a new position.
type TradeSize struct {
	AmountInBase  float64
	AmountInQuote float64
	StopLoss      float64
	TakeProfit    float64
}

// Allowance tells whether a new trade may open, with a reason when denied.
type Allowance struct {
	Allowed bool
	Reason  string
}

// CloseDecision tells whether an open position must close.
type CloseDecision struct {
	ShouldClose bool
	Reason      string
}

// Manager gates trade frequency and computes sizing, SL/TP and P&L.
// The trade counter state is owned here exclusively; the loop only calls in.
// Safe for concurrent use: the settings endpoint updates the config while
// the tick goroutine reads it.
type Manager struct {
	mu             sync.Mutex
	cfg            Config
	dailyTradeCnt  int
	lastTradeTime  time.Time
	dailyTradeDate string

	now func() time.Time
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, now: time.Now}
}

// NewManagerWithClock injects the clock, used by tests to drive the daily
// rollover and the minimum-interval gate deterministically.
func NewManagerWithClock(cfg Config, now func() time.Time) *Manager {
	return &Manager{cfg: cfg, now: now}
}

// CanOpenTrade checks the daily-trade and minimum-interval limits. The daily
// counter resets when the wall-clock date changes.
func (m *Manager) CanOpenTrade() Allowance {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := m.now().Format("2006-01-02")
	if m.dailyTradeDate != today {
		m.dailyTradeCnt = 0
		m.dailyTradeDate = today
	}

	if m.dailyTradeCnt >= m.cfg.MaxDailyTrades {
		return Allowance{Allowed: false, Reason: fmt.Sprintf("Daily trade limit reached (%d)", m.cfg.MaxDailyTrades)}
	}

	if !m.lastTradeTime.IsZero() {
		elapsed := m.now().Sub(m.lastTradeTime)
		if elapsed < m.cfg.MinTradeInterval {
			return Allowance{
				Allowed: false,
				Reason:  fmt.Sprintf("Min interval not met (%.0fs < %.0fs)", elapsed.Seconds(), m.cfg.MinTradeInterval.Seconds()),
			}
		}
	}

	return Allowance{Allowed: true}
}

// CalculatePositionSize sizes a new position from the available balance and
// derives the fixed stop-loss and take-profit prices for the side.
func (m *Manager) CalculatePositionSize(balance, currentPrice float64, side string) TradeSize {
	m.mu.Lock()
	defer m.mu.Unlock()

	amountInQuote := balance * (m.cfg.MaxPositionPercent / 100)
	amountInBase := amountInQuote / currentPrice

	var stopLoss, takeProfit float64
	if side == types.SideLong {
		stopLoss = currentPrice * (1 - m.cfg.StopLossPercent/100)
		takeProfit = currentPrice * (1 + m.cfg.TakeProfitPercent/100)
	} else {
		stopLoss = currentPrice * (1 + m.cfg.StopLossPercent/100)
		takeProfit = currentPrice * (1 - m.cfg.TakeProfitPercent/100)
	}

	return TradeSize{
		AmountInBase:  amountInBase,
		AmountInQuote: amountInQuote,
		StopLoss:      stopLoss,
		TakeProfit:    takeProfit,
	}
}

// RegisterTrade stamps the counters. Call exactly once per successfully
// opened position, never on a rejected attempt.
func (m *Manager) RegisterTrade() {
	m.mu.Lock()
	m.dailyTradeCnt++
	m.lastTradeTime = m.now()
	count, max := m.dailyTradeCnt, m.cfg.MaxDailyTrades
	m.mu.Unlock()

	logger.Info(context.Background(), "Trade registered",
		"daily_count", count,
		"max_daily_trades", max,
	)
}

// ShouldClosePosition evaluates the fixed SL/TP thresholds. Stop Loss is
// checked before Take Profit as a fixed tie-break.
func (m *Manager) ShouldClosePosition(entryPrice, currentPrice float64, side string, stopLoss, takeProfit float64) CloseDecision {
	if side == types.SideLong {
		if currentPrice <= stopLoss {
			return CloseDecision{ShouldClose: true, Reason: "Stop Loss hit"}
		}
		if currentPrice >= takeProfit {
			return CloseDecision{ShouldClose: true, Reason: "Take Profit hit"}
		}
	} else {
		if currentPrice >= stopLoss {
			return CloseDecision{ShouldClose: true, Reason: "Stop Loss hit"}
		}
		if currentPrice <= takeProfit {
			return CloseDecision{ShouldClose: true, Reason: "Take Profit hit"}
		}
	}

	return CloseDecision{}
}

// CalculateProfitLoss returns the absolute and percentage P&L of a position.
func (m *Manager) CalculateProfitLoss(entryPrice, currentPrice, amount float64, side string) (profit, profitPercent float64) {
	if side == types.SideLong {
		profit = (currentPrice - entryPrice) * amount
	} else {
		profit = (entryPrice - currentPrice) * amount
	}
	if notional := entryPrice * amount; notional != 0 {
		profitPercent = profit / notional * 100
	}
	return profit, profitPercent
}

// UpdateConfig replaces the risk parameters. Counters are untouched.
func (m *Manager) UpdateConfig(cfg Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	logger.Info(context.Background(), "Risk config updated",
		"max_position_percent", cfg.MaxPositionPercent,
		"stop_loss_percent", cfg.StopLossPercent,
		"take_profit_percent", cfg.TakeProfitPercent,
		"max_daily_trades", cfg.MaxDailyTrades,
		"min_trade_interval", cfg.MinTradeInterval,
	)
}

// Config returns a copy of the current risk parameters.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Stats returns the current trade counter snapshot.
func (m *Manager) Stats() types.RiskStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var last int64
	if !m.lastTradeTime.IsZero() {
		last = m.lastTradeTime.UnixMilli()
	}
	return types.RiskStats{
		DailyTradeCount: m.dailyTradeCnt,
		MaxDailyTrades:  m.cfg.MaxDailyTrades,
		LastTradeTime:   last,
	}
}
