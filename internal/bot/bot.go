package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/risk"
	"crypto-trading-bot/internal/strategy"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/types"
)

// Config is the bot's own runtime configuration. Updates apply on the next
// tick; an in-flight tick keeps the snapshot it started with.
type Config struct {
	Symbol              string
	Timeframe           string
	Strategy            string
	PollInterval        time.Duration
	CandleLimit         int
	ConfidenceThreshold float64
	QuoteCurrency       string
	CallTimeout         time.Duration
}

// ConfigUpdate carries a partial config change; nil fields are untouched.
type ConfigUpdate struct {
	Symbol    *string `json:"symbol"`
	Timeframe *string `json:"timeframe"`
	Strategy  *string `json:"strategy"`
}

// Bot runs the trading loop: one tick per poll interval, executed to
// completion on a single goroutine so ticks never overlap. It owns the one
// open position; the risk manager owns the trade counters.
type Bot struct {
	mu sync.Mutex

	cfg      Config
	exchange interfaces.Exchange
	strat    interfaces.Strategy
	advisor  interfaces.Advisor // nil when the ML service is disabled
	risk     *risk.Manager

	isRunning      bool
	tradingEnabled bool
	position       *types.Position
	startTime      time.Time
	cancel         context.CancelFunc
	done           chan struct{}
}

func New(cfg Config, ex interfaces.Exchange, strat interfaces.Strategy, advisor interfaces.Advisor, rm *risk.Manager) *Bot {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.CandleLimit == 0 {
		cfg.CandleLimit = 100
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.6
	}
	if cfg.QuoteCurrency == "" {
		cfg.QuoteCurrency = "USDT"
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	return &Bot{
		cfg:       cfg,
		exchange:  ex,
		strat:     strat,
		advisor:   advisor,
		risk:      rm,
		startTime: time.Now(),
	}
}

// Start verifies exchange connectivity and launches the tick loop. A failed
// connectivity check fails the transition and the bot stays stopped.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isRunning {
		logger.Warn(ctx, "Bot is already running")
		return nil
	}

	connCtx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	defer cancel()
	if err := b.exchange.Connect(connCtx); err != nil {
		return fmt.Errorf("failed to connect to exchange: %w", err)
	}

	// Advisor health is best-effort: an unhealthy model never blocks start.
	if b.advisor != nil {
		healthCtx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
		b.advisor.CheckHealth(healthCtx)
		cancel()
	}

	loopCtx, loopCancel := context.WithCancel(context.Background())
	b.cancel = loopCancel
	b.done = make(chan struct{})
	b.isRunning = true
	b.startTime = time.Now()

	go b.run(loopCtx, b.done)

	logger.Info(ctx, "Trading bot started",
		"symbol", b.cfg.Symbol,
		"timeframe", b.cfg.Timeframe,
		"poll_interval", b.cfg.PollInterval,
	)
	return nil
}

// Stop cancels the pending tick and transitions to Stopped. Idempotent: a
// second Stop is a no-op with a warning. An in-flight tick is not
// interrupted; Stop waits for it to finish and its effects are honored, so
// a Start after Stop can never overlap two loops.
func (b *Bot) Stop() {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		logger.Warn(context.Background(), "Bot is not running")
		return
	}

	cancel := b.cancel
	done := b.done
	b.cancel = nil
	b.isRunning = false
	b.mu.Unlock()

	cancel()
	<-done
	logger.Info(context.Background(), "Trading bot stopped")
}

// EnableTrading permits the next eligible tick to open a position. It does
// not open one itself.
func (b *Bot) EnableTrading() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradingEnabled = true
	logger.Info(context.Background(), "Trading enabled")
}

func (b *Bot) DisableTrading() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tradingEnabled = false
	logger.Info(context.Background(), "Trading disabled")
}

func (b *Bot) IsActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isRunning
}

func (b *Bot) IsTradingEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tradingEnabled
}

// GetCurrentPosition returns a copy of the open position, or nil.
func (b *Bot) GetCurrentPosition() *types.Position {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.position == nil {
		return nil
	}
	p := *b.position
	return &p
}

// GetStatus composes the full status payload. A failed balance fetch is
// logged and reported as a zero balance rather than failing the status call.
func (b *Bot) GetStatus(ctx context.Context) types.BotStatus {
	callCtx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	defer cancel()

	balance, err := b.exchange.GetBalance(callCtx, b.cfg.QuoteCurrency)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch balance for status", err)
		balance = types.Balance{Currency: b.cfg.QuoteCurrency}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	summary := types.PositionSummary{}
	if b.position != nil {
		p := *b.position
		summary = types.PositionSummary{Current: &p, Total: 1, Profit: p.Profit}
	}

	return types.BotStatus{
		IsRunning:      b.isRunning,
		TradingEnabled: b.tradingEnabled,
		Balance:        balance,
		Positions:      summary,
		Risk:           b.risk.Stats(),
		UptimeSeconds:  int64(time.Since(b.startTime).Seconds()),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// GetMarketData returns the market summary for the configured symbol.
func (b *Bot) GetMarketData(ctx context.Context) (types.MarketData, error) {
	b.mu.Lock()
	symbol := b.cfg.Symbol
	timeout := b.cfg.CallTimeout
	b.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return b.exchange.GetMarketData(callCtx, symbol)
}

// UpdateConfig applies a partial config change. In-flight ticks are not
// affected; the next tick picks up the new values.
func (b *Bot) UpdateConfig(update ConfigUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if update.Symbol != nil {
		b.cfg.Symbol = *update.Symbol
	}
	if update.Timeframe != nil {
		b.cfg.Timeframe = *update.Timeframe
	}
	if update.Strategy != nil {
		b.cfg.Strategy = *update.Strategy
	}
	logger.Info(context.Background(), "Bot configuration updated",
		"symbol", b.cfg.Symbol,
		"timeframe", b.cfg.Timeframe,
		"strategy", b.cfg.Strategy,
	)
}

// Uptime returns seconds since start.
func (b *Bot) Uptime() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(time.Since(b.startTime).Seconds())
}

// run fires ticks on the poll interval. Ticks execute synchronously on this
// goroutine, so a slow tick delays the next one instead of overlapping it.
// Cancellation is observed at the next tick boundary, and done closes only
// after the last tick has fully finished.
func (b *Bot) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	logger.Info(ctx, "Trading loop started", "interval", b.cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Trading loop exited")
			return
		case <-ticker.C:
			b.Tick(ctx)
		}
	}
}

// Tick executes one decision cycle. Any failure, including a panic, is
// contained here: the loop and its state survive to the next tick.
func (b *Bot) Tick(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "bot.Tick")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Panic in trading tick", "panic", r)
		}
	}()

	if err := b.tick(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Trading tick failed", err)
	}
}

func (b *Bot) tick(ctx context.Context) error {
	b.mu.Lock()
	cfg := b.cfg
	tradingEnabled := b.tradingEnabled
	b.mu.Unlock()

	// Detach from the loop context: Stop cancels only the pending tick,
	// never the calls of a tick already in flight. Trace values survive.
	ctx = context.WithoutCancel(ctx)

	tickerCtx, cancel := context.WithTimeout(ctx, cfg.CallTimeout)
	tkr, err := b.exchange.GetTicker(tickerCtx, cfg.Symbol)
	cancel()
	if err != nil {
		return fmt.Errorf("ticker fetch: %w", err)
	}

	ohlcvCtx, cancel := context.WithTimeout(ctx, cfg.CallTimeout)
	candles, err := b.exchange.GetOHLCV(ohlcvCtx, cfg.Symbol, cfg.Timeframe, cfg.CandleLimit)
	cancel()
	if err != nil {
		return fmt.Errorf("ohlcv fetch: %w", err)
	}

	currentPrice := tkr.Last
	logger.Debug(ctx, "Trading tick", "symbol", cfg.Symbol, "price", currentPrice)

	// An open position is managed before anything else, and no new position
	// opens in the same tick that closes one.
	if b.GetCurrentPosition() != nil {
		b.checkPositionExit(ctx, currentPrice)
		return nil
	}

	if !tradingEnabled {
		return nil
	}

	if allowance := b.risk.CanOpenTrade(); !allowance.Allowed {
		logger.Debug(ctx, "Cannot trade", "reason", allowance.Reason)
		return nil
	}

	emaSignal := b.strat.Analyze(candles, currentPrice)
	logger.Debug(ctx, "Strategy signal",
		"action", emaSignal.Action,
		"confidence", emaSignal.Confidence,
		"reason", emaSignal.Reason,
	)

	var mlPrediction *types.MLPrediction
	if b.advisor != nil && b.advisor.IsAvailable() {
		if features := b.advisor.PrepareFeatures(candles); len(features) > 0 {
			predictCtx, cancel := context.WithTimeout(ctx, cfg.CallTimeout)
			p := b.advisor.Predict(predictCtx, features, candles)
			cancel()
			mlPrediction = &p
			logger.Debug(ctx, "ML signal", "signal", p.Signal, "confidence", p.Confidence)
		}
	}

	final := strategy.Combine(emaSignal, mlPrediction)
	logger.Decision(ctx, cfg.Symbol, final.Action, final.Confidence, final.Reason)

	if final.Confidence <= cfg.ConfidenceThreshold {
		return nil
	}

	switch final.Action {
	case types.ActionBuy:
		return b.openPosition(ctx, cfg, types.SideLong, currentPrice, final.Reason)
	case types.ActionSell:
		return b.openPosition(ctx, cfg, types.SideShort, currentPrice, final.Reason)
	}
	return nil
}

// openPosition sizes and records a new position. No order reaches the venue:
// the loop only computes and logs what it would submit.
func (b *Bot) openPosition(ctx context.Context, cfg Config, side string, currentPrice float64, reason string) error {
	balanceCtx, cancel := context.WithTimeout(ctx, cfg.CallTimeout)
	balance, err := b.exchange.GetBalance(balanceCtx, cfg.QuoteCurrency)
	cancel()
	if err != nil {
		return fmt.Errorf("balance fetch: %w", err)
	}

	size := b.risk.CalculatePositionSize(balance.Available, currentPrice, side)
	if size.AmountInBase <= 0 {
		logger.Warn(ctx, "Skipping zero-size position", "available", balance.Available)
		return nil
	}

	logger.Trade(ctx, cfg.Symbol, side, size.AmountInBase, currentPrice,
		"quote_size", size.AmountInQuote,
		"stop_loss", size.StopLoss,
		"take_profit", size.TakeProfit,
		"reason", reason,
	)

	b.mu.Lock()
	b.position = &types.Position{
		Symbol:       cfg.Symbol,
		Side:         side,
		EntryPrice:   currentPrice,
		CurrentPrice: currentPrice,
		Amount:       size.AmountInBase,
		StopLoss:     size.StopLoss,
		TakeProfit:   size.TakeProfit,
		OpenTime:     time.Now(),
	}
	b.mu.Unlock()

	b.risk.RegisterTrade()
	logger.Info(ctx, "Position opened", "symbol", cfg.Symbol, "side", side, "entry", currentPrice)
	return nil
}

// checkPositionExit marks the position to market and closes it when the risk
// manager reports a stop-loss or take-profit condition.
func (b *Bot) checkPositionExit(ctx context.Context, currentPrice float64) {
	b.mu.Lock()
	pos := b.position
	if pos == nil {
		b.mu.Unlock()
		return
	}

	profit, profitPercent := b.risk.CalculateProfitLoss(pos.EntryPrice, currentPrice, pos.Amount, pos.Side)
	pos.CurrentPrice = currentPrice
	pos.Profit = profit
	pos.ProfitPercent = profitPercent

	decision := b.risk.ShouldClosePosition(pos.EntryPrice, currentPrice, pos.Side, pos.StopLoss, pos.TakeProfit)
	if !decision.ShouldClose {
		b.mu.Unlock()
		return
	}

	closed := *pos
	b.position = nil
	b.mu.Unlock()

	logger.Risk(ctx, closed.Symbol, "POSITION_CLOSED",
		"side", closed.Side,
		"entry", closed.EntryPrice,
		"exit", currentPrice,
		"profit", closed.Profit,
		"profit_percent", closed.ProfitPercent,
		"reason", decision.Reason,
	)
}
