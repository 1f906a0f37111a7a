package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/ta"
	"crypto-trading-bot/internal/types"
)

// EMAConfig holds the crossover parameters. Threshold is the minimum
// fast/slow divergence in percent before a signal fires.
type EMAConfig struct {
	FastPeriod int
	SlowPeriod int
	RSIPeriod  int
	Threshold  float64
}

func DefaultEMAConfig() EMAConfig {
	return EMAConfig{FastPeriod: 9, SlowPeriod: 21, RSIPeriod: 14, Threshold: 0.25}
}

// EMAStrategy signals on the divergence between a fast and a slow EMA,
// filtered by RSI to avoid chasing overbought/oversold moves.
type EMAStrategy struct {
	cfg EMAConfig
}

func NewEMAStrategy(cfg EMAConfig) *EMAStrategy {
	if cfg.FastPeriod <= 0 {
		cfg = DefaultEMAConfig()
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = 14
	}
	return &EMAStrategy{cfg: cfg}
}

func (s *EMAStrategy) Name() string { return "ema" }

// Analyze is total: any internal failure yields a HOLD signal instead of a
// panic, so callers can always act on the return value.
func (s *EMAStrategy) Analyze(candles []types.Candle, currentPrice float64) (sig types.Signal) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(context.Background(), "Strategy analysis failed", "strategy", s.Name(), "panic", r)
			sig = holdSignal(currentPrice, fmt.Sprintf("analysis failed: %v", r), 0.5)
		}
	}()

	if len(candles) == 0 {
		return holdSignal(currentPrice, "no candles available", 0.5)
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	fastEMA := ta.EMA(closes, s.cfg.FastPeriod)
	slowEMA := ta.EMA(closes, s.cfg.SlowPeriod)
	rsi := ta.RSI(closes, s.cfg.RSIPeriod)

	if slowEMA == 0 {
		return holdSignal(currentPrice, "slow EMA is zero", 0.5)
	}
	emaDiff := (fastEMA - slowEMA) / slowEMA * 100

	switch {
	case emaDiff > s.cfg.Threshold && rsi < 70:
		return types.Signal{
			Action:     types.ActionBuy,
			Confidence: math.Min(math.Abs(emaDiff)/2, 0.9),
			Reason:     fmt.Sprintf("Fast EMA (%.2f) > Slow EMA (%.2f), RSI: %.1f", fastEMA, slowEMA, rsi),
			Price:      currentPrice,
			Ts:         time.Now().UnixMilli(),
		}
	case emaDiff < -s.cfg.Threshold && rsi > 30:
		return types.Signal{
			Action:     types.ActionSell,
			Confidence: math.Min(math.Abs(emaDiff)/2, 0.9),
			Reason:     fmt.Sprintf("Fast EMA (%.2f) < Slow EMA (%.2f), RSI: %.1f", fastEMA, slowEMA, rsi),
			Price:      currentPrice,
			Ts:         time.Now().UnixMilli(),
		}
	default:
		reason := fmt.Sprintf("EMA diff (%.3f%%) below threshold (%.2f%%), RSI: %.1f", emaDiff, s.cfg.Threshold, rsi)
		return holdSignal(currentPrice, reason, 0.5)
	}
}

func holdSignal(price float64, reason string, confidence float64) types.Signal {
	return types.Signal{
		Action:     types.ActionHold,
		Confidence: confidence,
		Reason:     reason,
		Price:      price,
		Ts:         time.Now().UnixMilli(),
	}
}
