package interfaces

import "crypto-trading-bot/internal/types"

// Strategy turns a price history window into a directional signal.
// Analyze is total: it returns a HOLD signal on internal failure instead of
// panicking past this boundary.
type Strategy interface {
	Name() string
	Analyze(candles []types.Candle, currentPrice float64) types.Signal
}
