package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// Advisor wraps the external prediction service. Every method is total: the
// trading loop must never block or fail because the model is down.
type Advisor interface {
	CheckHealth(ctx context.Context) bool
	IsAvailable() bool
	PrepareFeatures(candles []types.Candle) []float64
	Predict(ctx context.Context, features []float64, candles []types.Candle) types.MLPrediction
}
