package ml

import (
	"context"
	"math"
	"strings"
	"time"

	"crypto-trading-bot/internal/api"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/trace"
	"crypto-trading-bot/internal/types"
)

// minFeatureCandles is the minimum history needed to build the feature
// vector; with less, PrepareFeatures returns nil and prediction is skipped.
const minFeatureCandles = 20

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Advisor is the client for the external prediction service. It degrades
// instead of failing: health checks return false, predictions fall back to a
// neutral HOLD, and the loop carries on without the model.
type Advisor struct {
	client    *api.Client
	available bool
}

func NewAdvisor(cfg Config) *Advisor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Advisor{
		client: api.NewClient(
			api.WithBaseURL(cfg.BaseURL),
			api.WithTimeout(timeout),
			api.WithHeader("Content-Type", "application/json"),
			api.WithLogging(true),
		),
	}
}

// CheckHealth queries GET /health and records availability. It never
// returns an error: an unreachable service simply reads as unavailable.
func (a *Advisor) CheckHealth(ctx context.Context) bool {
	resp, err := a.client.GET(ctx, "/health")
	if err != nil {
		logger.Warn(ctx, "ML service is not available", "error", err)
		a.available = false
		return false
	}

	var health struct {
		Status      string `json:"status"`
		ModelLoaded bool   `json:"model_loaded"`
	}
	if err := resp.ParseJSON(&health); err != nil {
		logger.Warn(ctx, "ML service returned malformed health payload", "error", err)
		a.available = false
		return false
	}

	a.available = health.Status == "ok" && health.ModelLoaded
	if a.available {
		logger.Info(ctx, "ML service is available and model is loaded")
	} else {
		logger.Warn(ctx, "ML service is up but model is not loaded", "status", health.Status)
	}
	return a.available
}

// IsAvailable reports the result of the last health check.
func (a *Advisor) IsAvailable() bool {
	return a.available
}

// PrepareFeatures builds the 12-dimension feature vector:
// 5 mean-normalized recent closes, 5 period-over-period changes, the last
// volume against its 10-period average, and a volatility ratio. Returns nil
// when fewer than 20 candles are available.
func (a *Advisor) PrepareFeatures(candles []types.Candle) []float64 {
	if len(candles) < minFeatureCandles {
		return nil
	}

	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Vol
	}

	features := make([]float64, 0, 12)

	// Last 5 closes normalized against their mean.
	recent := closes[len(closes)-5:]
	avgClose := 0.0
	for _, c := range recent {
		avgClose += c
	}
	avgClose /= float64(len(recent))
	for _, c := range recent {
		features = append(features, (c-avgClose)/avgClose)
	}

	// Relative price change over each of the last 5 periods.
	for i := 1; i <= 5; i++ {
		cur := closes[len(closes)-i]
		prev := closes[len(closes)-i-1]
		features = append(features, (cur-prev)/prev)
	}

	// Last volume over the 10-period average volume, minus 1.
	avgVolume := 0.0
	for _, v := range volumes[len(volumes)-10:] {
		avgVolume += v
	}
	avgVolume /= 10
	features = append(features, volumes[len(volumes)-1]/avgVolume-1)

	// Volatility: stddev of the last 10 closes over their mean.
	last10 := closes[len(closes)-10:]
	mean := 0.0
	for _, c := range last10 {
		mean += c
	}
	mean /= float64(len(last10))
	variance := 0.0
	for _, c := range last10 {
		variance += (c - mean) * (c - mean)
	}
	variance /= float64(len(last10))
	features = append(features, math.Sqrt(variance)/mean)

	return features
}

// Predict posts the features to /predict. Transport or remote failures yield
// a neutral HOLD prediction rather than an error.
func (a *Advisor) Predict(ctx context.Context, features []float64, candles []types.Candle) types.MLPrediction {
	ctx, span := trace.StartSpan(ctx, "ml.Predict")
	defer span.End()

	resp, err := a.client.POST(ctx, "/predict", map[string]any{
		"features": features,
		"ohlcv":    candles,
	})
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to get ML prediction", err)
		return neutralPrediction()
	}

	var out struct {
		Prediction int     `json:"prediction"`
		Confidence float64 `json:"confidence"`
		Signal     string  `json:"signal"`
		Timestamp  string  `json:"timestamp"`
	}
	if err := resp.ParseJSON(&out); err != nil {
		logger.ErrorWithErr(ctx, "Malformed ML prediction payload", err)
		return neutralPrediction()
	}

	signal := strings.ToUpper(strings.TrimSpace(out.Signal))
	switch signal {
	case types.ActionBuy, types.ActionSell, types.ActionHold:
	default:
		signal = types.ActionHold
	}
	confidence := out.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = 0.5
	}

	return types.MLPrediction{
		Signal:     signal,
		Confidence: confidence,
		Ts:         time.Now().UnixMilli(),
	}
}

func neutralPrediction() types.MLPrediction {
	return types.MLPrediction{
		Signal:     types.ActionHold,
		Confidence: 0.5,
		Ts:         time.Now().UnixMilli(),
	}
}
