package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  symbol: BTC/USDT
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "BTC/USDT", cfg.Bot.Symbol)
	assert.Equal(t, "1m", cfg.Bot.Timeframe)
	assert.Equal(t, 30, cfg.Bot.PollSeconds)
	assert.Equal(t, 100, cfg.Bot.CandleLimit)
	assert.Equal(t, 0.6, cfg.Bot.ConfidenceThreshold)
	assert.Equal(t, "USDT", cfg.Bot.QuoteCurrency)
	assert.Equal(t, 10, cfg.Bot.CallTimeoutSeconds)

	assert.Equal(t, 10.0, cfg.Risk.MaxPositionPercent)
	assert.Equal(t, 2.0, cfg.Risk.StopLossPercent)
	assert.Equal(t, 5.0, cfg.Risk.TakeProfitPercent)
	assert.Equal(t, 10, cfg.Risk.MaxDailyTrades)
	assert.Equal(t, 300, cfg.Risk.MinTradeIntervalSec)

	assert.Equal(t, 9, cfg.Strategy.FastPeriod)
	assert.Equal(t, 21, cfg.Strategy.SlowPeriod)
	assert.Equal(t, 14, cfg.Strategy.RSIPeriod)
	assert.Equal(t, 0.25, cfg.Strategy.Threshold)

	assert.False(t, cfg.ML.Enabled)
	assert.Equal(t, "http://localhost:5000", cfg.ML.BaseURL)
	assert.Equal(t, ":3000", cfg.Server.Addr)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
bot:
  symbol: ETH/USDT
  timeframe: 5m
  poll_seconds: 60
  confidence_threshold: 0.75
risk:
  max_position_percent: 25
  max_daily_trades: 3
strategy:
  fast_period: 5
  slow_period: 13
ml:
  enabled: true
  base_url: http://ml:8080
server:
  addr: ":8090"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ETH/USDT", cfg.Bot.Symbol)
	assert.Equal(t, "5m", cfg.Bot.Timeframe)
	assert.Equal(t, 60, cfg.Bot.PollSeconds)
	assert.Equal(t, 0.75, cfg.Bot.ConfidenceThreshold)
	assert.Equal(t, 25.0, cfg.Risk.MaxPositionPercent)
	assert.Equal(t, 3, cfg.Risk.MaxDailyTrades)
	assert.Equal(t, 5, cfg.Strategy.FastPeriod)
	assert.Equal(t, 13, cfg.Strategy.SlowPeriod)
	assert.True(t, cfg.ML.Enabled)
	assert.Equal(t, "http://ml:8080", cfg.ML.BaseURL)
	assert.Equal(t, ":8090", cfg.Server.Addr)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "bot: [not a map")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigRejectsEmptySymbol(t *testing.T) {
	path := writeConfig(t, "bot:\n  timeframe: 1m\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot.symbol")
}

func TestLoadConfigRejectsInvertedPeriods(t *testing.T) {
	path := writeConfig(t, `
bot:
  symbol: BTC/USDT
strategy:
  fast_period: 21
  slow_period: 9
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fast_period")
}

func TestValidateBounds(t *testing.T) {
	var c Config
	c.applyDefaults()
	c.Bot.Symbol = "BTC/USDT"
	require.NoError(t, c.Validate())

	c.Risk.MaxPositionPercent = 150
	assert.Error(t, c.Validate())

	c.Risk.MaxPositionPercent = 10
	c.Risk.StopLossPercent = -1
	assert.Error(t, c.Validate())
}
