package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bot struct {
		Symbol              string  `yaml:"symbol"`
		Timeframe           string  `yaml:"timeframe"`
		Strategy            string  `yaml:"strategy"`
		PollSeconds         int     `yaml:"poll_seconds"`
		CandleLimit         int     `yaml:"candle_limit"`
		ConfidenceThreshold float64 `yaml:"confidence_threshold"`
		QuoteCurrency       string  `yaml:"quote_currency"`
		CallTimeoutSeconds  int     `yaml:"call_timeout_seconds"`
	} `yaml:"bot"`
	Exchange struct {
		Testnet bool `yaml:"testnet"`
	} `yaml:"exchange"`
	Risk struct {
		MaxPositionPercent  float64 `yaml:"max_position_percent"`
		StopLossPercent     float64 `yaml:"stop_loss_percent"`
		TakeProfitPercent   float64 `yaml:"take_profit_percent"`
		MaxDailyTrades      int     `yaml:"max_daily_trades"`
		MinTradeIntervalSec int     `yaml:"min_trade_interval_seconds"`
	} `yaml:"risk"`
	Strategy struct {
		FastPeriod int     `yaml:"fast_period"`
		SlowPeriod int     `yaml:"slow_period"`
		RSIPeriod  int     `yaml:"rsi_period"`
		Threshold  float64 `yaml:"threshold_percent"`
	} `yaml:"strategy"`
	ML struct {
		Enabled        bool   `yaml:"enabled"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ml"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

func (c *Config) Validate() error {
	if c.Bot.Symbol == "" {
		return fmt.Errorf("bot.symbol cannot be empty")
	}
	if c.Bot.Timeframe == "" {
		return fmt.Errorf("bot.timeframe cannot be empty")
	}
	if c.Risk.MaxPositionPercent <= 0 || c.Risk.MaxPositionPercent > 100 {
		return fmt.Errorf("risk.max_position_percent must be between 0-100, got %.2f", c.Risk.MaxPositionPercent)
	}
	if c.Risk.StopLossPercent <= 0 {
		return fmt.Errorf("risk.stop_loss_percent must be positive, got %.2f", c.Risk.StopLossPercent)
	}
	if c.Risk.TakeProfitPercent <= 0 {
		return fmt.Errorf("risk.take_profit_percent must be positive, got %.2f", c.Risk.TakeProfitPercent)
	}
	if c.Strategy.FastPeriod >= c.Strategy.SlowPeriod {
		return fmt.Errorf("strategy.fast_period must be below slow_period, got %d >= %d", c.Strategy.FastPeriod, c.Strategy.SlowPeriod)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Bot.Timeframe == "" {
		c.Bot.Timeframe = "1m"
	}
	if c.Bot.Strategy == "" {
		c.Bot.Strategy = "ema_ml"
	}
	if c.Bot.PollSeconds == 0 {
		c.Bot.PollSeconds = 30
	}
	if c.Bot.CandleLimit == 0 {
		c.Bot.CandleLimit = 100
	}
	if c.Bot.ConfidenceThreshold == 0 {
		c.Bot.ConfidenceThreshold = 0.6
	}
	if c.Bot.QuoteCurrency == "" {
		c.Bot.QuoteCurrency = "USDT"
	}
	if c.Bot.CallTimeoutSeconds == 0 {
		c.Bot.CallTimeoutSeconds = 10
	}
	if c.Risk.MaxPositionPercent == 0 {
		c.Risk.MaxPositionPercent = 10
	}
	if c.Risk.StopLossPercent == 0 {
		c.Risk.StopLossPercent = 2
	}
	if c.Risk.TakeProfitPercent == 0 {
		c.Risk.TakeProfitPercent = 5
	}
	if c.Risk.MaxDailyTrades == 0 {
		c.Risk.MaxDailyTrades = 10
	}
	if c.Risk.MinTradeIntervalSec == 0 {
		c.Risk.MinTradeIntervalSec = 300
	}
	if c.Strategy.FastPeriod == 0 {
		c.Strategy.FastPeriod = 9
	}
	if c.Strategy.SlowPeriod == 0 {
		c.Strategy.SlowPeriod = 21
	}
	if c.Strategy.RSIPeriod == 0 {
		c.Strategy.RSIPeriod = 14
	}
	if c.Strategy.Threshold == 0 {
		c.Strategy.Threshold = 0.25
	}
	if c.ML.BaseURL == "" {
		c.ML.BaseURL = "http://localhost:5000"
	}
	if c.ML.TimeoutSeconds == 0 {
		c.ML.TimeoutSeconds = 10
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
}
