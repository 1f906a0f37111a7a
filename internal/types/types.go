package types

import "time"

// Signal actions shared by the strategy engine and the ML advisor.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// Position sides.
const (
	SideLong  = "long"
	SideShort = "short"
)

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Signal is a directional opinion with a confidence in [0,1].
type Signal struct {
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	Price      float64 `json:"price"`
	Ts         int64   `json:"ts"`
}

// MLPrediction is the external model's opinion. Callers pass nil when the
// service is down or features could not be built.
type MLPrediction struct {
	Signal     string  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Ts         int64   `json:"ts"`
}

type Balance struct {
	Total     float64 `json:"total"`
	Available float64 `json:"available"`
	Used      float64 `json:"used"`
	Currency  string  `json:"currency"`
}

type Ticker struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
	Ts     int64   `json:"ts"`
}

// MarketData is the 24h summary shape served to the API layer.
type MarketData struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Change24h        float64 `json:"change24h"`
	ChangePercent24h float64 `json:"changePercent24h"`
	Volume24h        float64 `json:"volume24h"`
	High24h          float64 `json:"high24h"`
	Low24h           float64 `json:"low24h"`
	Bid              float64 `json:"bid"`
	Ask              float64 `json:"ask"`
	Timestamp        string  `json:"timestamp"`
}

// Position is the single open position tracked by the trading loop.
// StopLoss and TakeProfit are fixed at open time and never recalculated.
type Position struct {
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	EntryPrice    float64   `json:"entryPrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	Amount        float64   `json:"amount"`
	StopLoss      float64   `json:"stopLoss"`
	TakeProfit    float64   `json:"takeProfit"`
	Profit        float64   `json:"profit"`
	ProfitPercent float64   `json:"profitPercent"`
	OpenTime      time.Time `json:"openTime"`
}

// PositionSummary groups position fields for the status payload.
type PositionSummary struct {
	Current *Position `json:"current"`
	Total   int       `json:"total"`
	Profit  float64   `json:"profit"`
}

// RiskStats is the risk counter snapshot exposed through the status surface.
type RiskStats struct {
	DailyTradeCount int   `json:"dailyTradeCount"`
	MaxDailyTrades  int   `json:"maxDailyTrades"`
	LastTradeTime   int64 `json:"lastTradeTime"`
}

// BotStatus is the full status payload for the service layer.
type BotStatus struct {
	IsRunning      bool            `json:"isRunning"`
	TradingEnabled bool            `json:"tradingEnabled"`
	Balance        Balance         `json:"balance"`
	Positions      PositionSummary `json:"positions"`
	Risk           RiskStats       `json:"risk"`
	UptimeSeconds  int64           `json:"uptime"`
	Timestamp      string          `json:"timestamp"`
}
