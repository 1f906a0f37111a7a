package interfaces

import (
	"context"

	"crypto-trading-bot/internal/types"
)

// Exchange is the market-data collaborator. Order placement exists on the
// concrete client but is never invoked by the trading loop.
type Exchange interface {
	Connect(ctx context.Context) error
	GetBalance(ctx context.Context, currency string) (types.Balance, error)
	GetTicker(ctx context.Context, symbol string) (types.Ticker, error)
	GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)
	GetMarketData(ctx context.Context, symbol string) (types.MarketData, error)
}
