package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/types"
)

type BinanceConfig struct {
	APIKey    string
	APISecret string
	Testnet   bool
}

// BinanceClient implements the Exchange capability set against Binance spot.
// Order placement exists on the underlying SDK but the trading loop never
// calls it; the loop only reads market data and balances.
type BinanceClient struct {
	spot *binance.Client
}

func NewBinanceClient(cfg BinanceConfig) (*BinanceClient, error) {
	spotClient := binance.NewClient(cfg.APIKey, cfg.APISecret)

	if cfg.Testnet {
		spotClient.SetApiEndpoint("https://testnet.binance.vision")
	}

	return &BinanceClient{spot: spotClient}, nil
}

// Connect pings the exchange to verify connectivity before the loop starts.
func (c *BinanceClient) Connect(ctx context.Context) error {
	if err := c.spot.NewPingService().Do(ctx); err != nil {
		return fmt.Errorf("exchange ping failed: %w", err)
	}
	logger.Info(ctx, "Connected to Binance")
	return nil
}

// GetBalance returns the spot balance for one currency.
func (c *BinanceClient) GetBalance(ctx context.Context, currency string) (types.Balance, error) {
	account, err := c.spot.NewGetAccountService().Do(ctx)
	if err != nil {
		return types.Balance{}, fmt.Errorf("failed to fetch account: %w", err)
	}

	for _, b := range account.Balances {
		if b.Asset != currency {
			continue
		}
		free := parseFloat(b.Free)
		locked := parseFloat(b.Locked)
		return types.Balance{
			Total:     free + locked,
			Available: free,
			Used:      locked,
			Currency:  currency,
		}, nil
	}

	return types.Balance{Currency: currency}, nil
}

// GetTicker returns the 24h ticker for the symbol.
func (c *BinanceClient) GetTicker(ctx context.Context, symbol string) (types.Ticker, error) {
	stats, err := c.stats24h(ctx, symbol)
	if err != nil {
		return types.Ticker{}, err
	}

	return types.Ticker{
		Symbol: symbol,
		Last:   parseFloat(stats.LastPrice),
		Bid:    parseFloat(stats.BidPrice),
		Ask:    parseFloat(stats.AskPrice),
		High:   parseFloat(stats.HighPrice),
		Low:    parseFloat(stats.LowPrice),
		Volume: parseFloat(stats.Volume),
		Ts:     stats.CloseTime,
	}, nil
}

// GetOHLCV returns up to limit candles, oldest first.
func (c *BinanceClient) GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	klines, err := c.spot.NewKlinesService().
		Symbol(normalizeSymbol(symbol)).
		Interval(timeframe).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines: %w", err)
	}

	candles := make([]types.Candle, len(klines))
	for i, k := range klines {
		candles[i] = types.Candle{
			Ts:    k.OpenTime,
			Open:  parseFloat(k.Open),
			High:  parseFloat(k.High),
			Low:   parseFloat(k.Low),
			Close: parseFloat(k.Close),
			Vol:   parseFloat(k.Volume),
		}
	}

	return candles, nil
}

// GetMarketData returns the 24h market summary served to the API layer.
func (c *BinanceClient) GetMarketData(ctx context.Context, symbol string) (types.MarketData, error) {
	stats, err := c.stats24h(ctx, symbol)
	if err != nil {
		return types.MarketData{}, err
	}

	return types.MarketData{
		Symbol:           symbol,
		Price:            parseFloat(stats.LastPrice),
		Change24h:        parseFloat(stats.PriceChange),
		ChangePercent24h: parseFloat(stats.PriceChangePercent),
		Volume24h:        parseFloat(stats.QuoteVolume),
		High24h:          parseFloat(stats.HighPrice),
		Low24h:           parseFloat(stats.LowPrice),
		Bid:              parseFloat(stats.BidPrice),
		Ask:              parseFloat(stats.AskPrice),
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (c *BinanceClient) stats24h(ctx context.Context, symbol string) (*binance.PriceChangeStats, error) {
	stats, err := c.spot.NewListPriceChangeStatsService().
		Symbol(normalizeSymbol(symbol)).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticker stats: %w", err)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("no ticker stats for %s", symbol)
	}
	return stats[0], nil
}

// normalizeSymbol maps "BTC/USDT" to the exchange's "BTCUSDT" form.
func normalizeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
