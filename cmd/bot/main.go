package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"crypto-trading-bot/internal/bot"
	"crypto-trading-bot/internal/exchange"
	"crypto-trading-bot/internal/interfaces"
	"crypto-trading-bot/internal/logger"
	"crypto-trading-bot/internal/ml"
	"crypto-trading-bot/internal/risk"
	"crypto-trading-bot/internal/server"
	"crypto-trading-bot/internal/store"
	"crypto-trading-bot/internal/strategy"
	"crypto-trading-bot/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := store.LoadConfig(configPath)
	must(err)

	logger.Init()
	must(trace.Init())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(ctx)
	}()

	ctx := context.Background()
	svc := buildService(ctx, cfg)

	mux := http.NewServeMux()
	svc.Routes(mux)

	httpServer := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		logger.Info(ctx, "HTTP server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

// buildService wires the bot when exchange credentials are present;
// otherwise the API runs in its uninitialized state.
func buildService(ctx context.Context, cfg *store.Config) *server.Service {
	apiKey := os.Getenv("BINANCE_API_KEY")
	apiSecret := os.Getenv("BINANCE_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		logger.Warn(ctx, "Exchange credentials missing, serving uninitialized API")
		return server.NewUninitializedService()
	}

	ex, err := exchange.NewBinanceClient(exchange.BinanceConfig{
		APIKey:    apiKey,
		APISecret: apiSecret,
		Testnet:   cfg.Exchange.Testnet,
	})
	must(err)

	rm := risk.NewManager(risk.Config{
		MaxPositionPercent: cfg.Risk.MaxPositionPercent,
		StopLossPercent:    cfg.Risk.StopLossPercent,
		TakeProfitPercent:  cfg.Risk.TakeProfitPercent,
		MaxDailyTrades:     cfg.Risk.MaxDailyTrades,
		MinTradeInterval:   time.Duration(cfg.Risk.MinTradeIntervalSec) * time.Second,
	})

	strat := strategy.NewEMAStrategy(strategy.EMAConfig{
		FastPeriod: cfg.Strategy.FastPeriod,
		SlowPeriod: cfg.Strategy.SlowPeriod,
		RSIPeriod:  cfg.Strategy.RSIPeriod,
		Threshold:  cfg.Strategy.Threshold,
	})

	var advisor interfaces.Advisor
	if cfg.ML.Enabled {
		advisor = ml.NewAdvisor(ml.Config{
			BaseURL: cfg.ML.BaseURL,
			Timeout: time.Duration(cfg.ML.TimeoutSeconds) * time.Second,
		})
	}

	botCfg := bot.Config{
		Symbol:              cfg.Bot.Symbol,
		Timeframe:           cfg.Bot.Timeframe,
		Strategy:            cfg.Bot.Strategy,
		PollInterval:        time.Duration(cfg.Bot.PollSeconds) * time.Second,
		CandleLimit:         cfg.Bot.CandleLimit,
		ConfidenceThreshold: cfg.Bot.ConfidenceThreshold,
		QuoteCurrency:       cfg.Bot.QuoteCurrency,
		CallTimeout:         time.Duration(cfg.Bot.CallTimeoutSeconds) * time.Second,
	}

	return server.NewService(bot.New(botCfg, ex, strat, advisor, rm), rm)
}
