package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cryptodash/agent"
	"cryptodash/config"
	"cryptodash/database"
	"cryptodash/llm"
	"cryptodash/market"
	"cryptodash/web"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	// The database is optional; without it the dashboard still works,
	// only the history endpoint is unavailable.
	var store *database.PostgresStore
	if cfg.DatabaseURL != "" {
		store, err = database.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure database schema", zap.Error(err))
		}
		defer store.Close()
	} else {
		logger.Info("No DATABASE_URL configured, analysis history disabled")
	}

	marketClient := market.NewClient(market.ClientConfig{
		APIKey:            cfg.CoinMarketCapAPIKey,
		BaseURL:           cfg.CoinMarketCapBaseURL,
		RequestTimeout:    cfg.RequestTimeout,
		RequestsPerMinute: cfg.MarketRequestsPerMinute,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelaySeconds,
	}, logger)

	markets, err := market.NewProvider(marketClient, cfg.MarketCacheSize, cfg.ListingLimit, logger)
	if err != nil {
		logger.Fatal("Failed to initialize market data provider", zap.Error(err))
	}

	registry := llm.NewRegistry(cfg, logger)

	agents, err := agent.NewService(cfg, markets, registry, logger)
	if err != nil {
		logger.Fatal("Failed to initialize analysis service", zap.Error(err))
	}

	webServer := web.NewServer(agents, markets, registry, store, logger, cfg)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting crypto dashboard web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
