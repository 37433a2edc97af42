package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	WebPort                 int           `mapstructure:"WEB_PORT"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	AllowedOrigins          []string      `mapstructure:"ALLOWED_ORIGINS"`
	CoinMarketCapAPIKey     string        `mapstructure:"COINMARKETCAP_API_KEY"`
	CoinMarketCapBaseURL    string        `mapstructure:"COINMARKETCAP_BASE_URL"`
	OpenAIAPIKey            string        `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL           string        `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel             string        `mapstructure:"OPENAI_MODEL"`
	AnthropicAPIKey         string        `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel          string        `mapstructure:"ANTHROPIC_MODEL"`
	MaxRetries              int           `mapstructure:"MAX_RETRIES"`
	RetryDelaySeconds       time.Duration `mapstructure:"RETRY_DELAY_SECONDS"`
	RequestTimeout          time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MarketRequestsPerMinute int           `mapstructure:"MARKET_REQUESTS_PER_MIN"`
	MarketCacheSize         int           `mapstructure:"MARKET_CACHE_SIZE"`
	AnalysisCacheSize       int           `mapstructure:"ANALYSIS_CACHE_SIZE"`
	HistoryDays             int           `mapstructure:"HISTORY_DAYS"`
	ListingLimit            int           `mapstructure:"LISTING_LIMIT"`
	RateLimitPerMinute      int           `mapstructure:"RATE_LIMIT_PER_MIN"`
	RateLimitBurstSize      int           `mapstructure:"RATE_LIMIT_BURST_SIZE"`
	ShowReasoning           bool          `mapstructure:"SHOW_REASONING"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("WEB_PORT", 8000)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	viper.SetDefault("COINMARKETCAP_API_KEY", "")
	viper.SetDefault("COINMARKETCAP_BASE_URL", "https://pro-api.coinmarketcap.com/v1")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o")
	viper.SetDefault("ANTHROPIC_API_KEY", "")
	viper.SetDefault("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929")
	viper.SetDefault("MAX_RETRIES", 3)
	viper.SetDefault("RETRY_DELAY_SECONDS", 2)
	viper.SetDefault("REQUEST_TIMEOUT", 60)
	viper.SetDefault("MARKET_REQUESTS_PER_MIN", 30)
	viper.SetDefault("MARKET_CACHE_SIZE", 100)
	viper.SetDefault("ANALYSIS_CACHE_SIZE", 256)
	viper.SetDefault("HISTORY_DAYS", 30)
	viper.SetDefault("LISTING_LIMIT", 5000)
	viper.SetDefault("RATE_LIMIT_PER_MIN", 20)
	viper.SetDefault("RATE_LIMIT_BURST_SIZE", 5)
	viper.SetDefault("SHOW_REASONING", true)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	// Convert seconds to proper time.Duration
	config.RetryDelaySeconds = config.RetryDelaySeconds * time.Second
	config.RequestTimeout = config.RequestTimeout * time.Second

	return &config
}
