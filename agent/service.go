// Package agent implements the five market analysis agents and their
// concurrent orchestration.
package agent

import (
	"context"
	"fmt"
	"time"

	"cryptodash/config"
	apperrors "cryptodash/errors"
	"cryptodash/indicators"
	"cryptodash/llm"
	"cryptodash/market"
	"cryptodash/web/types"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Panel titles, in dashboard order.
const (
	TitleMarketData = "Market Data Agent"
	TitleSentiment  = "Sentiment Agent"
	TitleTechnical  = "Technical Agent"
	TitleRisk       = "Risk Agent"
	TitlePortfolio  = "Portfolio Agent"
)

// MarketSource is the market data surface the agents consume.
type MarketSource interface {
	MarketData(ctx context.Context, symbol string) (*market.QuotesResponse, error)
	HistoricalPrices(ctx context.Context, symbol string, start, end time.Time) (*market.HistoricalResponse, error)
}

// Service fans a symbol out to all five agents.
type Service struct {
	markets       MarketSource
	registry      *llm.Registry
	cache         *Cache
	historyDays   int
	showReasoning bool
	logger        *zap.Logger
	nowFunc       func() time.Time
}

func NewService(cfg *config.Config, markets MarketSource, registry *llm.Registry, logger *zap.Logger) (*Service, error) {
	cache, err := NewCache(cfg.AnalysisCacheSize)
	if err != nil {
		return nil, err
	}
	historyDays := cfg.HistoryDays
	if historyDays <= 0 {
		historyDays = 30
	}
	return &Service{
		markets:       markets,
		registry:      registry,
		cache:         cache,
		historyDays:   historyDays,
		showReasoning: cfg.ShowReasoning,
		logger:        logger,
		nowFunc:       time.Now,
	}, nil
}

// AnalyzeAll runs every agent for a symbol concurrently. A failing agent
// yields an error panel rather than failing the whole response; the call
// errors only when market data itself cannot be fetched.
func (s *Service) AnalyzeAll(ctx context.Context, symbol, providerName string) ([]types.AgentAnalysis, error) {
	if !s.registry.Known(providerName) {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput,
			"invalid provider: %s. Supported providers are: openai, anthropic", providerName)
	}

	end := s.nowFunc()
	start := end.AddDate(0, 0, -s.historyDays)

	// Fetch current and historical data concurrently.
	var quotes *market.QuotesResponse
	var history *market.HistoricalResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quotes, err = s.markets.MarketData(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.markets.HistoricalPrices(gctx, symbol, start, end)
		if err != nil {
			// Historical data is only needed by the technical agent;
			// the other four still run without it.
			s.logger.Warn("Historical price fetch failed", zap.String("symbol", symbol), zap.Error(err))
			history = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.WrapErrorf(err, "failed to fetch market data for %s", symbol)
	}

	quote, ok := quotes.USDQuote(symbol)
	if !ok {
		return nil, apperrors.WrapErrorf(apperrors.ErrMarketData, "no USD quote for %s", symbol)
	}

	if cached, ok := s.cache.Get(symbol, providerName, quote, s.nowFunc()); ok {
		s.logger.Debug("Analysis cache hit", zap.String("symbol", symbol))
		return cached, nil
	}

	provider := s.providerFor(providerName)

	var prices []indicators.Price
	if history != nil {
		p, err := indicators.FromHistorical(history)
		if err != nil {
			s.logger.Warn("Historical conversion failed", zap.String("symbol", symbol), zap.Error(err))
		} else {
			prices = p
		}
	}

	type task struct {
		title string
		run   func(context.Context) (string, error)
	}
	tasks := []task{
		{TitleMarketData, func(ctx context.Context) (string, error) { return s.analyzeMarketData(ctx, provider, quote) }},
		{TitleSentiment, func(ctx context.Context) (string, error) { return s.analyzeSentiment(ctx, provider, quote) }},
		{TitleTechnical, func(ctx context.Context) (string, error) { return s.analyzeTechnical(ctx, provider, prices) }},
		{TitleRisk, func(ctx context.Context) (string, error) { return s.analyzeRisk(ctx, provider, quote) }},
		{TitlePortfolio, func(ctx context.Context) (string, error) { return s.analyzePortfolio(ctx, provider, quote) }},
	}

	results := make([]types.AgentAnalysis, len(tasks))
	var wg errgroup.Group
	for i, tk := range tasks {
		wg.Go(func() error {
			content, err := tk.run(ctx)
			if err != nil {
				s.logger.Error("Agent analysis failed",
					zap.String("agent", tk.title),
					zap.String("symbol", symbol),
					zap.Error(err))
				content = fmt.Sprintf("Error analyzing %s: %v", symbol, err)
			}
			results[i] = types.AgentAnalysis{Title: tk.title, Content: content}
			return nil
		})
	}
	wg.Wait()

	s.cache.Add(symbol, providerName, quote, s.nowFunc(), results)
	return results, nil
}

// providerFor resolves the provider, or nil when no key is configured;
// the agents then fall back to deterministic heuristics.
func (s *Service) providerFor(name string) llm.Provider {
	provider, err := s.registry.Provider(name)
	if err != nil {
		s.logger.Warn("Provider unavailable, using heuristic analysis",
			zap.String("provider", name), zap.Error(err))
		return nil
	}
	return provider
}
