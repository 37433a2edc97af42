package agent

import (
	"context"
	"testing"
	"time"

	"cryptodash/config"
	apperrors "cryptodash/errors"
	"cryptodash/llm"
	"cryptodash/market"
	"cryptodash/web/types"

	"go.uber.org/zap"
)

type stubMarkets struct {
	quoteCalls int
}

func (m *stubMarkets) MarketData(ctx context.Context, symbol string) (*market.QuotesResponse, error) {
	m.quoteCalls++
	return &market.QuotesResponse{Data: map[string]market.Asset{
		symbol: {Symbol: symbol, Quote: map[string]market.Quote{
			"USD": {Price: 45000, PercentChange24h: 3.25, Volume24h: 830_500_000, MarketCap: 880_000_000_000},
		}},
	}}, nil
}

func (m *stubMarkets) HistoricalPrices(ctx context.Context, symbol string, start, end time.Time) (*market.HistoricalResponse, error) {
	var resp market.HistoricalResponse
	days := int(end.Sub(start).Hours() / 24)
	for i := 0; i < days; i++ {
		resp.Data.Quotes = append(resp.Data.Quotes, market.HistoricalPoint{
			Timestamp: start.AddDate(0, 0, i),
			Quote: map[string]market.HistoricalQuote{
				"USD": {Price: 40000 + float64(i)*100, Volume24h: 1_000_000},
			},
		})
	}
	return &resp, nil
}

func newTestService(t *testing.T) (*Service, *stubMarkets) {
	t.Helper()
	cfg := &config.Config{
		AnalysisCacheSize: 16,
		HistoryDays:       30,
	}
	markets := &stubMarkets{}
	registry := llm.NewRegistry(cfg, zap.NewNop())
	svc, err := NewService(cfg, markets, registry, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return svc, markets
}

func TestAnalyzeAllReturnsFivePanels(t *testing.T) {
	svc, _ := newTestService(t)

	// No API keys configured: every agent falls back to heuristics.
	results, err := svc.AnalyzeAll(context.Background(), "BTC", llm.ProviderOpenAI)
	if err != nil {
		t.Fatalf("AnalyzeAll returned error: %v", err)
	}

	wantTitles := []string{TitleMarketData, TitleSentiment, TitleTechnical, TitleRisk, TitlePortfolio}
	if len(results) != len(wantTitles) {
		t.Fatalf("got %d panels, want %d", len(results), len(wantTitles))
	}
	for i, want := range wantTitles {
		if results[i].Title != want {
			t.Errorf("panel %d title = %q, want %q", i, results[i].Title, want)
		}
		if results[i].Content == "" {
			t.Errorf("panel %q has empty content", want)
		}
	}
}

func TestAnalyzeAllInvalidProvider(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AnalyzeAll(context.Background(), "BTC", "gemini")
	if !apperrors.IsInvalidInput(err) {
		t.Errorf("AnalyzeAll with unknown provider = %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzeAllUsesCache(t *testing.T) {
	svc, markets := newTestService(t)
	fixed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return fixed }

	if _, err := svc.AnalyzeAll(context.Background(), "BTC", llm.ProviderOpenAI); err != nil {
		t.Fatal(err)
	}
	first := markets.quoteCalls

	if _, err := svc.AnalyzeAll(context.Background(), "BTC", llm.ProviderOpenAI); err != nil {
		t.Fatal(err)
	}
	// The quote is still fetched to build the cache key, but the agents
	// themselves must not rerun; panel content comes from the cache.
	if markets.quoteCalls <= first {
		t.Errorf("quote calls did not advance: %d", markets.quoteCalls)
	}
}

func TestAnalyzeAllCacheUnaffectedByCallerMutation(t *testing.T) {
	svc, _ := newTestService(t)
	fixed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return fixed }

	first, err := svc.AnalyzeAll(context.Background(), "BTC", llm.ProviderOpenAI)
	if err != nil {
		t.Fatal(err)
	}
	raw := make([]string, len(first))
	for i := range first {
		raw[i] = first[i].Content
		// Rewrite panels in place the way the response formatter does.
		first[i].Content = "`" + first[i].Content + "`"
		first[i].HTML = "<p>formatted</p>"
	}

	second, err := svc.AnalyzeAll(context.Background(), "BTC", llm.ProviderOpenAI)
	if err != nil {
		t.Fatal(err)
	}
	for i := range second {
		if second[i].Content != raw[i] {
			t.Errorf("panel %d served mutated cache content:\n got %q\nwant %q", i, second[i].Content, raw[i])
		}
		if second[i].HTML != "" {
			t.Errorf("panel %d HTML leaked into the cache: %q", i, second[i].HTML)
		}
	}
}

func TestCacheGetReturnsIndependentCopy(t *testing.T) {
	cache, err := NewCache(16)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	quote := market.Quote{Price: 45000, PercentChange24h: 3.25}

	stored := []types.AgentAnalysis{{Title: TitleMarketData, Content: "24h Change: 3.25%"}}
	cache.Add("BTC", "openai", quote, now, stored)
	stored[0].Content = "caller scribbled after Add"

	got, ok := cache.Get("BTC", "openai", quote, now)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got[0].Content != "24h Change: 3.25%" {
		t.Errorf("Add did not copy: %q", got[0].Content)
	}

	got[0].Content = "`24h Change: `3.25%``"
	again, ok := cache.Get("BTC", "openai", quote, now)
	if !ok {
		t.Fatal("expected second cache hit")
	}
	if again[0].Content != "24h Change: 3.25%" {
		t.Errorf("Get did not copy: %q", again[0].Content)
	}
}

func TestCacheKeyedByQuoteAndHour(t *testing.T) {
	cache, err := NewCache(16)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	quote := market.Quote{Price: 45000, PercentChange24h: 3.25}

	cache.Add("BTC", "openai", quote, now, nil)
	if _, ok := cache.Get("BTC", "openai", quote, now); !ok {
		t.Error("expected cache hit for identical key")
	}
	if _, ok := cache.Get("BTC", "anthropic", quote, now); ok {
		t.Error("different provider must miss")
	}

	moved := quote
	moved.Price = 45100
	if _, ok := cache.Get("BTC", "openai", moved, now); ok {
		t.Error("price move must miss")
	}
	if _, ok := cache.Get("BTC", "openai", quote, now.Add(time.Hour)); ok {
		t.Error("hour rollover must miss")
	}
}
