package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"cryptodash/indicators"
	"cryptodash/market"

	"go.uber.org/zap"
)

func testService(t *testing.T) *Service {
	t.Helper()
	cache, err := NewCache(16)
	if err != nil {
		t.Fatal(err)
	}
	return &Service{
		cache:       cache,
		historyDays: 30,
		logger:      zap.NewNop(),
		nowFunc:     time.Now,
	}
}

func upQuote() market.Quote {
	return market.Quote{
		Price:            45000,
		Volume24h:        830_500_000,
		VolumeChange24h:  12.4,
		PercentChange24h: 3.25,
		PercentChange7d:  8.1,
		PercentChange30d: 15.6,
		MarketCap:        880_000_000_000,
	}
}

func TestMarketDataFallbackIsStatsBlock(t *testing.T) {
	s := testService(t)
	got, err := s.analyzeMarketData(context.Background(), nil, upQuote())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"=== MARKET STATISTICS ===",
		"Current Price:    $45000.00",
		"24h Change:       3.25%",
		"Volume:          $830.5M",
		"Market Cap:      $880.00B",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("market data fallback missing %q:\n%s", want, got)
		}
	}
}

func TestSentimentFallbackDirection(t *testing.T) {
	s := testService(t)

	got, err := s.analyzeSentiment(context.Background(), nil, upQuote())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Market Sentiment: BULLISH") {
		t.Errorf("positive 24h change should read bullish:\n%s", got)
	}

	down := upQuote()
	down.PercentChange24h = -2.0
	got, err = s.analyzeSentiment(context.Background(), nil, down)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Market Sentiment: BEARISH") {
		t.Errorf("negative 24h change should read bearish:\n%s", got)
	}
}

func TestRiskFallbackLevels(t *testing.T) {
	s := testService(t)

	tests := []struct {
		change float64
		want   string
	}{
		{12.0, "Risk Level: HIGH"},
		{-12.0, "Risk Level: HIGH"},
		{7.0, "Risk Level: MEDIUM"},
		{2.0, "Risk Level: LOW"},
	}
	for _, tt := range tests {
		q := upQuote()
		q.PercentChange24h = tt.change
		got, err := s.analyzeRisk(context.Background(), nil, q)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("change %.1f%%: output missing %q:\n%s", tt.change, tt.want, got)
		}
	}
}

func TestPortfolioFallbackActions(t *testing.T) {
	s := testService(t)

	tests := []struct {
		change        float64
		wantAction    string
		wantDirection string
	}{
		{7.5, "Recommended Action: TAKE PROFIT", "Market Direction: Upward"},
		{-7.5, "Recommended Action: BUY DIP", "Market Direction: Downward"},
		{1.0, "Recommended Action: HOLD", "Market Direction: Upward"},
	}
	for _, tt := range tests {
		q := upQuote()
		q.PercentChange24h = tt.change
		got, err := s.analyzePortfolio(context.Background(), nil, q)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, tt.wantAction) || !strings.Contains(got, tt.wantDirection) {
			t.Errorf("change %.1f%%: output missing %q / %q:\n%s", tt.change, tt.wantAction, tt.wantDirection, got)
		}
	}
}

func TestTechnicalFallbackSignals(t *testing.T) {
	s := testService(t)

	prices := make([]indicators.Price, 40)
	base := time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC)
	for i := range prices {
		// Steady uptrend: RSI pegged high, MACD bullish.
		prices[i] = indicators.Price{
			Timestamp: base.AddDate(0, 0, i),
			Close:     100 + float64(i)*3,
			Volume:    1000,
		}
	}

	got, err := s.analyzeTechnical(context.Background(), nil, prices)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Overbought") {
		t.Errorf("steady uptrend should read overbought:\n%s", got)
	}
	if !strings.Contains(got, "MACD Signal: Bullish") {
		t.Errorf("steady uptrend should read MACD bullish:\n%s", got)
	}
}

func TestTechnicalNoPrices(t *testing.T) {
	s := testService(t)
	if _, err := s.analyzeTechnical(context.Background(), nil, nil); err == nil {
		t.Error("analyzeTechnical without prices should error")
	}
}

func TestFilterReasoning(t *testing.T) {
	input := strings.Join([]string{
		"The trend is up.",
		"Because volume doubled, momentum is confirmed.",
		"Given that RSI is high, caution is warranted.",
		"Considering the macro picture, risk remains.",
		"This is based on the last 30 days of data.",
		"Expect consolidation next week.",
	}, "\n")

	got := filterReasoning(input)
	if strings.Contains(got, "Because") || strings.Contains(got, "Given that") ||
		strings.Contains(got, "Considering") || strings.Contains(got, "This is based on") {
		t.Errorf("reasoning lines survived:\n%s", got)
	}
	if !strings.Contains(got, "The trend is up.") || !strings.Contains(got, "Expect consolidation next week.") {
		t.Errorf("non-reasoning lines dropped:\n%s", got)
	}
}
