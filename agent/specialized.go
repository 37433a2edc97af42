package agent

import (
	"context"
	"fmt"
	"strings"

	apperrors "cryptodash/errors"
	"cryptodash/indicators"
	"cryptodash/llm"
	"cryptodash/market"
	"cryptodash/prompts"
)

// reasoningPrefixes mark lines dropped when reasoning is suppressed.
var reasoningPrefixes = []string{"Because", "This is based on", "Given that", "Considering"}

func (s *Service) analyzeMarketData(ctx context.Context, provider llm.Provider, quote market.Quote) (string, error) {
	marketStats := fmt.Sprintf(
		"=== MARKET STATISTICS ===\n"+
			"Current Price:    $%.2f\n"+
			"24h Change:       %.2f%%\n"+
			"Volume:          $%.1fM\n"+
			"Market Cap:      $%.2fB",
		quote.Price,
		quote.PercentChange24h,
		quote.Volume24h/1e6,
		quote.MarketCap/1e9,
	)

	if provider == nil {
		return marketStats, nil
	}

	reasoningRequest := ""
	if s.showReasoning {
		reasoningRequest = prompts.Reasoning()
	}
	prompt := fmt.Sprintf(prompts.Market(), marketStats, reasoningRequest)

	response, err := provider.CreateMessage(ctx, prompt)
	if err != nil {
		return "", err
	}
	if !s.showReasoning {
		response = filterReasoning(response)
	}
	return response, nil
}

func (s *Service) analyzeSentiment(ctx context.Context, provider llm.Provider, quote market.Quote) (string, error) {
	marketStats := fmt.Sprintf(
		"=== MARKET TRENDS ===\n"+
			"24h Change: %.2f%%\n"+
			"7d Change: %.2f%%\n"+
			"30d Change: %.2f%%\n"+
			"Volume Change 24h: %.2f%%",
		quote.PercentChange24h,
		quote.PercentChange7d,
		quote.PercentChange30d,
		quote.VolumeChange24h,
	)

	if provider == nil {
		sentiment := "BEARISH"
		if quote.PercentChange24h > 0 {
			sentiment = "BULLISH"
		}
		return fmt.Sprintf(
			"Market Sentiment: %s\n24h Trend: %.2f%%\n7d Trend: %.2f%%",
			sentiment, quote.PercentChange24h, quote.PercentChange7d,
		), nil
	}

	prompt := fmt.Sprintf(prompts.Sentiment(), marketStats)
	return provider.CreateMessage(ctx, prompt)
}

func (s *Service) analyzeTechnical(ctx context.Context, provider llm.Provider, prices []indicators.Price) (string, error) {
	if len(prices) == 0 {
		return "", apperrors.WrapError(apperrors.ErrMarketData, "no price data available for technical analysis")
	}

	closes := indicators.Closes(prices)
	rsi := indicators.RSI(closes, 14)
	macdLine, signalLine := indicators.MACD(closes, 12, 26, 9)
	upperBand, lowerBand := indicators.BollingerBands(closes, 20)

	last := len(closes) - 1
	latestRSI := rsi[last]
	latestMACD := macdLine[last]
	latestSignal := signalLine[last]
	latestClose := closes[last]
	latestUpper := upperBand[last]
	latestLower := lowerBand[last]

	technicalData := fmt.Sprintf(
		"=== TECHNICAL INDICATORS ===\n"+
			"RSI (14): %.2f\n"+
			"MACD: %.2f\n"+
			"Signal Line: %.2f\n"+
			"Current Price: %.2f\n"+
			"Upper BB: %.2f\n"+
			"Lower BB: %.2f",
		latestRSI, latestMACD, latestSignal, latestClose, latestUpper, latestLower,
	)

	if provider == nil {
		rsiSignal := "Neutral"
		if latestRSI > 70 {
			rsiSignal = "Overbought"
		} else if latestRSI < 30 {
			rsiSignal = "Oversold"
		}
		macdSignal := "Bearish"
		if latestMACD > latestSignal {
			macdSignal = "Bullish"
		}
		bbSignal := "Neutral"
		if latestClose > latestUpper {
			bbSignal = "Overbought"
		} else if latestClose < latestLower {
			bbSignal = "Oversold"
		}
		return fmt.Sprintf(
			"Technical Analysis:\n"+
				"RSI (14): %.2f - %s\n"+
				"MACD Signal: %s (MACD: %.2f, Signal: %.2f)\n"+
				"Bollinger Bands: %s (Price: %.2f, Upper: %.2f, Lower: %.2f)",
			latestRSI, rsiSignal,
			macdSignal, latestMACD, latestSignal,
			bbSignal, latestClose, latestUpper, latestLower,
		), nil
	}

	prompt := fmt.Sprintf(prompts.Technical(), technicalData)
	return provider.CreateMessage(ctx, prompt)
}

func (s *Service) analyzeRisk(ctx context.Context, provider llm.Provider, quote market.Quote) (string, error) {
	volatility := quote.PercentChange24h
	if volatility < 0 {
		volatility = -volatility
	}

	riskData := fmt.Sprintf(
		"=== RISK METRICS ===\n"+
			"24h Volatility: %.2f%%\n"+
			"Volume Change: %.2f%%\n"+
			"Market Cap: $%.2fB\n"+
			"24h Volume: $%.2fM",
		volatility,
		quote.VolumeChange24h,
		quote.MarketCap/1e9,
		quote.Volume24h/1e6,
	)

	if provider == nil {
		riskLevel := "LOW"
		if volatility > 10 {
			riskLevel = "HIGH"
		} else if volatility > 5 {
			riskLevel = "MEDIUM"
		}
		return fmt.Sprintf(
			"Risk Level: %s\nVolatility: %.2f%%\nVolume Change: %.2f%%",
			riskLevel, volatility, quote.VolumeChange24h,
		), nil
	}

	prompt := fmt.Sprintf(prompts.Risk(), riskData)
	return provider.CreateMessage(ctx, prompt)
}

func (s *Service) analyzePortfolio(ctx context.Context, provider llm.Provider, quote market.Quote) (string, error) {
	portfolioData := fmt.Sprintf(
		"=== PORTFOLIO METRICS ===\n"+
			"Current Price: $%.2f\n"+
			"24h Change: %.2f%%\n"+
			"7d Change: %.2f%%\n"+
			"Market Cap: $%.2fB\n"+
			"Volume: $%.2fM",
		quote.Price,
		quote.PercentChange24h,
		quote.PercentChange7d,
		quote.MarketCap/1e9,
		quote.Volume24h/1e6,
	)

	if provider == nil {
		trend := quote.PercentChange24h
		action := "HOLD"
		if trend > 5 {
			action = "TAKE PROFIT"
		} else if trend < -5 {
			action = "BUY DIP"
		}
		direction := "Downward"
		if trend > 0 {
			direction = "Upward"
		}
		return fmt.Sprintf(
			"Recommended Action: %s\nPrice Trend: %.2f%%\nMarket Direction: %s",
			action, trend, direction,
		), nil
	}

	prompt := fmt.Sprintf(prompts.Portfolio(), portfolioData)
	return provider.CreateMessage(ctx, prompt)
}

// filterReasoning drops lines that open with a reasoning connective.
func filterReasoning(response string) string {
	lines := strings.Split(response, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		reasoning := false
		for _, prefix := range reasoningPrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				reasoning = true
				break
			}
		}
		if !reasoning {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
