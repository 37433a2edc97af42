// Package indicators implements the technical analysis kernels the technical
// agent reads: RSI, MACD, Bollinger bands and on-balance volume.
package indicators

import (
	"math"
	"sort"
	"time"

	apperrors "cryptodash/errors"
	"cryptodash/market"
)

// Price is one chronological OHLCV point.
type Price struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	MarketCap float64
}

// FromHistorical converts a CoinMarketCap historical response into a
// chronologically sorted price series. Interval data carries only a price
// and 24h volume; open/high/low fall back to close in that case.
func FromHistorical(resp *market.HistoricalResponse) ([]Price, error) {
	if resp == nil || len(resp.Data.Quotes) == 0 {
		return nil, apperrors.WrapError(apperrors.ErrMarketData, "empty historical response")
	}

	prices := make([]Price, 0, len(resp.Data.Quotes))
	for _, point := range resp.Data.Quotes {
		usd, ok := point.Quote["USD"]
		if !ok {
			continue
		}

		close := usd.Close
		if close == 0 {
			close = usd.Price
		}
		volume := usd.Volume
		if volume == 0 {
			volume = usd.Volume24h
		}
		ts := point.Timestamp
		if ts.IsZero() {
			ts = usd.Timestamp
		}

		p := Price{
			Timestamp: ts,
			Open:      usd.Open,
			High:      usd.High,
			Low:       usd.Low,
			Close:     close,
			Volume:    volume,
			MarketCap: usd.MarketCap,
		}
		if p.Open == 0 {
			p.Open = close
		}
		if p.High == 0 {
			p.High = close
		}
		if p.Low == 0 {
			p.Low = close
		}
		prices = append(prices, p)
	}

	if len(prices) == 0 {
		return nil, apperrors.WrapError(apperrors.ErrMarketData, "no USD quotes in historical response")
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i].Timestamp.Before(prices[j].Timestamp) })
	return prices, nil
}

// Closes extracts the close series.
func Closes(prices []Price) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = p.Close
	}
	return out
}

// Volumes extracts the volume series.
func Volumes(prices []Price) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = p.Volume
	}
	return out
}

// RSI computes the relative strength index over the given period using
// rolling average gains/losses. Points with no movement history yield 50.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if period <= 0 {
		period = 14
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	out[0] = 50.0 // no delta yet
	for i := 1; i < n; i++ {
		start := i - period + 1
		if start < 1 {
			start = 1
		}
		var avgGain, avgLoss float64
		count := float64(i - start + 1)
		for j := start; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= count
		avgLoss /= count

		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50.0
		case avgLoss == 0:
			out[i] = 100.0
		default:
			rs := avgGain / avgLoss
			out[i] = 100.0 - (100.0 / (1.0 + rs))
		}
	}
	return out
}

// EMA computes an exponential moving average with smoothing 2/(span+1),
// seeded at the first value.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD computes the MACD line (fast EMA - slow EMA) and its signal line.
func MACD(closes []float64, fastPeriod, slowPeriod, signalPeriod int) (macdLine, signalLine []float64) {
	if fastPeriod <= 0 {
		fastPeriod = 12
	}
	if slowPeriod <= 0 {
		slowPeriod = 26
	}
	if signalPeriod <= 0 {
		signalPeriod = 9
	}

	fast := EMA(closes, fastPeriod)
	slow := EMA(closes, slowPeriod)
	macdLine = make([]float64, len(closes))
	for i := range closes {
		macdLine[i] = fast[i] - slow[i]
	}
	signalLine = EMA(macdLine, signalPeriod)
	return macdLine, signalLine
}

// BollingerBands computes ±2 sample standard deviations around the simple
// moving average. Points before the window fills are backfilled from the
// first complete window.
func BollingerBands(closes []float64, window int) (upper, lower []float64) {
	n := len(closes)
	upper = make([]float64, n)
	lower = make([]float64, n)
	if n == 0 {
		return upper, lower
	}
	if window <= 0 {
		window = 20
	}

	firstValid := -1
	for i := window - 1; i < n; i++ {
		start := i - window + 1
		var sum float64
		for j := start; j <= i; j++ {
			sum += closes[j]
		}
		mean := sum / float64(window)

		var variance float64
		for j := start; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(window-1))

		upper[i] = mean + 2*std
		lower[i] = mean - 2*std
		if firstValid == -1 {
			firstValid = i
		}
	}

	if firstValid == -1 {
		// Series shorter than the window: flat bands at the last close.
		last := closes[n-1]
		for i := range upper {
			upper[i] = last
			lower[i] = last
		}
		return upper, lower
	}

	for i := 0; i < firstValid; i++ {
		upper[i] = upper[firstValid]
		lower[i] = lower[firstValid]
	}
	return upper, lower
}

// OBV computes on-balance volume.
func OBV(closes, volumes []float64) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}
