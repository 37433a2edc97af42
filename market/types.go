package market

import "time"

// Quote is the USD quote block CoinMarketCap returns for an asset.
type Quote struct {
	Price            float64 `json:"price"`
	Volume24h        float64 `json:"volume_24h"`
	VolumeChange24h  float64 `json:"volume_change_24h"`
	PercentChange24h float64 `json:"percent_change_24h"`
	PercentChange7d  float64 `json:"percent_change_7d"`
	PercentChange30d float64 `json:"percent_change_30d"`
	MarketCap        float64 `json:"market_cap"`
}

// Asset is one cryptocurrency entry in a quotes/latest response.
type Asset struct {
	ID     int              `json:"id"`
	Name   string           `json:"name"`
	Symbol string           `json:"symbol"`
	Quote  map[string]Quote `json:"quote"`
}

// QuotesResponse is the quotes/latest response, keyed by symbol.
type QuotesResponse struct {
	Data map[string]Asset `json:"data"`
}

// USDQuote returns the USD quote for the given symbol, or the first asset's
// quote if the symbol key is absent (CMC sometimes normalizes symbols).
func (r *QuotesResponse) USDQuote(symbol string) (Quote, bool) {
	if r == nil || len(r.Data) == 0 {
		return Quote{}, false
	}
	if asset, ok := r.Data[symbol]; ok {
		if q, ok := asset.Quote["USD"]; ok {
			return q, true
		}
	}
	for _, asset := range r.Data {
		if q, ok := asset.Quote["USD"]; ok {
			return q, true
		}
	}
	return Quote{}, false
}

// HistoricalQuote is one USD quote point in a quotes/historical response.
// CMC interval data carries price/volume_24h; OHLCV exports carry
// open/high/low/close/volume. Close falls back to Price when absent.
type HistoricalQuote struct {
	Price     float64   `json:"price"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume24h float64   `json:"volume_24h"`
	Volume    float64   `json:"volume"`
	MarketCap float64   `json:"market_cap"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoricalPoint is one timestamped entry in a quotes/historical response.
type HistoricalPoint struct {
	Timestamp time.Time                  `json:"timestamp"`
	Quote     map[string]HistoricalQuote `json:"quote"`
}

// HistoricalResponse is the quotes/historical response.
type HistoricalResponse struct {
	Data struct {
		Quotes []HistoricalPoint `json:"quotes"`
	} `json:"data"`
}

// Platform identifies the chain a token lives on, when not native.
type Platform struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// MapEntry is one cryptocurrency in the map endpoint response.
type MapEntry struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Symbol   string    `json:"symbol"`
	Rank     int       `json:"rank"`
	Platform *Platform `json:"platform"`
}

// MapResponse is the cryptocurrency/map response.
type MapResponse struct {
	Data []MapEntry `json:"data"`
}

// Listing is one supported cryptocurrency exposed to the dashboard.
type Listing struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Rank     int    `json:"rank"`
	Platform string `json:"platform"`
}
