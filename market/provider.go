package market

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "cryptodash/errors"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// API is the subset of Client the provider consumes.
type API interface {
	Quotes(ctx context.Context, symbol string) (*QuotesResponse, error)
	Historical(ctx context.Context, symbol string, start, end time.Time) (*HistoricalResponse, error)
	Map(ctx context.Context, limit int) ([]MapEntry, error)
}

// Provider serves market data with an hour-bucketed LRU cache in front of
// the CoinMarketCap client.
type Provider struct {
	client       API
	quoteCache   *lru.Cache
	listingCache *lru.Cache
	listingLimit int
	logger       *zap.Logger
	nowFunc      func() time.Time
}

func NewProvider(client API, cacheSize, listingLimit int, logger *zap.Logger) (*Provider, error) {
	if cacheSize <= 0 {
		cacheSize = 100
	}
	if listingLimit <= 0 {
		listingLimit = 5000
	}
	quoteCache, err := lru.New(cacheSize)
	if err != nil {
		return nil, apperrors.WrapError(err, "create quote cache")
	}
	listingCache, err := lru.New(2)
	if err != nil {
		return nil, apperrors.WrapError(err, "create listing cache")
	}
	return &Provider{
		client:       client,
		quoteCache:   quoteCache,
		listingCache: listingCache,
		listingLimit: listingLimit,
		logger:       logger,
		nowFunc:      time.Now,
	}, nil
}

// MarketData returns the latest quote for a symbol. Entries are cached per
// symbol and hour bucket, so a quote is refetched at most once an hour.
func (p *Provider) MarketData(ctx context.Context, symbol string) (*QuotesResponse, error) {
	key := fmt.Sprintf("%s:%s", symbol, p.nowFunc().UTC().Format("2006-01-02-15"))
	if cached, ok := p.quoteCache.Get(key); ok {
		return cached.(*QuotesResponse), nil
	}

	resp, err := p.client.Quotes(ctx, symbol)
	if err != nil {
		return nil, err
	}
	p.quoteCache.Add(key, resp)
	return resp, nil
}

// HistoricalPrices returns historical quotes for a symbol over [start, end].
func (p *Provider) HistoricalPrices(ctx context.Context, symbol string, start, end time.Time) (*HistoricalResponse, error) {
	key := fmt.Sprintf("%s:hist:%d:%d", symbol, start.Unix(), end.Unix())
	if cached, ok := p.quoteCache.Get(key); ok {
		return cached.(*HistoricalResponse), nil
	}

	resp, err := p.client.Historical(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	p.quoteCache.Add(key, resp)
	return resp, nil
}

// SupportedCryptocurrencies returns the rank-sorted symbol list. Duplicate
// symbols get a platform suffix so every listing stays addressable.
func (p *Provider) SupportedCryptocurrencies(ctx context.Context) ([]Listing, error) {
	const cacheKey = "listings"
	if cached, ok := p.listingCache.Get(cacheKey); ok {
		return cached.([]Listing), nil
	}

	entries, err := p.client.Map(ctx, p.listingLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(entries))
	listings := make([]Listing, 0, len(entries))
	for _, entry := range entries {
		symbol := entry.Symbol
		if seen[symbol] && entry.Platform != nil {
			symbol = fmt.Sprintf("%s-%s", symbol, entry.Platform.Symbol)
		}
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		platformName := "Native"
		if entry.Platform != nil {
			platformName = entry.Platform.Name
		}
		rank := entry.Rank
		if rank == 0 {
			rank = 9999 // unranked listings sort last
		}
		listings = append(listings, Listing{
			Symbol:   symbol,
			Name:     entry.Name,
			Rank:     rank,
			Platform: platformName,
		})
	}

	sort.Slice(listings, func(i, j int) bool { return listings[i].Rank < listings[j].Rank })
	if len(listings) > p.listingLimit {
		listings = listings[:p.listingLimit]
	}

	p.listingCache.Add(cacheKey, listings)
	p.logger.Info("Refreshed supported cryptocurrency listings", zap.Int("count", len(listings)))
	return listings, nil
}
