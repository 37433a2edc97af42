package agent

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"cryptodash/market"
	"cryptodash/web/types"
)

// Cache holds completed analysis runs. Keys include the quote's price,
// 24h change and the current hour, so entries expire naturally whenever
// the market moves or the hour rolls over.
type Cache struct {
	entries *lru.Cache
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 128
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns a copy of the cached panels. Callers rewrite panel fields
// while formatting responses; handing out the stored slice would let
// those rewrites poison the cache.
func (c *Cache) Get(symbol, provider string, quote market.Quote, now time.Time) ([]types.AgentAnalysis, bool) {
	value, ok := c.entries.Get(cacheKey(symbol, provider, quote, now))
	if !ok {
		return nil, false
	}
	analyses, ok := value.([]types.AgentAnalysis)
	if !ok {
		return nil, false
	}
	return cloneAnalyses(analyses), true
}

func (c *Cache) Add(symbol, provider string, quote market.Quote, now time.Time, analyses []types.AgentAnalysis) {
	c.entries.Add(cacheKey(symbol, provider, quote, now), cloneAnalyses(analyses))
}

func cloneAnalyses(analyses []types.AgentAnalysis) []types.AgentAnalysis {
	if analyses == nil {
		return nil
	}
	out := make([]types.AgentAnalysis, len(analyses))
	copy(out, analyses)
	return out
}

func cacheKey(symbol, provider string, quote market.Quote, now time.Time) string {
	return fmt.Sprintf("%s:%s:%.2f:%.2f:%s",
		symbol, provider, quote.Price, quote.PercentChange24h,
		now.UTC().Format("2006-01-02-15"))
}
