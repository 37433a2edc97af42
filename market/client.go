package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "cryptodash/errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client talks to the CoinMarketCap v1 API. All calls are rate limited and
// retried with backoff on 429/5xx responses.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// ClientConfig carries the explicit settings for a Client. API keys are
// passed in here, never read from the environment.
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	RequestTimeout    time.Duration
	RequestsPerMinute int
	MaxRetries        int
	RetryDelay        time.Duration
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://pro-api.coinmarketcap.com/v1"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		limiter:    rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Quotes fetches the latest USD quote for a symbol.
func (c *Client) Quotes(ctx context.Context, symbol string) (*QuotesResponse, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("convert", "USD")

	var resp QuotesResponse
	if err := c.get(ctx, "/cryptocurrency/quotes/latest", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, apperrors.WrapErrorf(apperrors.ErrMarketData, "no quote data for %s", symbol)
	}
	return &resp, nil
}

// Historical fetches historical USD quotes for a symbol between start and end.
func (c *Client) Historical(ctx context.Context, symbol string, start, end time.Time) (*HistoricalResponse, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("convert", "USD")
	params.Set("time_start", strconv.FormatInt(start.Unix(), 10))
	params.Set("time_end", strconv.FormatInt(end.Unix(), 10))

	var resp HistoricalResponse
	if err := c.get(ctx, "/cryptocurrency/quotes/historical", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data.Quotes) == 0 {
		return nil, apperrors.WrapErrorf(apperrors.ErrMarketData, "no historical data for %s", symbol)
	}
	return &resp, nil
}

// Map fetches the cryptocurrency map, rank-sorted, up to limit entries.
func (c *Client) Map(ctx context.Context, limit int) ([]MapEntry, error) {
	params := url.Values{}
	params.Set("sort", "cmc_rank")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("start", "1")

	var resp MapResponse
	if err := c.get(ctx, "/cryptocurrency/map", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperrors.WrapError(err, "rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return apperrors.WrapError(err, "create market data request")
		}
		req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			if err := c.backoffSleep(ctx, attempt); err != nil {
				break
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return apperrors.WrapError(readErr, "read market data response")
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return apperrors.WrapError(err, "decode market data response")
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return apperrors.WrapErrorf(apperrors.ErrUnauthorized, "coinmarketcap status %s", resp.Status)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("coinmarketcap status %s: %s", resp.Status, string(body))
			c.logger.Warn("Market data request failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.String("status", resp.Status))
			if err := c.backoffSleep(ctx, attempt); err != nil {
				return apperrors.WrapErrorf(lastErr, "market data request aborted: %v", err)
			}
		default:
			return apperrors.WrapErrorf(apperrors.ErrMarketData, "coinmarketcap status %s: %s", resp.Status, string(body))
		}
	}

	return apperrors.WrapError(lastErr, "market data request exhausted retries")
}

// backoffSleep waits out the exponential delay, returning early when the
// request context is cancelled.
func (c *Client) backoffSleep(ctx context.Context, attempt int) error {
	d := c.retryDelay * time.Duration(1<<attempt)
	if max := 30 * time.Second; d > max {
		d = max
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
