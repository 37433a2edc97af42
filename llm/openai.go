package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "cryptodash/errors"

	"go.uber.org/zap"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type openAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// openAIProvider speaks the chat-completions protocol over plain HTTP, which
// also covers OpenAI-compatible local backends.
type openAIProvider struct {
	cfg        openAIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func newOpenAIProvider(cfg openAIConfig, logger *zap.Logger) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &openAIProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (p *openAIProvider) Name() string { return ProviderOpenAI }

func (p *openAIProvider) CreateMessage(ctx context.Context, prompt string) (string, error) {
	temperature := 1.0
	maxTokens := 4096
	reqBody := chatRequest{
		Model:       p.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.WrapError(err, "marshal chat request")
	}

	url := fmt.Sprintf("%s/v1/chat/completions", strings.TrimRight(p.cfg.BaseURL, "/"))

	var resp *http.Response
	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return "", apperrors.WrapError(err, "create chat request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

		r, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			// Do not retry on context cancellation/deadline
			if ctx.Err() != nil {
				break
			}
			if err := p.backoffSleep(ctx, attempt); err != nil {
				break
			}
			continue
		}
		if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			lastErr = fmt.Errorf("chat completions status %s", r.Status)
			p.logger.Warn("Chat completion failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.String("status", r.Status))
			if err := p.backoffSleep(ctx, attempt); err != nil {
				break
			}
			continue
		}
		resp = r
		break
	}
	if resp == nil {
		return "", classifyProviderError(lastErr, ProviderOpenAI)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.WrapError(err, "read chat response")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", apperrors.WrapErrorf(apperrors.ErrProviderAuthentication, "openai status %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyProviderError(fmt.Errorf("chat completions status %s: %s", resp.Status, string(bodyBytes)), ProviderOpenAI)
	}

	var cr chatResponse
	if err := json.Unmarshal(bodyBytes, &cr); err != nil {
		return "", apperrors.WrapError(err, "decode chat response")
	}
	if len(cr.Choices) == 0 {
		return "", apperrors.WrapError(apperrors.ErrServiceUnavailable, "no response choices from chat completions")
	}
	return cr.Choices[0].Message.Content, nil
}

// backoffSleep waits out the exponential delay, returning early when the
// request context is cancelled.
func (p *openAIProvider) backoffSleep(ctx context.Context, attempt int) error {
	d := p.cfg.RetryDelay * time.Duration(1<<attempt)
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
