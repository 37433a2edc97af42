// Package llm provides the model providers the analysis agents talk to.
package llm

import (
	"context"
	"strings"
	"sync"

	"cryptodash/config"
	apperrors "cryptodash/errors"

	"go.uber.org/zap"
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Provider generates one completion for one prompt.
type Provider interface {
	Name() string
	CreateMessage(ctx context.Context, prompt string) (string, error)
}

// classifyProviderError maps upstream failures onto the shared error
// taxonomy by message content, mirroring how provider SDK errors surface.
func classifyProviderError(err error, provider string) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized"):
		return apperrors.WrapErrorf(apperrors.ErrProviderAuthentication, "%s: %v", provider, err)
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") || strings.Contains(msg, "429"):
		return apperrors.WrapErrorf(apperrors.ErrProviderQuota, "%s: %v", provider, err)
	case strings.Contains(msg, "connection") || strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout"):
		return apperrors.WrapErrorf(apperrors.ErrProviderConnection, "%s: %v", provider, err)
	default:
		return apperrors.WrapErrorf(err, "%s provider", provider)
	}
}

// Registry builds providers from explicit configuration and supports
// runtime key updates from the dashboard's configuration form. No provider
// ever reads the process environment.
type Registry struct {
	mu     sync.RWMutex
	keys   map[string]string
	models map[string]string
	cfg    *config.Config
	logger *zap.Logger
}

func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	return &Registry{
		keys: map[string]string{
			ProviderOpenAI:    cfg.OpenAIAPIKey,
			ProviderAnthropic: cfg.AnthropicAPIKey,
		},
		models: map[string]string{
			ProviderOpenAI:    cfg.OpenAIModel,
			ProviderAnthropic: cfg.AnthropicModel,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Known reports whether name is a supported provider.
func (r *Registry) Known(name string) bool {
	return name == ProviderOpenAI || name == ProviderAnthropic
}

// Configured reports whether the named provider has an API key.
func (r *Registry) Configured(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keys[name] != ""
}

// SetKey updates the API key for a provider at runtime.
func (r *Registry) SetKey(name, key string) error {
	if !r.Known(name) {
		return apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unknown provider %q", name)
	}
	r.mu.Lock()
	r.keys[name] = key
	r.mu.Unlock()
	r.logger.Info("Provider key updated", zap.String("provider", name))
	return nil
}

// Provider returns a ready provider for name. Returns ErrServiceUnavailable
// when no key is configured; callers fall back to heuristic analysis.
func (r *Registry) Provider(name string) (Provider, error) {
	if !r.Known(name) {
		return nil, apperrors.WrapErrorf(apperrors.ErrInvalidInput, "unknown provider %q", name)
	}

	r.mu.RLock()
	key := r.keys[name]
	model := r.models[name]
	r.mu.RUnlock()

	if key == "" {
		return nil, apperrors.WrapErrorf(apperrors.ErrServiceUnavailable, "no API key configured for %s", name)
	}

	switch name {
	case ProviderAnthropic:
		return newAnthropicProvider(key, model, r.logger), nil
	default:
		return newOpenAIProvider(openAIConfig{
			APIKey:     key,
			BaseURL:    r.cfg.OpenAIBaseURL,
			Model:      model,
			Timeout:    r.cfg.RequestTimeout,
			MaxRetries: r.cfg.MaxRetries,
			RetryDelay: r.cfg.RetryDelaySeconds,
		}, r.logger), nil
	}
}
