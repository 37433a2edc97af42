package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

// anthropicProvider wraps the official SDK. Max tokens are sized by model
// generation and capped to stay under rate limits.
type anthropicProvider struct {
	client sdk.Client
	model  string
	logger *zap.Logger
}

func newAnthropicProvider(apiKey, model string, logger *zap.Logger) *anthropicProvider {
	return &anthropicProvider{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

func (p *anthropicProvider) Name() string { return ProviderAnthropic }

func (p *anthropicProvider) maxTokens() int64 {
	if strings.Contains(p.model, "haiku") {
		return 2048
	}
	return 4096
}

func (p *anthropicProvider) CreateMessage(ctx context.Context, prompt string) (string, error) {
	msg, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(p.model),
		MaxTokens:   p.maxTokens(),
		Temperature: sdk.Float(0.3),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifyProviderError(err, ProviderAnthropic)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		sb.WriteString(block.Text)
	}
	return sb.String(), nil
}
