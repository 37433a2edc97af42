package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cryptodash/llm"
)

type ConfigHandler struct {
	registry *llm.Registry
	logger   *zap.Logger
}

func NewConfigHandler(registry *llm.Registry, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{registry: registry, logger: logger}
}

type updateKeysRequest struct {
	OpenAIAPIKey    string `json:"openai_api_key"`
	AnthropicAPIKey string `json:"anthropic_api_key"`
}

// UpdateKeys replaces provider API keys at runtime. Keys are held in
// memory only; an empty field leaves that provider untouched.
func (h *ConfigHandler) UpdateKeys(c *gin.Context) {
	var req updateKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithClientError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OpenAIAPIKey == "" && req.AnthropicAPIKey == "" {
		respondWithClientError(c, http.StatusBadRequest, "at least one API key must be provided")
		return
	}

	updated := make([]string, 0, 2)
	if req.OpenAIAPIKey != "" {
		if err := h.registry.SetKey(llm.ProviderOpenAI, req.OpenAIAPIKey); err != nil {
			respondWithError(c, http.StatusInternalServerError, err, "failed to update OpenAI key", h.logger)
			return
		}
		updated = append(updated, llm.ProviderOpenAI)
	}
	if req.AnthropicAPIKey != "" {
		if err := h.registry.SetKey(llm.ProviderAnthropic, req.AnthropicAPIKey); err != nil {
			respondWithError(c, http.StatusInternalServerError, err, "failed to update Anthropic key", h.logger)
			return
		}
		updated = append(updated, llm.ProviderAnthropic)
	}

	h.logger.Info("Provider API keys updated", zap.Strings("providers", updated))
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// Backtest is a placeholder; strategy simulation is not implemented.
func (h *ConfigHandler) Backtest(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "backtesting is not implemented yet"})
}
