package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "cryptodash/errors"
	"cryptodash/llm"
	"cryptodash/web/format"
	"cryptodash/web/types"
)

const maxHighlights = 3

// Analyzer runs the full agent fan-out for one symbol.
type Analyzer interface {
	AnalyzeAll(ctx context.Context, symbol, provider string) ([]types.AgentAnalysis, error)
}

// AnalysisStore persists completed runs. May be nil when no database is
// configured; the endpoints degrade gracefully.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, symbol, provider string, agents []types.AgentAnalysis) (types.AnalysisRecord, error)
	GetRecentAnalyses(ctx context.Context, symbol string, limit int) ([]types.AnalysisRecord, error)
}

type AnalysisHandler struct {
	agents      Analyzer
	reformatter *format.Reformatter
	store       AnalysisStore
	logger      *zap.Logger
}

func NewAnalysisHandler(agents Analyzer, reformatter *format.Reformatter, store AnalysisStore, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		agents:      agents,
		reformatter: reformatter,
		store:       store,
		logger:      logger,
	}
}

// Analyze runs every agent for a symbol and returns the formatted panels.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		respondWithClientError(c, http.StatusBadRequest, "symbol is required")
		return
	}
	provider := c.DefaultQuery("provider", llm.ProviderOpenAI)

	agents, err := h.agents.AnalyzeAll(c.Request.Context(), symbol, provider)
	if err != nil {
		switch {
		case apperrors.IsInvalidInput(err):
			respondWithClientError(c, http.StatusBadRequest, err.Error())
		case apperrors.IsProviderAuthentication(err):
			respondWithError(c, http.StatusUnauthorized, err, "analysis provider rejected the configured API key", h.logger)
		case apperrors.IsProviderQuota(err):
			respondWithError(c, http.StatusTooManyRequests, err, "analysis provider quota exceeded", h.logger)
		default:
			respondWithError(c, http.StatusServiceUnavailable, err, "failed to analyze "+symbol, h.logger,
				zap.String("symbol", symbol), zap.String("provider", provider))
		}
		return
	}

	for i := range agents {
		content := h.reformatter.Reformat(agents[i].Content)
		agents[i].Content = content
		agents[i].HTML = format.ConvertToHTML(content)
		agents[i].Highlights = format.Highlights(content, maxHighlights)
	}

	if h.store != nil {
		if _, err := h.store.SaveAnalysis(c.Request.Context(), symbol, provider, agents); err != nil {
			h.logger.Warn("Failed to persist analysis",
				zap.String("symbol", symbol), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, types.AnalysisResponse{
		Symbol:   symbol,
		Provider: provider,
		Agents:   agents,
	})
}

// History returns recent stored runs for a symbol. Without a configured
// store it answers an empty list rather than an error.
func (h *AnalysisHandler) History(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, []types.AnalysisRecord{})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		respondWithClientError(c, http.StatusBadRequest, "symbol is required")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		respondWithClientError(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	records, err := h.store.GetRecentAnalyses(c.Request.Context(), symbol, limit)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err, "failed to load analysis history", h.logger,
			zap.String("symbol", symbol))
		return
	}
	if records == nil {
		records = []types.AnalysisRecord{}
	}
	c.JSON(http.StatusOK, records)
}
