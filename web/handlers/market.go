package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "cryptodash/errors"
	"cryptodash/market"
	"cryptodash/web/types"
)

// MarketSource is the slice of the market provider the handlers need.
type MarketSource interface {
	MarketData(ctx context.Context, symbol string) (*market.QuotesResponse, error)
	SupportedCryptocurrencies(ctx context.Context) ([]market.Listing, error)
}

type MarketHandler struct {
	markets MarketSource
	logger  *zap.Logger
}

func NewMarketHandler(markets MarketSource, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{markets: markets, logger: logger}
}

// ListCryptocurrencies returns the supported symbols sorted by rank.
func (h *MarketHandler) ListCryptocurrencies(c *gin.Context) {
	listings, err := h.markets.SupportedCryptocurrencies(c.Request.Context())
	if err != nil {
		respondWithError(c, http.StatusBadGateway, err, "failed to fetch supported cryptocurrencies", h.logger)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// GetMarketData returns the current snapshot for one symbol.
func (h *MarketHandler) GetMarketData(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		respondWithClientError(c, http.StatusBadRequest, "symbol is required")
		return
	}

	quotes, err := h.markets.MarketData(c.Request.Context(), symbol)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			respondWithError(c, http.StatusBadGateway, err, "market data provider rejected the configured API key", h.logger)
			return
		}
		respondWithError(c, http.StatusBadGateway, err, "failed to fetch market data", h.logger, zap.String("symbol", symbol))
		return
	}

	quote, ok := quotes.USDQuote(symbol)
	if !ok {
		respondWithClientError(c, http.StatusNotFound, "no market data for symbol "+symbol)
		return
	}

	c.JSON(http.StatusOK, types.MarketSnapshot{
		Price:     quote.Price,
		Change24h: quote.PercentChange24h,
		Volume:    quote.Volume24h,
		MarketCap: quote.MarketCap,
	})
}
