package types

import (
	"time"

	"github.com/google/uuid"
)

// AgentAnalysis is one named analysis section displayed as a collapsible
// panel on the dashboard.
type AgentAnalysis struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	HTML       string   `json:"html,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

// AnalysisResponse is the payload of GET /api/analysis/:symbol.
type AnalysisResponse struct {
	Symbol   string          `json:"symbol"`
	Provider string          `json:"provider"`
	Agents   []AgentAnalysis `json:"agents"`
}

// MarketSnapshot is the payload of GET /api/market-data/:symbol.
type MarketSnapshot struct {
	Price     float64 `json:"price"`
	Change24h float64 `json:"change24h"`
	Volume    float64 `json:"volume"`
	MarketCap float64 `json:"marketcap"`
}

// AnalysisRecord is a stored analysis run.
type AnalysisRecord struct {
	ID          uuid.UUID       `json:"id"`
	Symbol      string          `json:"symbol"`
	Provider    string          `json:"provider"`
	CreatedAt   time.Time       `json:"created_at"`
	AgentTitles []string        `json:"agent_titles"`
	Agents      []AgentAnalysis `json:"agents"`
}
