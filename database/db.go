package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	apperrors "cryptodash/errors"
	"cryptodash/web/types"
)

type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{DB: db}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
            id UUID PRIMARY KEY,
            symbol TEXT NOT NULL,
            provider TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            agent_titles TEXT[] DEFAULT '{}'::TEXT[],
            agents JSONB NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_created_at ON analyses(symbol, created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// SaveAnalysis persists a completed analysis run.
func (s *PostgresStore) SaveAnalysis(ctx context.Context, symbol, provider string, agents []types.AgentAnalysis) (types.AnalysisRecord, error) {
	record := types.AnalysisRecord{
		ID:        uuid.New(),
		Symbol:    symbol,
		Provider:  provider,
		CreatedAt: time.Now().UTC(),
		Agents:    agents,
	}
	for _, agent := range agents {
		record.AgentTitles = append(record.AgentTitles, agent.Title)
	}

	payload, err := json.Marshal(agents)
	if err != nil {
		return types.AnalysisRecord{}, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "failed to encode analysis payload: %v", err)
	}

	query := `
		INSERT INTO analyses (id, symbol, provider, created_at, agent_titles, agents)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.DB.ExecContext(ctx, query,
		record.ID, record.Symbol, record.Provider, record.CreatedAt,
		pq.Array(record.AgentTitles), payload,
	); err != nil {
		return types.AnalysisRecord{}, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "failed to save analysis for %s: %v", symbol, err)
	}
	return record, nil
}

// GetRecentAnalyses returns the newest stored runs for a symbol.
func (s *PostgresStore) GetRecentAnalyses(ctx context.Context, symbol string, limit int) ([]types.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, symbol, provider, created_at, agent_titles, agents
		FROM analyses
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.DB.QueryContext(ctx, query, symbol, limit)
	if err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "failed to query analyses for %s: %v", symbol, err)
	}
	defer rows.Close()

	var records []types.AnalysisRecord
	for rows.Next() {
		var record types.AnalysisRecord
		var payload []byte
		if err := rows.Scan(&record.ID, &record.Symbol, &record.Provider, &record.CreatedAt,
			pq.Array(&record.AgentTitles), &payload); err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "failed to scan analysis row: %v", err)
		}
		if err := json.Unmarshal(payload, &record.Agents); err != nil {
			return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "failed to decode analysis payload: %v", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.WrapErrorf(apperrors.ErrDatabaseOperation, "failed to iterate analysis rows: %v", err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
