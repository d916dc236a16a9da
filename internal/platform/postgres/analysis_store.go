package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/platform/logger"
	"github.com/fluentloop/tutor-api/internal/store"
)

// PostgresAnalysisStore implements the store.AnalysisStore interface
// using a PostgreSQL database as the storage backend. Event and
// narrative fields are stored as JSONB columns.
type PostgresAnalysisStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnalysisStore creates a new PostgreSQL implementation of
// the AnalysisStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAnalysisStore(db store.DBTX, logger *slog.Logger) *PostgresAnalysisStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnalysisStore{
		db:     db,
		logger: logger.With(slog.String("component", "analysis_store")),
	}
}

// Ensure PostgresAnalysisStore implements store.AnalysisStore interface
var _ store.AnalysisStore = (*PostgresAnalysisStore)(nil)

// WithTx returns a copy of the store bound to the given transaction.
func (s *PostgresAnalysisStore) WithTx(tx *sql.Tx) store.AnalysisStore {
	return &PostgresAnalysisStore{
		db:     tx,
		logger: s.logger,
	}
}

// DB returns the underlying *sql.DB, or nil when the store is bound to
// a transaction.
func (s *PostgresAnalysisStore) DB() *sql.DB {
	if db, ok := s.db.(*sql.DB); ok {
		return db
	}
	return nil
}

// Upsert implements store.AnalysisStore.Upsert
// It stores the analysis under its session ID, replacing any existing
// record for that session so that reprocessing a transcript converges
// to a single stored analysis.
func (s *PostgresAnalysisStore) Upsert(ctx context.Context, analysis *domain.SessionAnalysis) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := analysis.Validate(); err != nil {
		log.Warn("analysis validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("session_id", analysis.SessionID.String()))
		return store.NewStoreError("analysis", "upsert", "invalid analysis", err)
	}

	vocabJSON, err := json.Marshal(analysis.VocabularyEvents)
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary events: %w", err)
	}
	grammarJSON, err := json.Marshal(analysis.GrammarEvents)
	if err != nil {
		return fmt.Errorf("failed to encode grammar events: %w", err)
	}
	highlightsJSON, err := json.Marshal(analysis.Highlights)
	if err != nil {
		return fmt.Errorf("failed to encode highlights: %w", err)
	}
	recommendationsJSON, err := json.Marshal(analysis.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	query := `
		INSERT INTO session_analyses (
			session_id, user_id, language_code, conversation_id,
			vocabulary_events, grammar_events, summary,
			highlights, recommendations, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (session_id) DO UPDATE
		SET user_id           = EXCLUDED.user_id,
			language_code     = EXCLUDED.language_code,
			conversation_id   = EXCLUDED.conversation_id,
			vocabulary_events = EXCLUDED.vocabulary_events,
			grammar_events    = EXCLUDED.grammar_events,
			summary           = EXCLUDED.summary,
			highlights        = EXCLUDED.highlights,
			recommendations   = EXCLUDED.recommendations,
			created_at        = EXCLUDED.created_at
	`

	_, err = s.db.ExecContext(ctx, query,
		analysis.SessionID,
		analysis.UserID,
		analysis.LanguageCode,
		analysis.ConversationID,
		vocabJSON,
		grammarJSON,
		analysis.Summary,
		highlightsJSON,
		recommendationsJSON,
		analysis.CreatedAt,
	)
	if err != nil {
		log.Error("failed to upsert analysis",
			slog.String("error", err.Error()),
			slog.String("session_id", analysis.SessionID.String()),
			slog.String("user_id", analysis.UserID.String()))
		return MapError(err)
	}

	log.Debug("analysis upserted",
		slog.String("session_id", analysis.SessionID.String()),
		slog.String("user_id", analysis.UserID.String()),
		slog.String("language_code", analysis.LanguageCode))
	return nil
}

// GetBySessionID implements store.AnalysisStore.GetBySessionID
// Returns store.ErrAnalysisNotFound if no analysis is stored for the
// session.
func (s *PostgresAnalysisStore) GetBySessionID(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.SessionAnalysis, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := analysisSelectColumns + `
		FROM session_analyses
		WHERE session_id = $1
	`

	row := s.db.QueryRowContext(ctx, query, sessionID)
	analysis, err := scanAnalysis(row)
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("analysis not found",
				slog.String("session_id", sessionID.String()))
			return nil, store.ErrAnalysisNotFound
		}

		log.Error("failed to get analysis",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, MapError(err)
	}

	return analysis, nil
}

// ListRecent implements store.AnalysisStore.ListRecent
// It retrieves up to limit analyses for the user and language, most
// recent first. An empty result is not an error.
func (s *PostgresAnalysisStore) ListRecent(
	ctx context.Context,
	userID uuid.UUID,
	languageCode string,
	limit int,
) ([]*domain.SessionAnalysis, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := analysisSelectColumns + `
		FROM session_analyses
		WHERE user_id = $1 AND language_code = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, languageCode, limit)
	if err != nil {
		log.Error("failed to list recent analyses",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("language_code", languageCode))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	analyses := []*domain.SessionAnalysis{}
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			log.Error("failed to scan analysis row",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating analysis rows",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("error iterating analysis rows: %w", err)
	}

	return analyses, nil
}

const analysisSelectColumns = `
		SELECT session_id, user_id, language_code, conversation_id,
			vocabulary_events, grammar_events, summary,
			highlights, recommendations, created_at
`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*domain.SessionAnalysis, error) {
	var analysis domain.SessionAnalysis
	var vocabJSON, grammarJSON, highlightsJSON, recommendationsJSON []byte

	err := row.Scan(
		&analysis.SessionID,
		&analysis.UserID,
		&analysis.LanguageCode,
		&analysis.ConversationID,
		&vocabJSON,
		&grammarJSON,
		&analysis.Summary,
		&highlightsJSON,
		&recommendationsJSON,
		&analysis.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(vocabJSON, &analysis.VocabularyEvents); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary events: %w", err)
	}
	if err := json.Unmarshal(grammarJSON, &analysis.GrammarEvents); err != nil {
		return nil, fmt.Errorf("failed to decode grammar events: %w", err)
	}
	if err := json.Unmarshal(highlightsJSON, &analysis.Highlights); err != nil {
		return nil, fmt.Errorf("failed to decode highlights: %w", err)
	}
	if err := json.Unmarshal(recommendationsJSON, &analysis.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}

	return &analysis, nil
}
