package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/platform/logger"
	"github.com/fluentloop/tutor-api/internal/store"
)

// PostgresEmbeddingStore implements the store.EmbeddingStore interface
// using a PostgreSQL database as the storage backend. The vector is
// stored as a JSONB array alongside the model that produced it, so a
// model upgrade can tell stale vectors apart from fresh ones.
type PostgresEmbeddingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEmbeddingStore creates a new PostgreSQL implementation of
// the EmbeddingStore interface. If logger is nil, a default logger
// will be used.
func NewPostgresEmbeddingStore(db store.DBTX, logger *slog.Logger) *PostgresEmbeddingStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEmbeddingStore{
		db:     db,
		logger: logger.With(slog.String("component", "embedding_store")),
	}
}

// Ensure PostgresEmbeddingStore implements store.EmbeddingStore interface
var _ store.EmbeddingStore = (*PostgresEmbeddingStore)(nil)

// Upsert implements store.EmbeddingStore.Upsert
// It stores the embedding under its session ID, replacing any existing
// vector for that session.
func (s *PostgresEmbeddingStore) Upsert(ctx context.Context, embedding *domain.SessionEmbedding) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := embedding.Validate(); err != nil {
		log.Warn("embedding validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("session_id", embedding.SessionID.String()))
		return store.NewStoreError("embedding", "upsert", "invalid embedding", err)
	}

	vectorJSON, err := json.Marshal(embedding.Vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	query := `
		INSERT INTO session_embeddings (session_id, vector, model, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET vector     = EXCLUDED.vector,
			model      = EXCLUDED.model,
			created_at = EXCLUDED.created_at
	`

	_, err = s.db.ExecContext(ctx, query,
		embedding.SessionID,
		vectorJSON,
		embedding.Model,
		embedding.CreatedAt,
	)
	if err != nil {
		log.Error("failed to upsert embedding",
			slog.String("error", err.Error()),
			slog.String("session_id", embedding.SessionID.String()),
			slog.String("model", embedding.Model))
		return MapError(err)
	}

	log.Debug("embedding upserted",
		slog.String("session_id", embedding.SessionID.String()),
		slog.String("model", embedding.Model),
		slog.Int("dimensions", len(embedding.Vector)))
	return nil
}

// GetBySessionID implements store.EmbeddingStore.GetBySessionID
// Returns store.ErrEmbeddingNotFound if no embedding is stored for the
// session.
func (s *PostgresEmbeddingStore) GetBySessionID(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.SessionEmbedding, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT session_id, vector, model, created_at
		FROM session_embeddings
		WHERE session_id = $1
	`

	var embedding domain.SessionEmbedding
	var vectorJSON []byte

	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&embedding.SessionID,
		&vectorJSON,
		&embedding.Model,
		&embedding.CreatedAt,
	)
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("embedding not found",
				slog.String("session_id", sessionID.String()))
			return nil, store.ErrEmbeddingNotFound
		}

		log.Error("failed to get embedding",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, MapError(err)
	}

	if err := json.Unmarshal(vectorJSON, &embedding.Vector); err != nil {
		return nil, fmt.Errorf("failed to decode vector: %w", err)
	}

	return &embedding, nil
}
