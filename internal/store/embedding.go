package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
)

// EmbeddingStore defines the interface for session embedding persistence.
// Version: 1.0
type EmbeddingStore interface {
	// Upsert stores the embedding under its session ID, replacing any
	// existing vector for that session.
	Upsert(ctx context.Context, embedding *domain.SessionEmbedding) error

	// GetBySessionID retrieves the embedding stored for the session.
	// Returns ErrEmbeddingNotFound if none exists.
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.SessionEmbedding, error)
}
