package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/store"
)

// EmbeddingStore implements store.EmbeddingStore backed by a map keyed
// by session ID.
type EmbeddingStore struct {
	mu         sync.RWMutex
	embeddings map[uuid.UUID]*domain.SessionEmbedding
}

// NewEmbeddingStore creates an empty in-memory EmbeddingStore.
func NewEmbeddingStore() *EmbeddingStore {
	return &EmbeddingStore{
		embeddings: make(map[uuid.UUID]*domain.SessionEmbedding),
	}
}

// Upsert stores the embedding under its session ID, replacing any
// existing vector for that session.
func (s *EmbeddingStore) Upsert(_ context.Context, embedding *domain.SessionEmbedding) error {
	if err := embedding.Validate(); err != nil {
		return store.NewStoreError("embedding", "upsert", "invalid embedding", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddings[embedding.SessionID] = copyEmbedding(embedding)
	return nil
}

// GetBySessionID retrieves the embedding stored for the session.
func (s *EmbeddingStore) GetBySessionID(
	_ context.Context,
	sessionID uuid.UUID,
) (*domain.SessionEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	embedding, ok := s.embeddings[sessionID]
	if !ok {
		return nil, store.ErrEmbeddingNotFound
	}
	return copyEmbedding(embedding), nil
}

func copyEmbedding(e *domain.SessionEmbedding) *domain.SessionEmbedding {
	clone := *e
	clone.Vector = append([]float32(nil), e.Vector...)
	return &clone
}
