package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for SessionEmbedding
var (
	ErrEmptyEmbeddingSessionID = errors.New("embedding session ID cannot be empty")
	ErrEmptyEmbeddingVector    = errors.New("embedding vector cannot be empty")
)

// SessionEmbedding is the vector representation of a processed
// session, written by the embedding pipeline after the fact. It is
// never required for the success of the request that produced the
// underlying analysis.
type SessionEmbedding struct {
	SessionID uuid.UUID `json:"session_id"`
	Vector    []float32 `json:"vector"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionEmbedding creates a SessionEmbedding for the given session
// and vector. Returns an error if validation fails.
func NewSessionEmbedding(sessionID uuid.UUID, vector []float32, model string) (*SessionEmbedding, error) {
	embedding := &SessionEmbedding{
		SessionID: sessionID,
		Vector:    vector,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}

	if err := embedding.Validate(); err != nil {
		return nil, err
	}

	return embedding, nil
}

// Validate checks if the SessionEmbedding has valid data.
func (e *SessionEmbedding) Validate() error {
	if e.SessionID == uuid.Nil {
		return ErrEmptyEmbeddingSessionID
	}

	if len(e.Vector) == 0 {
		return ErrEmptyEmbeddingVector
	}

	return nil
}
