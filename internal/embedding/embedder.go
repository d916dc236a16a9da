// Package embedding defines the boundary between the application core
// and external embedding providers. Concrete providers live under
// internal/platform and implement Embedder.
package embedding

import (
	"context"
	"errors"
)

// Common errors returned by embedding providers.
var (
	// ErrEmptyText is returned when there is no text to embed.
	ErrEmptyText = errors.New("cannot embed empty text")

	// ErrInvalidResponse is returned when the provider response is
	// missing or malformed.
	ErrInvalidResponse = errors.New("invalid response from embedding provider")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry.
	ErrTransientFailure = errors.New("transient error during embedding")

	// ErrInvalidConfig is returned when the embedder configuration is invalid.
	ErrInvalidConfig = errors.New("invalid embedder configuration")
)

// Embedder produces a vector representation of a piece of text.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	// Implementations must honor context cancellation.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName identifies the model that produced the vectors, so the
	// stored embedding records which model space they live in.
	ModelName() string
}
