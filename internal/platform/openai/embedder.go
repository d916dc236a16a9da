// Package openai provides an embedding.Embedder backed by the OpenAI
// embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fluentloop/tutor-api/internal/config"
	"github.com/fluentloop/tutor-api/internal/embedding"
)

// embeddingClient is the slice of the OpenAI client the embedder uses.
// Narrowing the dependency keeps the provider testable without network access.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Embedder implements the embedding.Embedder interface using the
// OpenAI embeddings API.
type Embedder struct {
	logger *slog.Logger
	client embeddingClient
	model  string
}

// NewEmbedder creates a new OpenAI-backed Embedder with the provided
// dependencies.
func NewEmbedder(logger *slog.Logger, cfg config.LLMConfig) (*Embedder, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", embedding.ErrInvalidConfig)
	}

	if cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("%w: embedding model cannot be empty", embedding.ErrInvalidConfig)
	}

	client := openai.NewClientWithConfig(openai.DefaultConfig(cfg.OpenAIAPIKey))

	return &Embedder{
		logger: logger.With("component", "openai_embedder"),
		client: client,
		model:  cfg.EmbeddingModel,
	}, nil
}

// ModelName identifies the configured OpenAI embedding model.
func (e *Embedder) ModelName() string {
	return e.model
}

// Embed returns the embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, embedding.ErrEmptyText
	}

	e.logger.DebugContext(ctx, "Making OpenAI embedding call",
		"model", e.model,
		"text_length", len(text))

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embedding.ErrTransientFailure, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embeddings in response", embedding.ErrInvalidResponse)
	}

	return resp.Data[0].Embedding, nil
}
