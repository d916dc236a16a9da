package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/fluentloop/tutor-api/internal/config"
	"github.com/fluentloop/tutor-api/internal/embedding"
)

// Embedder implements the embedding.Embedder interface using Google's
// Gemini API to embed session analysis text.
type Embedder struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains embedding-provider configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini embedding model to use
	model string
}

// NewEmbedder creates a new Gemini-backed Embedder with the provided
// dependencies.
func NewEmbedder(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Embedder, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", embedding.ErrInvalidConfig)
	}

	if cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("%w: embedding model cannot be empty", embedding.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			embedding.ErrInvalidConfig, err)
	}

	return &Embedder{
		logger: logger.With("component", "gemini_embedder"),
		config: cfg,
		client: client,
		model:  cfg.EmbeddingModel,
	}, nil
}

// ModelName identifies the configured Gemini embedding model.
func (e *Embedder) ModelName() string {
	return e.model
}

// Embed returns the embedding vector for the given text. Transient API
// errors are retried with exponential backoff and jitter; malformed
// responses are returned immediately.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, embedding.ErrEmptyText
	}

	maxRetries := e.config.MaxRetries
	if maxRetries < 0 {
		e.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	baseDelaySeconds := e.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		e.logger.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		e.logger.DebugContext(ctx, "Making Gemini embedding call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"text_length", len(text))

		vector, err := e.embedOnce(ctx, text)
		if err == nil {
			return vector, nil
		}

		e.logger.ErrorContext(ctx, "Gemini embedding call failed",
			"attempt", attemptNum,
			"error", err)

		// Malformed responses will not improve on retry.
		if errors.Is(err, embedding.ErrInvalidResponse) {
			return nil, err
		}

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				embedding.ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", embedding.ErrTransientFailure, ctx.Err())
		}
	}
}

func (e *Embedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings in response", embedding.ErrInvalidResponse)
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding vector", embedding.ErrInvalidResponse)
	}

	return values, nil
}
