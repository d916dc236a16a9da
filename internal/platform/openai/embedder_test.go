package openai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentloop/tutor-api/internal/config"
	"github.com/fluentloop/tutor-api/internal/embedding"
)

type stubClient struct {
	resp openai.EmbeddingResponse
	err  error

	gotModel openai.EmbeddingModel
	gotInput []string
}

func (s *stubClient) CreateEmbeddings(
	_ context.Context,
	conv openai.EmbeddingRequestConverter,
) (openai.EmbeddingResponse, error) {
	req := conv.Convert()
	s.gotModel = req.Model
	if input, ok := req.Input.([]string); ok {
		s.gotInput = input
	}
	return s.resp, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:       "openai",
		OpenAIAPIKey:   "test-key",
		EmbeddingModel: "text-embedding-3-small",
	}
}

func TestNewEmbedderValidation(t *testing.T) {
	t.Parallel()

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		_, err := NewEmbedder(nil, testConfig())
		assert.Error(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.OpenAIAPIKey = ""
		_, err := NewEmbedder(testLogger(), cfg)
		assert.ErrorIs(t, err, embedding.ErrInvalidConfig)
	})

	t.Run("missing model", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.EmbeddingModel = ""
		_, err := NewEmbedder(testLogger(), cfg)
		assert.ErrorIs(t, err, embedding.ErrInvalidConfig)
	})

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		e, err := NewEmbedder(testLogger(), testConfig())
		require.NoError(t, err)
		assert.Equal(t, "text-embedding-3-small", e.ModelName())
	})
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	t.Run("returns vector from response", func(t *testing.T) {
		t.Parallel()
		stub := &stubClient{
			resp: openai.EmbeddingResponse{
				Data: []openai.Embedding{{Embedding: []float32{0.1, 0.2, 0.3}}},
			},
		}
		e := &Embedder{logger: testLogger(), client: stub, model: "text-embedding-3-small"}

		vec, err := e.Embed(context.Background(), "hola gracias")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
		assert.Equal(t, openai.EmbeddingModel("text-embedding-3-small"), stub.gotModel)
		assert.Equal(t, []string{"hola gracias"}, stub.gotInput)
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		e := &Embedder{logger: testLogger(), client: &stubClient{}, model: "m"}

		_, err := e.Embed(context.Background(), "")
		assert.ErrorIs(t, err, embedding.ErrEmptyText)
	})

	t.Run("API error is transient", func(t *testing.T) {
		t.Parallel()
		stub := &stubClient{err: errors.New("rate limited")}
		e := &Embedder{logger: testLogger(), client: stub, model: "m"}

		_, err := e.Embed(context.Background(), "hola")
		assert.ErrorIs(t, err, embedding.ErrTransientFailure)
	})

	t.Run("empty response is invalid", func(t *testing.T) {
		t.Parallel()
		stub := &stubClient{resp: openai.EmbeddingResponse{}}
		e := &Embedder{logger: testLogger(), client: stub, model: "m"}

		_, err := e.Embed(context.Background(), "hola")
		assert.ErrorIs(t, err, embedding.ErrInvalidResponse)
	})
}
