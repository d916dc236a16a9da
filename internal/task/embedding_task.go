package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/embedding"
	"github.com/fluentloop/tutor-api/internal/store"
)

// Common errors
var (
	ErrNilAnalysisStore  = errors.New("analysis store cannot be nil")
	ErrNilEmbedder       = errors.New("embedder cannot be nil")
	ErrNilEmbeddingStore = errors.New("embedding store cannot be nil")
	ErrNilLogger         = errors.New("logger cannot be nil")
	ErrEmptySessionID    = errors.New("session ID cannot be empty")
)

// sessionEmbeddingPayload represents the serialized data stored in the task
type sessionEmbeddingPayload struct {
	SessionID uuid.UUID `json:"session_id"`
}

// SessionEmbeddingTask implements the Task interface for embedding a
// processed session's analysis text. The task is fire-and-forget from
// the caller's point of view: a failure here is logged and recorded on
// the task record but never surfaces to the session that spawned it.
type SessionEmbeddingTask struct {
	id             uuid.UUID
	sessionID      uuid.UUID
	analysisStore  store.AnalysisStore
	embedder       embedding.Embedder
	embeddingStore store.EmbeddingStore
	logger         *slog.Logger
	status         TaskStatus
}

// NewSessionEmbeddingTask creates a new session embedding task
func NewSessionEmbeddingTask(
	sessionID uuid.UUID,
	analysisStore store.AnalysisStore,
	embedder embedding.Embedder,
	embeddingStore store.EmbeddingStore,
	logger *slog.Logger,
) (*SessionEmbeddingTask, error) {
	if analysisStore == nil {
		return nil, ErrNilAnalysisStore
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	if embeddingStore == nil {
		return nil, ErrNilEmbeddingStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if sessionID == uuid.Nil {
		return nil, ErrEmptySessionID
	}

	return &SessionEmbeddingTask{
		id:             uuid.New(),
		sessionID:      sessionID,
		analysisStore:  analysisStore,
		embedder:       embedder,
		embeddingStore: embeddingStore,
		logger:         logger.With("task_type", TaskTypeSessionEmbedding, "session_id", sessionID),
		status:         TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *SessionEmbeddingTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *SessionEmbeddingTask) Type() string {
	return TaskTypeSessionEmbedding
}

// Payload returns the task data as a byte slice
func (t *SessionEmbeddingTask) Payload() []byte {
	data, err := json.Marshal(sessionEmbeddingPayload{SessionID: t.sessionID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *SessionEmbeddingTask) Status() TaskStatus {
	return t.status
}

// Execute fetches the session analysis, renders it to text, requests
// the embedding vector, and upserts the result. Re-running the task
// for the same session replaces the stored vector, so retries after a
// crash are safe.
func (t *SessionEmbeddingTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting session embedding task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	analysis, err := t.analysisStore.GetBySessionID(ctx, t.sessionID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve session analysis", "error", err)
		return fmt.Errorf("failed to retrieve session analysis: %w", err)
	}

	text := embedding.RenderAnalysisText(analysis)
	if text == "" {
		t.status = TaskStatusFailed
		return fmt.Errorf("session analysis rendered to empty text")
	}

	vector, err := t.embedder.Embed(ctx, text)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to embed session analysis", "error", err)
		return fmt.Errorf("failed to embed session analysis: %w", err)
	}

	sessionEmbedding, err := domain.NewSessionEmbedding(t.sessionID, vector, t.embedder.ModelName())
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to create session embedding: %w", err)
	}

	if err := t.embeddingStore.Upsert(ctx, sessionEmbedding); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to store session embedding", "error", err)
		return fmt.Errorf("failed to store session embedding: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("session embedding task completed",
		"vector_dimensions", len(vector),
		"model", t.embedder.ModelName())
	return nil
}
