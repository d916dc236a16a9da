package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/embedding"
	"github.com/fluentloop/tutor-api/internal/store"
)

// SessionEmbeddingTaskFactory creates SessionEmbeddingTask instances
type SessionEmbeddingTaskFactory struct {
	analysisStore  store.AnalysisStore
	embedder       embedding.Embedder
	embeddingStore store.EmbeddingStore
	logger         *slog.Logger
}

// NewSessionEmbeddingTaskFactory creates a new factory for SessionEmbeddingTasks
func NewSessionEmbeddingTaskFactory(
	analysisStore store.AnalysisStore,
	embedder embedding.Embedder,
	embeddingStore store.EmbeddingStore,
	logger *slog.Logger,
) *SessionEmbeddingTaskFactory {
	return &SessionEmbeddingTaskFactory{
		analysisStore:  analysisStore,
		embedder:       embedder,
		embeddingStore: embeddingStore,
		logger:         logger.With("component", "session_embedding_task_factory"),
	}
}

// CreateTask creates a new SessionEmbeddingTask for the specified session
func (f *SessionEmbeddingTaskFactory) CreateTask(sessionID uuid.UUID) (Task, error) {
	return NewSessionEmbeddingTask(
		sessionID,
		f.analysisStore,
		f.embedder,
		f.embeddingStore,
		f.logger,
	)
}
