package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
)

// AnalysisStore defines the interface for session analysis persistence.
// Version: 1.1
type AnalysisStore interface {
	// Upsert stores the analysis under its session ID, replacing any
	// existing record for that session. Re-processing a session must
	// converge to a single stored analysis, never duplicate events.
	Upsert(ctx context.Context, analysis *domain.SessionAnalysis) error

	// GetBySessionID retrieves the analysis stored for the session.
	// Returns ErrAnalysisNotFound if none exists.
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.SessionAnalysis, error)

	// ListRecent retrieves up to limit analyses for the user and
	// language, most recent first. Returns an empty slice when the
	// user has no processed sessions.
	ListRecent(ctx context.Context, userID uuid.UUID, languageCode string, limit int) ([]*domain.SessionAnalysis, error)

	// WithTx returns a store instance bound to the given transaction.
	// Use with RunInTransaction to coordinate writes across stores.
	WithTx(tx *sql.Tx) AnalysisStore

	// DB returns the underlying database handle, or nil when the
	// implementation is not database-backed.
	DB() *sql.DB
}
