package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
)

// ProgressStore defines the interface for user progress persistence.
// Version: 1.1
type ProgressStore interface {
	// Get retrieves the progress record for the given user and language.
	// Returns ErrProgressNotFound if no record exists; callers treat
	// that as zero completions, not a failure.
	Get(ctx context.Context, userID uuid.UUID, languageCode string) (*domain.UserProgress, error)

	// MergeCompleted merges the given lesson IDs into the user's
	// completed set, creating the record if it does not exist. The
	// merge is a set union: it never removes completions, and
	// concurrent merges for the same user converge to the union of
	// all individually-valid updates regardless of interleaving.
	MergeCompleted(ctx context.Context, userID uuid.UUID, languageCode string, lessonIDs []int) (*domain.UserProgress, error)

	// WithTx returns a store instance bound to the given transaction.
	// Use with RunInTransaction to coordinate writes across stores.
	WithTx(tx *sql.Tx) ProgressStore

	// DB returns the underlying database handle, or nil when the
	// implementation is not database-backed.
	DB() *sql.DB
}
