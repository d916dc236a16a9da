package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/platform/logger"
	"github.com/fluentloop/tutor-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of
// the ProgressStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx returns a copy of the store bound to the given transaction.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// DB returns the underlying *sql.DB, or nil when the store is bound to
// a transaction.
func (s *PostgresProgressStore) DB() *sql.DB {
	if db, ok := s.db.(*sql.DB); ok {
		return db
	}
	return nil
}

// Get implements store.ProgressStore.Get
// It retrieves the progress record for the given user and language.
// Returns store.ErrProgressNotFound if no record exists.
func (s *PostgresProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	languageCode string,
) (*domain.UserProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT completed_lesson_ids, updated_at
		FROM user_progress
		WHERE user_id = $1 AND language_code = $2
	`

	var completedJSON []byte
	var updatedAt time.Time

	err := s.db.QueryRowContext(ctx, query, userID, languageCode).
		Scan(&completedJSON, &updatedAt)
	if err != nil {
		if IsNotFoundError(err) {
			log.Debug("progress record not found",
				slog.String("user_id", userID.String()),
				slog.String("language_code", languageCode))
			return nil, store.ErrProgressNotFound
		}

		log.Error("failed to get progress record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("language_code", languageCode))
		return nil, MapError(err)
	}

	completed, err := decodeLessonIDs(completedJSON)
	if err != nil {
		log.Error("failed to decode completed lesson IDs",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("language_code", languageCode))
		return nil, err
	}

	return &domain.UserProgress{
		UserID:             userID,
		LanguageCode:       languageCode,
		CompletedLessonIDs: completed,
		UpdatedAt:          updatedAt,
	}, nil
}

// MergeCompleted implements store.ProgressStore.MergeCompleted
// It merges the given lesson IDs into the user's completed set,
// creating the record if it does not exist. The union happens inside a
// single INSERT ... ON CONFLICT statement, so concurrent merges for the
// same user serialize on the row and converge to the union of all
// updates regardless of interleaving.
func (s *PostgresProgressStore) MergeCompleted(
	ctx context.Context,
	userID uuid.UUID,
	languageCode string,
	lessonIDs []int,
) (*domain.UserProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fresh, err := domain.NewUserProgress(userID, languageCode)
	if err != nil {
		log.Warn("progress validation failed during merge",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("language_code", languageCode))
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	incoming, err := encodeLessonIDs(lessonIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lesson IDs: %w", err)
	}

	query := `
		INSERT INTO user_progress AS p (user_id, language_code, completed_lesson_ids, updated_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (user_id, language_code) DO UPDATE
		SET completed_lesson_ids = (
			SELECT COALESCE(to_jsonb(array_agg(v ORDER BY v)), '[]'::jsonb)
			FROM (
				SELECT DISTINCT value::int AS v
				FROM jsonb_array_elements_text(p.completed_lesson_ids || EXCLUDED.completed_lesson_ids)
			) AS merged
		),
		updated_at = EXCLUDED.updated_at
		RETURNING completed_lesson_ids, updated_at
	`

	var mergedJSON []byte
	var updatedAt time.Time

	err = s.db.QueryRowContext(ctx, query, userID, languageCode, incoming, fresh.UpdatedAt).
		Scan(&mergedJSON, &updatedAt)
	if err != nil {
		log.Error("failed to merge completed lessons",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("language_code", languageCode))
		return nil, MapError(err)
	}

	merged, err := decodeLessonIDs(mergedJSON)
	if err != nil {
		log.Error("failed to decode merged lesson IDs",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("language_code", languageCode))
		return nil, err
	}

	log.Debug("merged completed lessons",
		slog.String("user_id", userID.String()),
		slog.String("language_code", languageCode),
		slog.Int("merged_count", len(lessonIDs)),
		slog.Int("total_count", len(merged)))

	return &domain.UserProgress{
		UserID:             userID,
		LanguageCode:       languageCode,
		CompletedLessonIDs: merged,
		UpdatedAt:          updatedAt,
	}, nil
}

// encodeLessonIDs serializes lesson IDs for the JSONB column. A nil
// slice is stored as an empty JSON array, never as SQL NULL.
func encodeLessonIDs(ids []int) ([]byte, error) {
	if ids == nil {
		ids = []int{}
	}
	return json.Marshal(ids)
}

func decodeLessonIDs(data []byte) ([]int, error) {
	ids := []int{}
	if len(data) == 0 {
		return ids, nil
	}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode lesson IDs: %w", err)
	}
	return ids, nil
}
