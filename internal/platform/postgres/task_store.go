package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/platform/logger"
	"github.com/fluentloop/tutor-api/internal/store"
	"github.com/fluentloop/tutor-api/internal/task"
)

// TaskReconstructor rebuilds an executable task from its persisted type
// and payload. The task runner uses it to requeue work that survived a
// restart. Returning an error leaves the row in the store untouched;
// the runner will mark it failed when it tries to execute the stub.
type TaskReconstructor func(taskType string, payload []byte) (task.Task, error)

// PostgresTaskStore implements the task.TaskStore interface using
// PostgreSQL, so queued background work survives process restarts.
type PostgresTaskStore struct {
	db          store.DBTX
	logger      *slog.Logger
	reconstruct TaskReconstructor
}

// NewPostgresTaskStore creates a new PostgresTaskStore. If logger is
// nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements task.TaskStore interface
var _ task.TaskStore = (*PostgresTaskStore)(nil)

// SetReconstructor installs the function used to rehydrate recovered
// tasks into executable ones. Without it, recovered tasks fail on
// execution with a descriptive error.
func (s *PostgresTaskStore) SetReconstructor(fn TaskReconstructor) {
	s.reconstruct = fn
}

// WithTx returns a new task store bound to the provided transaction.
// The transaction is created and managed by the caller.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresTaskStore{
		db:          tx,
		logger:      s.logger,
		reconstruct: s.reconstruct,
	}
}

// SaveTask persists a task to the database
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		t.ID(),
		t.Type(),
		t.Payload(),
		t.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save task to database: %w", MapError(err))
	}

	return nil
}

// UpdateTaskStatus updates the status of a task in the database.
// A missing task is treated as a no-op; recovery and the stuck-task
// monitor may race with task completion.
func (s *PostgresTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		time.Now().UTC(),
		taskID,
	)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("no task found with ID to update status",
			slog.String("task_id", taskID.String()))
		return nil
	}

	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status. If
// olderThan is non-zero, only returns tasks whose last update is older
// than the given duration.
func (s *PostgresTaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *PostgresTaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status, error_message
		FROM tasks
		WHERE status = $1
	`
	args := []any{status}

	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query tasks by status: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task

	for rows.Next() {
		dbTask := &databaseTask{}
		var errorMessage sql.NullString

		if err := rows.Scan(
			&dbTask.id,
			&dbTask.taskType,
			&dbTask.payload,
			&dbTask.status,
			&errorMessage,
		); err != nil {
			log.Error("failed to scan task row",
				slog.String("status", string(status)),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		dbTask.errorMessage = errorMessage.String

		tasks = append(tasks, s.rehydrate(log, dbTask))
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// rehydrate turns a persisted row back into an executable task via the
// configured reconstructor. On failure the raw database task is
// returned; its Execute reports the reconstruction problem so the
// runner records the failure against the right task ID.
func (s *PostgresTaskStore) rehydrate(log *slog.Logger, dbTask *databaseTask) task.Task {
	if s.reconstruct == nil {
		return dbTask
	}

	rebuilt, err := s.reconstruct(dbTask.taskType, dbTask.payload)
	if err != nil {
		log.Warn("failed to reconstruct recovered task",
			slog.String("task_id", dbTask.id.String()),
			slog.String("task_type", dbTask.taskType),
			slog.String("error", err.Error()))
		dbTask.executeFn = func(context.Context) error {
			return fmt.Errorf("task reconstruction failed: %w", err)
		}
		return dbTask
	}

	// Keep the persisted identity so status updates target the
	// original row, not a freshly generated task ID.
	dbTask.executeFn = rebuilt.Execute
	return dbTask
}

// databaseTask implements the task.Task interface for rows loaded from
// the database.
type databaseTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	errorMessage string
	executeFn    func(ctx context.Context) error
}

// ID returns the task's unique identifier
func (t *databaseTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *databaseTask) Type() string {
	return t.taskType
}

// Payload returns the task data as a byte slice
func (t *databaseTask) Payload() []byte {
	return t.payload
}

// Status returns the current task status
func (t *databaseTask) Status() task.TaskStatus {
	return t.status
}

// Execute runs the reconstructed task logic. A task loaded without a
// reconstructor cannot run.
func (t *databaseTask) Execute(ctx context.Context) error {
	if t.executeFn != nil {
		return t.executeFn(ctx)
	}
	return errors.New("no execution function defined for recovered task")
}
