package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// stubTask stands in for a SessionEmbeddingTask in runner and event
// handler tests. The execute function is swappable per scenario.
type stubTask struct {
	id        uuid.UUID
	taskType  string
	payload   []byte
	status    TaskStatus
	executeFn func(ctx context.Context) error
}

// newStubEmbeddingTask builds a pending embedding task for the given
// session, carrying the same payload shape the real task persists.
func newStubEmbeddingTask(sessionID uuid.UUID) *stubTask {
	payload, _ := json.Marshal(sessionEmbeddingPayload{SessionID: sessionID})
	return &stubTask{
		id:        uuid.New(),
		taskType:  TaskTypeSessionEmbedding,
		payload:   payload,
		status:    TaskStatusPending,
		executeFn: func(ctx context.Context) error { return nil },
	}
}

func (t *stubTask) ID() uuid.UUID   { return t.id }
func (t *stubTask) Type() string    { return t.taskType }
func (t *stubTask) Payload() []byte { return t.payload }
func (t *stubTask) Status() TaskStatus {
	return t.status
}

func (t *stubTask) Execute(ctx context.Context) error {
	return t.executeFn(ctx)
}

// stubTaskStore is an in-memory TaskStore that records status
// transitions so tests can assert on task lifecycle. Save and update
// behavior can be overridden per scenario.
type stubTaskStore struct {
	mu            sync.RWMutex
	tasks         map[uuid.UUID]*stubTask
	statusChanged map[uuid.UUID]time.Time

	saveFn   func(ctx context.Context, task Task) error
	updateFn func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

func newStubTaskStore() *stubTaskStore {
	return &stubTaskStore{
		tasks:         make(map[uuid.UUID]*stubTask),
		statusChanged: make(map[uuid.UUID]time.Time),
	}
}

func (s *stubTaskStore) SaveTask(ctx context.Context, task Task) error {
	if s.saveFn != nil {
		return s.saveFn(ctx, task)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := task.(*stubTask)
	if !ok {
		st = &stubTask{
			id:        task.ID(),
			taskType:  task.Type(),
			payload:   task.Payload(),
			status:    task.Status(),
			executeFn: task.Execute,
		}
	}
	s.tasks[task.ID()] = st
	s.statusChanged[task.ID()] = time.Now()
	return nil
}

func (s *stubTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status TaskStatus,
	errorMsg string,
) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, taskID, status, errorMsg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, exists := s.tasks[taskID]
	if !exists {
		return nil
	}
	st.status = status
	s.statusChanged[taskID] = time.Now()
	return nil
}

func (s *stubTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []Task
	for _, st := range s.tasks {
		if st.status == TaskStatusPending {
			pending = append(pending, st)
		}
	}
	return pending, nil
}

func (s *stubTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var processing []Task
	for _, st := range s.tasks {
		if st.status != TaskStatusProcessing {
			continue
		}
		changed, exists := s.statusChanged[st.id]
		if olderThan == 0 || (exists && now.Sub(changed) > olderThan) {
			processing = append(processing, st)
		}
	}
	return processing, nil
}

func (s *stubTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

// statusOf reports the stored status of a task, or empty if unknown.
func (s *stubTaskStore) statusOf(taskID uuid.UUID) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.tasks[taskID]
	if !exists {
		return ""
	}
	return st.status
}

// backdateStatus pretends the task entered its current status at some
// point in the past, so stuck-task scenarios do not have to sleep.
func (s *stubTaskStore) backdateStatus(taskID uuid.UUID, age time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusChanged[taskID] = time.Now().Add(-age)
}

// setExecuteFn swaps the execute function on a stored task.
func (s *stubTaskStore) setExecuteFn(taskID uuid.UUID, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, exists := s.tasks[taskID]; exists {
		st.executeFn = fn
	}
}
