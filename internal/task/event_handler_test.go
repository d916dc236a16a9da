package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentloop/tutor-api/internal/events"
)

type mockTaskFactory struct {
	task Task
	err  error

	gotSessionID uuid.UUID
}

func (f *mockTaskFactory) CreateTask(sessionID uuid.UUID) (Task, error) {
	f.gotSessionID = sessionID
	return f.task, f.err
}

type mockSubmitter struct {
	err       error
	submitted []Task
}

func (s *mockSubmitter) Submit(_ context.Context, task Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, task)
	return nil
}

func handlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sessionEvent(t *testing.T, sessionID string) *events.TaskRequestEvent {
	t.Helper()
	event, err := events.NewTaskRequestEvent(TaskTypeSessionEmbedding, map[string]string{
		"session_id": sessionID,
	})
	require.NoError(t, err)
	return event
}

func TestHandleEventCreatesAndSubmitsTask(t *testing.T) {
	t.Parallel()

	sessionID := uuid.New()
	embeddingTask := newStubEmbeddingTask(sessionID)
	factory := &mockTaskFactory{task: embeddingTask}
	submitter := &mockSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, handlerLogger())

	err := handler.HandleEvent(context.Background(), sessionEvent(t, sessionID.String()))

	require.NoError(t, err)
	assert.Equal(t, sessionID, factory.gotSessionID)
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, embeddingTask.ID(), submitter.submitted[0].ID())
}

func TestHandleEventIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()

	factory := &mockTaskFactory{}
	submitter := &mockSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, handlerLogger())

	event, err := events.NewTaskRequestEvent("unrelated_type", map[string]string{
		"session_id": uuid.New().String(),
	})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, factory.gotSessionID)
	assert.Empty(t, submitter.submitted)
}

func TestHandleEventInvalidSessionID(t *testing.T) {
	t.Parallel()

	handler := NewTaskFactoryEventHandler(&mockTaskFactory{}, &mockSubmitter{}, handlerLogger())

	err := handler.HandleEvent(context.Background(), sessionEvent(t, "not-a-uuid"))

	assert.ErrorContains(t, err, "invalid session ID")
}

func TestHandleEventFactoryFailure(t *testing.T) {
	t.Parallel()

	factory := &mockTaskFactory{err: errors.New("boom")}
	submitter := &mockSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, handlerLogger())

	err := handler.HandleEvent(context.Background(), sessionEvent(t, uuid.New().String()))

	assert.ErrorContains(t, err, "failed to create task")
	assert.Empty(t, submitter.submitted)
}

func TestHandleEventSubmitFailure(t *testing.T) {
	t.Parallel()

	factory := &mockTaskFactory{task: newStubEmbeddingTask(uuid.New())}
	submitter := &mockSubmitter{err: errors.New("queue full")}
	handler := NewTaskFactoryEventHandler(factory, submitter, handlerLogger())

	err := handler.HandleEvent(context.Background(), sessionEvent(t, uuid.New().String()))

	assert.ErrorContains(t, err, "failed to submit task")
}
