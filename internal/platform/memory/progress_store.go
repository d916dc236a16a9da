// Package memory provides in-memory store implementations used by
// tests and by local development without a database. All stores are
// safe for concurrent use.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/store"
)

type progressKey struct {
	userID       uuid.UUID
	languageCode string
}

// ProgressStore implements store.ProgressStore backed by a map.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[progressKey]*domain.UserProgress
}

// NewProgressStore creates an empty in-memory ProgressStore.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		records: make(map[progressKey]*domain.UserProgress),
	}
}

// Get retrieves the progress record for the given user and language.
func (s *ProgressStore) Get(
	_ context.Context,
	userID uuid.UUID,
	languageCode string,
) (*domain.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[progressKey{userID, languageCode}]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return copyProgress(record), nil
}

// MergeCompleted merges the given lesson IDs into the user's completed
// set, creating the record if it does not exist. Holding the lock for
// the whole read-modify-write makes concurrent merges serialize, so
// the final state is the union of all updates.
func (s *ProgressStore) MergeCompleted(
	_ context.Context,
	userID uuid.UUID,
	languageCode string,
	lessonIDs []int,
) (*domain.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{userID, languageCode}
	record, ok := s.records[key]
	if !ok {
		fresh, err := domain.NewUserProgress(userID, languageCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		record = fresh
		s.records[key] = record
	}

	record.AddCompleted(lessonIDs...)

	return copyProgress(record), nil
}

// WithTx returns the store unchanged; the in-memory store has no
// transaction support and each write is already atomic.
func (s *ProgressStore) WithTx(_ *sql.Tx) store.ProgressStore {
	return s
}

// DB reports that no database backs this store.
func (s *ProgressStore) DB() *sql.DB {
	return nil
}

func copyProgress(p *domain.UserProgress) *domain.UserProgress {
	clone := *p
	clone.CompletedLessonIDs = append([]int(nil), p.CompletedLessonIDs...)
	return &clone
}
