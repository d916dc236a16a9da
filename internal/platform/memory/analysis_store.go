package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/store"
)

// AnalysisStore implements store.AnalysisStore backed by a map keyed
// by session ID.
type AnalysisStore struct {
	mu       sync.RWMutex
	analyses map[uuid.UUID]*domain.SessionAnalysis
}

// NewAnalysisStore creates an empty in-memory AnalysisStore.
func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{
		analyses: make(map[uuid.UUID]*domain.SessionAnalysis),
	}
}

// Upsert stores the analysis under its session ID, replacing any
// existing record for that session.
func (s *AnalysisStore) Upsert(_ context.Context, analysis *domain.SessionAnalysis) error {
	if err := analysis.Validate(); err != nil {
		return store.NewStoreError("analysis", "upsert", "invalid analysis", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[analysis.SessionID] = copyAnalysis(analysis)
	return nil
}

// GetBySessionID retrieves the analysis stored for the session.
func (s *AnalysisStore) GetBySessionID(
	_ context.Context,
	sessionID uuid.UUID,
) (*domain.SessionAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analysis, ok := s.analyses[sessionID]
	if !ok {
		return nil, store.ErrAnalysisNotFound
	}
	return copyAnalysis(analysis), nil
}

// ListRecent retrieves up to limit analyses for the user and language,
// most recent first.
func (s *AnalysisStore) ListRecent(
	_ context.Context,
	userID uuid.UUID,
	languageCode string,
	limit int,
) ([]*domain.SessionAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*domain.SessionAnalysis, 0)
	for _, analysis := range s.analyses {
		if analysis.UserID == userID && analysis.LanguageCode == languageCode {
			matches = append(matches, copyAnalysis(analysis))
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// WithTx returns the store unchanged; the in-memory store has no
// transaction support and each write is already atomic.
func (s *AnalysisStore) WithTx(_ *sql.Tx) store.AnalysisStore {
	return s
}

// DB reports that no database backs this store.
func (s *AnalysisStore) DB() *sql.DB {
	return nil
}

func copyAnalysis(a *domain.SessionAnalysis) *domain.SessionAnalysis {
	clone := *a
	clone.VocabularyEvents = append([]domain.UsageEvent(nil), a.VocabularyEvents...)
	clone.GrammarEvents = append([]domain.UsageEvent(nil), a.GrammarEvents...)
	clone.Highlights = append([]string(nil), a.Highlights...)
	clone.Recommendations = append([]string(nil), a.Recommendations...)
	return &clone
}
