package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/analyzer"
	"github.com/fluentloop/tutor-api/internal/config"
	"github.com/fluentloop/tutor-api/internal/curriculum"
	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/events"
	"github.com/fluentloop/tutor-api/internal/store"
	"github.com/fluentloop/tutor-api/internal/task"
)

// ProcessSessionInput identifies a finished session and carries its
// transcript for analysis.
type ProcessSessionInput struct {
	SessionID      uuid.UUID
	UserID         uuid.UUID
	ConversationID uuid.UUID
	LanguageCode   string
	Transcript     []domain.TranscriptMessage
}

// SessionService turns finished session transcripts into stored
// analyses and progress updates.
type SessionService interface {
	// ProcessSessionTranscript analyzes the transcript, upserts the
	// session analysis, merges any newly completed lessons into the
	// learner's progress, and emits an embedding task event. The
	// analysis and progress writes are synchronous; embedding runs in
	// the background and its failures never reach this caller.
	ProcessSessionTranscript(ctx context.Context, in ProcessSessionInput) (*domain.SessionAnalysis, error)
}

// sessionServiceImpl implements the SessionService interface
type sessionServiceImpl struct {
	registry      *curriculum.Registry
	resolver      *curriculum.Resolver
	analyzer      *analyzer.Analyzer
	progressStore store.ProgressStore
	analysisStore store.AnalysisStore
	eventEmitter  events.EventEmitter
	cfg           config.AnalysisConfig
	logger        *slog.Logger
}

// NewSessionService creates a new SessionService.
// It returns an error if any of the required dependencies are nil.
func NewSessionService(
	registry *curriculum.Registry,
	resolver *curriculum.Resolver,
	transcriptAnalyzer *analyzer.Analyzer,
	progressStore store.ProgressStore,
	analysisStore store.AnalysisStore,
	eventEmitter events.EventEmitter,
	cfg config.AnalysisConfig,
	logger *slog.Logger,
) (SessionService, error) {
	if registry == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "registry cannot be nil"}
	}
	if resolver == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "resolver cannot be nil"}
	}
	if transcriptAnalyzer == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "analyzer cannot be nil"}
	}
	if progressStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "progressStore cannot be nil"}
	}
	if analysisStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "analysisStore cannot be nil"}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "eventEmitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionServiceImpl{
		registry:      registry,
		resolver:      resolver,
		analyzer:      transcriptAnalyzer,
		progressStore: progressStore,
		analysisStore: analysisStore,
		eventEmitter:  eventEmitter,
		cfg:           cfg,
		logger:        logger.With("component", "session_service"),
	}, nil
}

// ProcessSessionTranscript analyzes the transcript and persists the results.
//
// Re-processing the same session ID replaces the stored analysis and
// re-merges the same completions, so retries converge instead of
// duplicating state.
func (s *sessionServiceImpl) ProcessSessionTranscript(
	ctx context.Context,
	in ProcessSessionInput,
) (*domain.SessionAnalysis, error) {
	if err := validateProcessInput(in); err != nil {
		return nil, err
	}

	progress, err := s.loadProgress(ctx, in.UserID, in.LanguageCode)
	if err != nil {
		return nil, NewServiceError("process_session", "failed to load progress", err)
	}

	analyzerInput, err := s.assembleAnalyzerInput(ctx, in, progress)
	if err != nil {
		return nil, err
	}

	out := s.analyzer.Analyze(in.LanguageCode, analyzerInput)

	analysis, err := domain.NewSessionAnalysis(in.SessionID, in.UserID, in.ConversationID, in.LanguageCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	analysis.VocabularyEvents = out.VocabularyEvents
	analysis.GrammarEvents = out.GrammarEvents
	analysis.Summary = out.Summary
	analysis.Highlights = out.Highlights
	analysis.Recommendations = out.Recommendations

	if err := s.commitResults(ctx, analysis, in, out.CompletedLessonIDs); err != nil {
		return nil, NewServiceError("process_session", "failed to store session results", err)
	}

	if len(out.CompletedLessonIDs) > 0 {
		s.logger.InfoContext(ctx, "lessons completed",
			"user_id", in.UserID,
			"language_code", in.LanguageCode,
			"lesson_ids", out.CompletedLessonIDs)
	}

	s.emitEmbeddingEvent(ctx, in.SessionID)

	s.logger.InfoContext(ctx, "session transcript processed",
		"session_id", in.SessionID,
		"user_id", in.UserID,
		"language_code", in.LanguageCode,
		"vocabulary_events", len(out.VocabularyEvents),
		"grammar_events", len(out.GrammarEvents))

	return analysis, nil
}

// commitResults persists the analysis and the progress merge. When
// both stores share a database handle the two writes run in a single
// transaction, so a failed merge never leaves a stored analysis
// behind. Stores without a shared database (in-memory) fall back to
// sequential writes, which still converge on retry because the upsert
// replaces and the merge is a union.
func (s *sessionServiceImpl) commitResults(
	ctx context.Context,
	analysis *domain.SessionAnalysis,
	in ProcessSessionInput,
	completedLessonIDs []int,
) error {
	db := s.analysisStore.DB()
	if db != nil && db == s.progressStore.DB() {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			if err := s.analysisStore.WithTx(tx).Upsert(ctx, analysis); err != nil {
				return fmt.Errorf("failed to store session analysis: %w", err)
			}
			if len(completedLessonIDs) == 0 {
				return nil
			}
			if _, err := s.progressStore.WithTx(tx).MergeCompleted(
				ctx, in.UserID, in.LanguageCode, completedLessonIDs); err != nil {
				return fmt.Errorf("failed to merge completed lessons: %w", err)
			}
			return nil
		})
	}

	if err := s.analysisStore.Upsert(ctx, analysis); err != nil {
		return fmt.Errorf("failed to store session analysis: %w", err)
	}
	if len(completedLessonIDs) > 0 {
		if _, err := s.progressStore.MergeCompleted(
			ctx, in.UserID, in.LanguageCode, completedLessonIDs); err != nil {
			return fmt.Errorf("failed to merge completed lessons: %w", err)
		}
	}
	return nil
}

func validateProcessInput(in ProcessSessionInput) error {
	if in.SessionID == uuid.Nil {
		return fmt.Errorf("%w: session ID cannot be empty", ErrInvalidInput)
	}
	if in.UserID == uuid.Nil {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}
	if in.ConversationID == uuid.Nil {
		return fmt.Errorf("%w: conversation ID cannot be empty", ErrInvalidInput)
	}
	if in.LanguageCode == "" {
		return fmt.Errorf("%w: language code cannot be empty", ErrInvalidInput)
	}
	if len(in.Transcript) == 0 {
		return fmt.Errorf("%w: transcript cannot be empty", ErrInvalidInput)
	}
	for i, msg := range in.Transcript {
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("%w: transcript message %d: %v", ErrInvalidInput, i, err)
		}
	}
	return nil
}

// assembleAnalyzerInput gathers the curriculum, mastered content, and
// lookback credit the analyzer classifies against.
func (s *sessionServiceImpl) assembleAnalyzerInput(
	ctx context.Context,
	in ProcessSessionInput,
	progress *domain.UserProgress,
) (analyzer.Input, error) {
	input := analyzer.Input{
		Transcript: in.Transcript,
		Progress:   progress,
	}

	if c, err := s.registry.Get(in.LanguageCode); err == nil {
		input.Curriculum = c
		input.HasCurriculum = true
	} else if !store.IsNotFoundError(err) {
		return analyzer.Input{}, NewServiceError("process_session", "failed to load curriculum", err)
	}

	focus, err := s.resolver.NextLesson(in.LanguageCode, progress)
	if err != nil {
		return analyzer.Input{}, NewServiceError("process_session", "failed to resolve focus lesson", err)
	}
	input.FocusLesson = focus

	masteredGrammar, masteredVocabulary, err := s.resolver.MasteredContent(in.LanguageCode, progress)
	if err != nil {
		return analyzer.Input{}, NewServiceError("process_session", "failed to resolve mastered content", err)
	}
	input.MasteredGrammar = masteredGrammar
	input.MasteredVocabulary = masteredVocabulary

	priorCredited, err := s.priorCredited(ctx, in)
	if err != nil {
		return analyzer.Input{}, NewServiceError("process_session", "failed to load prior sessions", err)
	}
	input.PriorCredited = priorCredited

	return input, nil
}

// priorCredited collects item keys credited (correct or new) in the
// learner's recent sessions, excluding the session being processed so
// replays classify identically.
func (s *sessionServiceImpl) priorCredited(
	ctx context.Context,
	in ProcessSessionInput,
) (map[string]bool, error) {
	analyses, err := s.analysisStore.ListRecent(ctx, in.UserID, in.LanguageCode, s.cfg.LookbackSessions)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	credited := make(map[string]bool)
	for _, analysis := range analyses {
		if analysis.SessionID == in.SessionID {
			continue
		}
		for _, e := range analysis.VocabularyEvents {
			if e.Verdict == domain.VerdictCorrect || e.Verdict == domain.VerdictNew {
				credited[e.Item] = true
			}
		}
		for _, e := range analysis.GrammarEvents {
			if e.Verdict == domain.VerdictCorrect || e.Verdict == domain.VerdictNew {
				credited[e.Item] = true
			}
		}
	}

	return credited, nil
}

func (s *sessionServiceImpl) loadProgress(
	ctx context.Context,
	userID uuid.UUID,
	languageCode string,
) (*domain.UserProgress, error) {
	progress, err := s.progressStore.Get(ctx, userID, languageCode)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return domain.NewUserProgress(userID, languageCode)
		}
		return nil, err
	}
	return progress, nil
}

// emitEmbeddingEvent requests background embedding of the stored
// analysis. Emission problems degrade the background pipeline only;
// the processed session is already durable.
func (s *sessionServiceImpl) emitEmbeddingEvent(ctx context.Context, sessionID uuid.UUID) {
	payload := struct {
		SessionID uuid.UUID `json:"session_id"`
	}{SessionID: sessionID}

	event, err := events.NewTaskRequestEvent(task.TaskTypeSessionEmbedding, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create embedding event",
			"error", err,
			"session_id", sessionID)
		return
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit embedding event",
			"error", err,
			"session_id", sessionID,
			"event_id", event.ID)
	}
}
