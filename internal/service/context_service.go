package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/config"
	"github.com/fluentloop/tutor-api/internal/curriculum"
	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/store"
)

// ContextOptions tune how the lesson context is assembled.
type ContextOptions struct {
	// CustomTopic, when set, overrides lesson selection entirely and
	// produces a free-conversation context.
	CustomTopic string

	// LessonID, when set, pins the focus lesson instead of resolving
	// the learner's next uncompleted one.
	LessonID *int

	// UseCurriculum disables curriculum-driven lesson selection when
	// explicitly false, yielding a review context. Nil means true.
	UseCurriculum *bool

	// SessionType forces the session flavor. A review request skips
	// lesson selection; a custom request requires CustomTopic.
	SessionType domain.SessionType
}

// wantsCurriculum reports whether lesson selection should run.
func (o ContextOptions) wantsCurriculum() bool {
	return o.UseCurriculum == nil || *o.UseCurriculum
}

// ContextService assembles the per-session lesson context handed to
// the tutoring model.
type ContextService interface {
	// GenerateLessonContext builds the context for a new session. It is
	// read-only: no progress or analysis records are written.
	GenerateLessonContext(
		ctx context.Context,
		userID uuid.UUID,
		languageCode string,
		opts ContextOptions,
	) (*domain.LessonContext, error)
}

// contextServiceImpl implements the ContextService interface
type contextServiceImpl struct {
	registry      *curriculum.Registry
	resolver      *curriculum.Resolver
	progressStore store.ProgressStore
	analysisStore store.AnalysisStore
	cfg           config.AnalysisConfig
	logger        *slog.Logger
}

// NewContextService creates a new ContextService.
// It returns an error if any of the required dependencies are nil.
func NewContextService(
	registry *curriculum.Registry,
	resolver *curriculum.Resolver,
	progressStore store.ProgressStore,
	analysisStore store.AnalysisStore,
	cfg config.AnalysisConfig,
	logger *slog.Logger,
) (ContextService, error) {
	if registry == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "registry cannot be nil"}
	}
	if resolver == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "resolver cannot be nil"}
	}
	if progressStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "progressStore cannot be nil"}
	}
	if analysisStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "analysisStore cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &contextServiceImpl{
		registry:      registry,
		resolver:      resolver,
		progressStore: progressStore,
		analysisStore: analysisStore,
		cfg:           cfg,
		logger:        logger.With("component", "context_service"),
	}, nil
}

// GenerateLessonContext builds the context for a new session.
//
// A learner without a progress record is treated as starting from
// zero. An unregistered language still yields a usable review context
// rather than an error, so new languages degrade gracefully.
func (s *contextServiceImpl) GenerateLessonContext(
	ctx context.Context,
	userID uuid.UUID,
	languageCode string,
	opts ContextOptions,
) (*domain.LessonContext, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}
	if languageCode == "" {
		return nil, fmt.Errorf("%w: language code cannot be empty", ErrInvalidInput)
	}
	switch opts.SessionType {
	case "", domain.SessionTypeLesson, domain.SessionTypeReview, domain.SessionTypeCustom:
	default:
		return nil, fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, opts.SessionType)
	}
	if opts.SessionType == domain.SessionTypeCustom && opts.CustomTopic == "" {
		return nil, fmt.Errorf("%w: a custom session requires a custom topic", ErrInvalidInput)
	}

	progress, err := s.loadProgress(ctx, userID, languageCode)
	if err != nil {
		return nil, NewServiceError("generate_context", "failed to load progress", err)
	}

	masteredGrammar, masteredVocabulary, err := s.resolver.MasteredContent(languageCode, progress)
	if err != nil {
		return nil, NewServiceError("generate_context", "failed to resolve mastered content", err)
	}

	highlights, recommendations, err := s.recentSignals(ctx, userID, languageCode)
	if err != nil {
		return nil, NewServiceError("generate_context", "failed to load recent analyses", err)
	}

	lessonContext := &domain.LessonContext{
		LanguageCode:       languageCode,
		LanguageName:       s.languageName(languageCode),
		MasteredGrammar:    masteredGrammar,
		MasteredVocabulary: masteredVocabulary,
		Highlights:         highlights,
		Recommendations:    recommendations,
	}

	switch {
	case opts.CustomTopic != "":
		lessonContext.SessionType = domain.SessionTypeCustom
		lessonContext.CustomTopic = opts.CustomTopic

	case opts.SessionType == domain.SessionTypeReview || !opts.wantsCurriculum():
		lessonContext.SessionType = domain.SessionTypeReview

	case opts.LessonID != nil:
		lesson, err := s.registry.GetLesson(languageCode, *opts.LessonID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, fmt.Errorf("%w: lesson %d in language %q",
					ErrLessonNotFound, *opts.LessonID, languageCode)
			}
			return nil, NewServiceError("generate_context", "failed to look up pinned lesson", err)
		}
		lessonContext.SessionType = domain.SessionTypeLesson
		lessonContext.FocusLesson = &lesson

	default:
		lesson, err := s.resolver.NextLesson(languageCode, progress)
		if err != nil {
			return nil, NewServiceError("generate_context", "failed to resolve next lesson", err)
		}
		if lesson != nil {
			lessonContext.SessionType = domain.SessionTypeLesson
			lessonContext.FocusLesson = lesson
		} else {
			// Curriculum exhausted or not registered.
			lessonContext.SessionType = domain.SessionTypeReview
		}
	}

	s.logger.DebugContext(ctx, "generated lesson context",
		"user_id", userID,
		"language_code", languageCode,
		"session_type", lessonContext.SessionType,
		"mastered_grammar", len(masteredGrammar),
		"mastered_vocabulary", len(masteredVocabulary))

	return lessonContext, nil
}

// loadProgress fetches the learner's progress, mapping a missing
// record to a fresh zero-completion one.
func (s *contextServiceImpl) loadProgress(
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

// recentSignals gathers capped highlight and recommendation lists from
// the learner's most recent analyses, newest first.
func (s *contextServiceImpl) recentSignals(
	ctx context.Context,
	userID uuid.UUID,
	languageCode string,
) ([]string, []string, error) {
	analyses, err := s.analysisStore.ListRecent(ctx, userID, languageCode, s.cfg.LookbackSessions)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var highlights, recommendations []string
	for _, analysis := range analyses {
		for _, h := range analysis.Highlights {
			if len(highlights) < s.cfg.MaxHighlights {
				highlights = append(highlights, h)
			}
		}
		for _, r := range analysis.Recommendations {
			if len(recommendations) < s.cfg.MaxRecommendations {
				recommendations = append(recommendations, r)
			}
		}
	}

	return highlights, recommendations, nil
}

func (s *contextServiceImpl) languageName(languageCode string) string {
	c, err := s.registry.Get(languageCode)
	if err != nil {
		return ""
	}
	return c.LanguageName
}
