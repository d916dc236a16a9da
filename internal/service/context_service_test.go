package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentloop/tutor-api/internal/config"
	"github.com/fluentloop/tutor-api/internal/curriculum"
	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/platform/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		CompletionThreshold: 1.0,
		LookbackSessions:    5,
		MaxHighlights:       3,
		MaxRecommendations:  3,
	}
}

func serviceCurriculum() domain.LanguageCurriculum {
	return domain.LanguageCurriculum{
		LanguageCode: "es",
		LanguageName: "Spanish",
		Lessons: []domain.Lesson{
			{
				ID:    1,
				Title: "Greetings",
				Level: domain.LevelBeginner,
				Grammar: []domain.GrammarPoint{
					{Name: "ser-present", Explanation: "to be", Patterns: []string{"soy"}},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "hola", Translation: "hello"},
				},
			},
			{
				ID:    2,
				Title: "Ordering",
				Level: domain.LevelBeginner,
				Grammar: []domain.GrammarPoint{
					{Name: "querer-present", Explanation: "to want", Patterns: []string{"quiero"}},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "café", Translation: "coffee"},
				},
			},
		},
	}
}

type contextFixture struct {
	registry      *curriculum.Registry
	progressStore *memory.ProgressStore
	analysisStore *memory.AnalysisStore
	service       ContextService
}

func newContextFixture(t *testing.T) *contextFixture {
	t.Helper()

	registry := curriculum.NewRegistry()
	require.NoError(t, registry.Register(serviceCurriculum()))

	progressStore := memory.NewProgressStore()
	analysisStore := memory.NewAnalysisStore()

	svc, err := NewContextService(
		registry,
		curriculum.NewResolver(registry),
		progressStore,
		analysisStore,
		testAnalysisConfig(),
		testLogger(),
	)
	require.NoError(t, err)

	return &contextFixture{
		registry:      registry,
		progressStore: progressStore,
		analysisStore: analysisStore,
		service:       svc,
	}
}

func TestGenerateLessonContextValidation(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)
	ctx := context.Background()

	_, err := f.service.GenerateLessonContext(ctx, uuid.Nil, "es", ContextOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.GenerateLessonContext(ctx, uuid.New(), "", ContextOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateLessonContextNewLearner(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)

	got, err := f.service.GenerateLessonContext(context.Background(), uuid.New(), "es", ContextOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionTypeLesson, got.SessionType)
	require.NotNil(t, got.FocusLesson)
	assert.Equal(t, 1, got.FocusLesson.ID)
	assert.Equal(t, "Spanish", got.LanguageName)
	assert.Empty(t, got.MasteredGrammar)
	assert.Empty(t, got.MasteredVocabulary)
}

func TestGenerateLessonContextWithProgress(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.progressStore.MergeCompleted(ctx, userID, "es", []int{1})
	require.NoError(t, err)

	got, err := f.service.GenerateLessonContext(ctx, userID, "es", ContextOptions{})
	require.NoError(t, err)

	require.NotNil(t, got.FocusLesson)
	assert.Equal(t, 2, got.FocusLesson.ID)
	require.Len(t, got.MasteredGrammar, 1)
	assert.Equal(t, "ser-present", got.MasteredGrammar[0].Name)
	require.Len(t, got.MasteredVocabulary, 1)
	assert.Equal(t, "hola", got.MasteredVocabulary[0].Term)
}

func TestGenerateLessonContextExhaustedCurriculum(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.progressStore.MergeCompleted(ctx, userID, "es", []int{1, 2})
	require.NoError(t, err)

	got, err := f.service.GenerateLessonContext(ctx, userID, "es", ContextOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionTypeReview, got.SessionType)
	assert.Nil(t, got.FocusLesson)
	assert.Len(t, got.MasteredGrammar, 2)
}

func TestGenerateLessonContextCustomTopic(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)

	got, err := f.service.GenerateLessonContext(
		context.Background(), uuid.New(), "es",
		ContextOptions{CustomTopic: "ordering tapas"})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionTypeCustom, got.SessionType)
	assert.Equal(t, "ordering tapas", got.CustomTopic)
	assert.Nil(t, got.FocusLesson)
}

func TestGenerateLessonContextWithoutCurriculum(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.progressStore.MergeCompleted(ctx, userID, "es", []int{1})
	require.NoError(t, err)

	useCurriculum := false
	got, err := f.service.GenerateLessonContext(ctx, userID, "es",
		ContextOptions{UseCurriculum: &useCurriculum})
	require.NoError(t, err)

	// No new lesson material, but mastered content still rides along.
	assert.Equal(t, domain.SessionTypeReview, got.SessionType)
	assert.Nil(t, got.FocusLesson)
	require.Len(t, got.MasteredGrammar, 1)
	assert.Equal(t, "ser-present", got.MasteredGrammar[0].Name)
}

func TestGenerateLessonContextSessionTypeOption(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)
	ctx := context.Background()

	t.Run("forced review skips lesson selection", func(t *testing.T) {
		got, err := f.service.GenerateLessonContext(ctx, uuid.New(), "es",
			ContextOptions{SessionType: domain.SessionTypeReview})
		require.NoError(t, err)

		assert.Equal(t, domain.SessionTypeReview, got.SessionType)
		assert.Nil(t, got.FocusLesson)
	})

	t.Run("explicit lesson type resolves normally", func(t *testing.T) {
		got, err := f.service.GenerateLessonContext(ctx, uuid.New(), "es",
			ContextOptions{SessionType: domain.SessionTypeLesson})
		require.NoError(t, err)

		assert.Equal(t, domain.SessionTypeLesson, got.SessionType)
		require.NotNil(t, got.FocusLesson)
		assert.Equal(t, 1, got.FocusLesson.ID)
	})

	t.Run("custom type without a topic is rejected", func(t *testing.T) {
		_, err := f.service.GenerateLessonContext(ctx, uuid.New(), "es",
			ContextOptions{SessionType: domain.SessionTypeCustom})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := f.service.GenerateLessonContext(ctx, uuid.New(), "es",
			ContextOptions{SessionType: domain.SessionType("cram")})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestGenerateLessonContextPinnedLesson(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)
	lessonID := 2

	got, err := f.service.GenerateLessonContext(
		context.Background(), uuid.New(), "es",
		ContextOptions{LessonID: &lessonID})
	require.NoError(t, err)

	require.NotNil(t, got.FocusLesson)
	assert.Equal(t, 2, got.FocusLesson.ID)

	missing := 99
	_, err = f.service.GenerateLessonContext(
		context.Background(), uuid.New(), "es",
		ContextOptions{LessonID: &missing})
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestGenerateLessonContextUnregisteredLanguage(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)

	got, err := f.service.GenerateLessonContext(context.Background(), uuid.New(), "fr", ContextOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionTypeReview, got.SessionType)
	assert.Nil(t, got.FocusLesson)
	assert.Empty(t, got.LanguageName)
	assert.Empty(t, got.MasteredGrammar)
}

func TestGenerateLessonContextCarriesRecentSignals(t *testing.T) {
	t.Parallel()

	f := newContextFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	older := &domain.SessionAnalysis{
		SessionID:       uuid.New(),
		UserID:          userID,
		LanguageCode:    "es",
		ConversationID:  uuid.New(),
		Summary:         "older",
		Highlights:      []string{"h3", "h4"},
		Recommendations: []string{"r3", "r4"},
		CreatedAt:       time.Now().UTC().Add(-time.Hour),
	}
	newer := &domain.SessionAnalysis{
		SessionID:       uuid.New(),
		UserID:          userID,
		LanguageCode:    "es",
		ConversationID:  uuid.New(),
		Summary:         "newer",
		Highlights:      []string{"h1", "h2"},
		Recommendations: []string{"r1", "r2"},
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, f.analysisStore.Upsert(ctx, older))
	require.NoError(t, f.analysisStore.Upsert(ctx, newer))

	got, err := f.service.GenerateLessonContext(ctx, userID, "es", ContextOptions{})
	require.NoError(t, err)

	// Newest session's signals come first; caps trim the rest.
	assert.Equal(t, []string{"h1", "h2", "h3"}, got.Highlights)
	assert.Equal(t, []string{"r1", "r2", "r3"}, got.Recommendations)
}
