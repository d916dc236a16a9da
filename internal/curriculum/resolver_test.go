package curriculum

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentloop/tutor-api/internal/domain"
)

func progressWith(t *testing.T, lessonIDs ...int) *domain.UserProgress {
	t.Helper()
	progress, err := domain.NewUserProgress(uuid.New(), "es")
	require.NoError(t, err)
	progress.AddCompleted(lessonIDs...)
	return progress
}

func TestResolverNextLesson(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	require.NoError(t, registry.Register(testCurriculum("es", 1, 2, 3)))
	resolver := NewResolver(registry)

	t.Run("returns first uncompleted lesson in order", func(t *testing.T) {
		t.Parallel()
		next, err := resolver.NextLesson("es", progressWith(t, 1))
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, 2, next.ID)
	})

	t.Run("skips completed lessons regardless of gaps", func(t *testing.T) {
		t.Parallel()
		next, err := resolver.NextLesson("es", progressWith(t, 1, 2))
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, 3, next.ID)
	})

	t.Run("nil progress means nothing completed", func(t *testing.T) {
		t.Parallel()
		next, err := resolver.NextLesson("es", nil)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, 1, next.ID)
	})

	t.Run("curriculum exhausted returns no lesson without error", func(t *testing.T) {
		t.Parallel()
		next, err := resolver.NextLesson("es", progressWith(t, 1, 2, 3))
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("unregistered language returns no lesson without error", func(t *testing.T) {
		t.Parallel()
		next, err := resolver.NextLesson("xx", progressWith(t, 1))
		require.NoError(t, err)
		assert.Nil(t, next)
	})
}

func TestResolverMasteredContent(t *testing.T) {
	t.Parallel()

	// Lessons 1 and 2 both introduce the grammar point "past-tense";
	// lesson 1's definition must win and appear exactly once.
	registry := NewRegistry()
	require.NoError(t, registry.Register(domain.LanguageCurriculum{
		LanguageCode: "es",
		LanguageName: "Spanish",
		Lessons: []domain.Lesson{
			{
				ID:    1,
				Title: "One",
				Level: domain.LevelBeginner,
				Grammar: []domain.GrammarPoint{
					{Name: "past-tense", Explanation: "from lesson one"},
					{Name: "articles", Explanation: "el/la"},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "hola", Translation: "hello"},
				},
			},
			{
				ID:    2,
				Title: "Two",
				Level: domain.LevelBeginner,
				Grammar: []domain.GrammarPoint{
					{Name: "past-tense", Explanation: "from lesson two"},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "hola", Translation: "hi (again)"},
					{Term: "adiós", Translation: "goodbye"},
				},
			},
			{
				ID:    3,
				Title: "Three",
				Level: domain.LevelElementary,
				Vocabulary: []domain.VocabularyItem{
					{Term: "gracias", Translation: "thanks"},
				},
			},
		},
	}))
	resolver := NewResolver(registry)

	t.Run("dedup by identity key keeps first-introduced definition", func(t *testing.T) {
		t.Parallel()
		grammar, vocabulary, err := resolver.MasteredContent("es", progressWith(t, 1, 2))
		require.NoError(t, err)

		require.Len(t, grammar, 2)
		assert.Equal(t, "past-tense", grammar[0].Name)
		assert.Equal(t, "from lesson one", grammar[0].Explanation)
		assert.Equal(t, "articles", grammar[1].Name)

		require.Len(t, vocabulary, 2)
		assert.Equal(t, "hola", vocabulary[0].Term)
		assert.Equal(t, "hello", vocabulary[0].Translation)
		assert.Equal(t, "adiós", vocabulary[1].Term)
	})

	t.Run("uncompleted lessons contribute nothing", func(t *testing.T) {
		t.Parallel()
		grammar, vocabulary, err := resolver.MasteredContent("es", progressWith(t, 3))
		require.NoError(t, err)
		assert.Empty(t, grammar)
		require.Len(t, vocabulary, 1)
		assert.Equal(t, "gracias", vocabulary[0].Term)
	})

	t.Run("unregistered language yields empty results not an error", func(t *testing.T) {
		t.Parallel()
		grammar, vocabulary, err := resolver.MasteredContent("xx", progressWith(t, 1))
		require.NoError(t, err)
		assert.Empty(t, grammar)
		assert.Empty(t, vocabulary)
	})

	t.Run("nil progress yields empty results", func(t *testing.T) {
		t.Parallel()
		grammar, vocabulary, err := resolver.MasteredContent("es", nil)
		require.NoError(t, err)
		assert.Empty(t, grammar)
		assert.Empty(t, vocabulary)
	})
}

func TestOrderedSet(t *testing.T) {
	t.Parallel()

	set := newOrderedSet[string]()
	assert.True(t, set.add("a", "first"))
	assert.True(t, set.add("b", "second"))
	assert.False(t, set.add("a", "shadowed"))

	assert.Equal(t, []string{"first", "second"}, set.values())
}
