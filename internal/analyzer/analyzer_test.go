package analyzer

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentloop/tutor-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func learnerSays(text string) domain.TranscriptMessage {
	return domain.TranscriptMessage{Role: domain.RoleLearner, Text: text, Timestamp: time.Unix(0, 0)}
}

func tutorSays(text string) domain.TranscriptMessage {
	return domain.TranscriptMessage{Role: domain.RoleTutor, Text: text, Timestamp: time.Unix(0, 0)}
}

func analyzerCurriculum() domain.LanguageCurriculum {
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
					{Term: "gracias", Translation: "thank you"},
				},
			},
			{
				ID:    2,
				Title: "Café",
				Level: domain.LevelBeginner,
				Grammar: []domain.GrammarPoint{
					{Name: "querer-present", Explanation: "to want", Patterns: []string{"quiero", "quisiera"}},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "café", Translation: "coffee"},
				},
			},
		},
	}
}

func baseInput(transcript ...domain.TranscriptMessage) Input {
	return Input{
		Transcript:    transcript,
		Curriculum:    analyzerCurriculum(),
		HasCurriculum: true,
	}
}

func TestAnalyzeVerdicts(t *testing.T) {
	t.Parallel()

	a := New(DefaultCompletionPolicy(), testLogger())

	t.Run("first exposure is new, repeat is correct", func(t *testing.T) {
		t.Parallel()
		out := a.Analyze("es", baseInput(
			learnerSays("¡Hola!"),
			tutorSays("¡Hola! ¿Qué tal?"),
			learnerSays("Hola otra vez."),
		))

		require.Len(t, out.VocabularyEvents, 2)
		assert.Equal(t, "hola", out.VocabularyEvents[0].Item)
		assert.Equal(t, domain.VerdictNew, out.VocabularyEvents[0].Verdict)
		assert.Equal(t, 0, out.VocabularyEvents[0].TurnIndex)
		assert.Equal(t, domain.VerdictCorrect, out.VocabularyEvents[1].Verdict)
		assert.Equal(t, 2, out.VocabularyEvents[1].TurnIndex)
	})

	t.Run("mastered item is correct, not new", func(t *testing.T) {
		t.Parallel()
		in := baseInput(learnerSays("Hola, profesor."))
		in.MasteredVocabulary = []domain.VocabularyItem{{Term: "hola", Translation: "hello"}}

		out := a.Analyze("es", in)
		require.Len(t, out.VocabularyEvents, 1)
		assert.Equal(t, domain.VerdictCorrect, out.VocabularyEvents[0].Verdict)
	})

	t.Run("prior session credit suppresses new", func(t *testing.T) {
		t.Parallel()
		in := baseInput(learnerSays("Hola."))
		in.PriorCredited = map[string]bool{"hola": true}

		out := a.Analyze("es", in)
		require.Len(t, out.VocabularyEvents, 1)
		assert.Equal(t, domain.VerdictCorrect, out.VocabularyEvents[0].Verdict)
	})

	t.Run("near miss is incorrect", func(t *testing.T) {
		t.Parallel()
		out := a.Analyze("es", baseInput(learnerSays("Muchas grasias.")))

		require.Len(t, out.VocabularyEvents, 1)
		assert.Equal(t, "gracias", out.VocabularyEvents[0].Item)
		assert.Equal(t, domain.VerdictIncorrect, out.VocabularyEvents[0].Verdict)
	})

	t.Run("tutor correction downgrades exact use", func(t *testing.T) {
		t.Parallel()
		out := a.Analyze("es", baseInput(
			learnerSays("Quiero un café."),
			tutorSays("Not quite — quiero works, but quisiera is more polite here."),
		))

		require.Len(t, out.GrammarEvents, 1)
		assert.Equal(t, "querer-present", out.GrammarEvents[0].Item)
		assert.Equal(t, domain.VerdictIncorrect, out.GrammarEvents[0].Verdict)
	})

	t.Run("grammar pattern detected by surface marker", func(t *testing.T) {
		t.Parallel()
		out := a.Analyze("es", baseInput(learnerSays("Yo soy estudiante.")))

		require.Len(t, out.GrammarEvents, 1)
		assert.Equal(t, "ser-present", out.GrammarEvents[0].Item)
		assert.Equal(t, domain.VerdictNew, out.GrammarEvents[0].Verdict)
	})

	t.Run("tutor turns are never classified", func(t *testing.T) {
		t.Parallel()
		out := a.Analyze("es", baseInput(tutorSays("Hola, quiero un café, gracias.")))
		assert.Empty(t, out.VocabularyEvents)
		assert.Empty(t, out.GrammarEvents)
	})
}

func TestAnalyzeHighlightsAndRecommendations(t *testing.T) {
	t.Parallel()

	a := New(DefaultCompletionPolicy(), testLogger())

	t.Run("breakthrough after an earlier miss", func(t *testing.T) {
		t.Parallel()
		out := a.Analyze("es", baseInput(
			learnerSays("Muchas grasias."),
			tutorSays("Se dice gracias."),
			learnerSays("¡Gracias!"),
		))

		assert.Contains(t, out.Highlights, "Needed correction on \"gracias\"")
		assert.Contains(t, out.Highlights, "Breakthrough: \"gracias\" used correctly after an earlier miss")
	})

	t.Run("recommends missed and unattempted focus items", func(t *testing.T) {
		t.Parallel()
		focus := analyzerCurriculum().Lessons[0]
		in := baseInput(learnerSays("Muchas grasias."))
		in.FocusLesson = &focus

		out := a.Analyze("es", in)

		require.NotEmpty(t, out.Recommendations)
		assert.Equal(t, "Reinforce \"gracias\": it gave trouble this session", out.Recommendations[0])
		assert.Contains(t, out.Recommendations, "Practice \"ser-present\" from lesson \"Greetings\"")
		assert.Contains(t, out.Recommendations, "Practice \"hola\" from lesson \"Greetings\"")
	})
}

func TestAnalyzeCompletions(t *testing.T) {
	t.Parallel()

	t.Run("full coverage completes the lesson", func(t *testing.T) {
		t.Parallel()
		a := New(DefaultCompletionPolicy(), testLogger())
		out := a.Analyze("es", baseInput(
			learnerSays("Hola, yo soy Ana. Gracias por la clase."),
		))

		assert.Equal(t, []int{1}, out.CompletedLessonIDs)
	})

	t.Run("partial coverage below threshold does not complete", func(t *testing.T) {
		t.Parallel()
		a := New(DefaultCompletionPolicy(), testLogger())
		out := a.Analyze("es", baseInput(learnerSays("Hola.")))

		assert.Empty(t, out.CompletedLessonIDs)
	})

	t.Run("relaxed threshold completes on partial coverage", func(t *testing.T) {
		t.Parallel()
		a := New(CompletionPolicy{Threshold: 0.3}, testLogger())
		out := a.Analyze("es", baseInput(learnerSays("Hola.")))

		assert.Contains(t, out.CompletedLessonIDs, 1)
	})

	t.Run("already-completed lessons are skipped", func(t *testing.T) {
		t.Parallel()
		a := New(DefaultCompletionPolicy(), testLogger())
		progress, err := domain.NewUserProgress(uuid.New(), "es")
		require.NoError(t, err)
		progress.AddCompleted(1)

		in := baseInput(learnerSays("Hola, yo soy Ana. Gracias."))
		in.Progress = progress

		out := a.Analyze("es", in)
		assert.Empty(t, out.CompletedLessonIDs)
	})

	t.Run("incorrect events never credit completion", func(t *testing.T) {
		t.Parallel()
		a := New(CompletionPolicy{Threshold: 0.3}, testLogger())
		out := a.Analyze("es", baseInput(learnerSays("Muchas grasias.")))

		assert.Empty(t, out.CompletedLessonIDs)
	})
}

func TestAnalyzeWithoutCurriculum(t *testing.T) {
	t.Parallel()

	a := New(DefaultCompletionPolicy(), testLogger())

	in := Input{
		Transcript: []domain.TranscriptMessage{learnerSays("Hola, gracias.")},
		MasteredVocabulary: []domain.VocabularyItem{
			{Term: "hola", Translation: "hello"},
		},
	}

	out := a.Analyze("es", in)

	// Review inventory comes from mastered content only.
	require.Len(t, out.VocabularyEvents, 1)
	assert.Equal(t, "hola", out.VocabularyEvents[0].Item)
	assert.Equal(t, domain.VerdictCorrect, out.VocabularyEvents[0].Verdict)
	assert.Empty(t, out.CompletedLessonIDs)
}

func TestAnalyzeDeterministic(t *testing.T) {
	t.Parallel()

	a := New(DefaultCompletionPolicy(), testLogger())
	in := baseInput(
		learnerSays("Hola, yo soy Ana."),
		tutorSays("¡Muy bien!"),
		learnerSays("Quiero un café, grasias."),
	)

	first := a.Analyze("es", in)
	second := a.Analyze("es", in)

	assert.Equal(t, first, second)
}

func TestAnalyzeSummary(t *testing.T) {
	t.Parallel()

	a := New(DefaultCompletionPolicy(), testLogger())
	focus := analyzerCurriculum().Lessons[1]
	in := baseInput(
		learnerSays("Quiero un café."),
		tutorSays("¡Perfecto!"),
	)
	in.FocusLesson = &focus

	out := a.Analyze("es", in)

	assert.Equal(t,
		`1-turn Spanish session focused on lesson "Café": 1 vocabulary and 1 grammar usages (0 correct, 0 needing work, 2 new).`,
		out.Summary)
}
