package domain

// SessionType distinguishes the flavor of tutoring session a context
// is generated for.
type SessionType string

// Possible session types
const (
	// SessionTypeLesson is a curriculum-driven session focused on the
	// learner's next uncompleted lesson.
	SessionTypeLesson SessionType = "lesson"

	// SessionTypeReview is the fallback when the curriculum is
	// exhausted or unavailable: the session revisits recent
	// recommendations instead of introducing new material.
	SessionTypeReview SessionType = "review"

	// SessionTypeCustom is a session driven by a caller-supplied topic
	// rather than the curriculum.
	SessionTypeCustom SessionType = "custom"
)

// LessonContext is the ephemeral context object computed for one
// tutoring session. It is assembled per call from the curriculum,
// the learner's progress, and recent session analyses, and is never
// persisted.
type LessonContext struct {
	LanguageCode       string           `json:"language_code"`
	LanguageName       string           `json:"language_name,omitempty"`
	SessionType        SessionType      `json:"session_type"`
	FocusLesson        *Lesson          `json:"focus_lesson,omitempty"`
	CustomTopic        string           `json:"custom_topic,omitempty"`
	MasteredGrammar    []GrammarPoint   `json:"mastered_grammar"`
	MasteredVocabulary []VocabularyItem `json:"mastered_vocabulary"`
	Highlights         []string         `json:"highlights"`
	Recommendations    []string         `json:"recommendations"`
}
