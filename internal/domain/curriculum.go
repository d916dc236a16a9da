package domain

import (
	"errors"
)

// LessonLevel represents the difficulty band of a lesson.
type LessonLevel string

// Possible lesson level values, ordered from easiest to hardest.
const (
	LevelBeginner          LessonLevel = "beginner"
	LevelElementary        LessonLevel = "elementary"
	LevelIntermediate      LessonLevel = "intermediate"
	LevelUpperIntermediate LessonLevel = "upper_intermediate"
	LevelAdvanced          LessonLevel = "advanced"
	LevelMastery           LessonLevel = "mastery"
)

// Common validation errors for curriculum entities
var (
	ErrEmptyLanguageCode   = errors.New("language code cannot be empty")
	ErrEmptyLanguageName   = errors.New("language name cannot be empty")
	ErrNoLessons           = errors.New("curriculum must contain at least one lesson")
	ErrDuplicateLessonID   = errors.New("lesson IDs must be unique within a curriculum")
	ErrInvalidLessonID     = errors.New("lesson ID must be positive")
	ErrEmptyLessonTitle    = errors.New("lesson title cannot be empty")
	ErrInvalidLessonLevel  = errors.New("invalid lesson level")
	ErrEmptyGrammarName    = errors.New("grammar point name cannot be empty")
	ErrEmptyVocabularyTerm = errors.New("vocabulary term cannot be empty")
)

// GrammarPoint is a single grammar construct taught by a lesson.
// Name is the identity key used for mastery deduplication. Patterns
// lists surface markers the transcript analyzer looks for to detect
// usage of the construct in learner speech.
type GrammarPoint struct {
	Name        string   `json:"name"`
	Explanation string   `json:"explanation"`
	Patterns    []string `json:"patterns,omitempty"`
}

// Validate checks the grammar point's required fields.
func (g GrammarPoint) Validate() error {
	if g.Name == "" {
		return ErrEmptyGrammarName
	}
	return nil
}

// VocabularyItem is a single word or phrase taught by a lesson.
// Term is the identity key used for mastery deduplication.
type VocabularyItem struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
}

// Validate checks the vocabulary item's required fields.
func (v VocabularyItem) Validate() error {
	if v.Term == "" {
		return ErrEmptyVocabularyTerm
	}
	return nil
}

// Lesson is one unit of a language curriculum. The integer ID is unique
// within its curriculum and the curriculum's lesson order defines the
// canonical "next lesson" sequence.
type Lesson struct {
	ID                 int              `json:"id"`
	Title              string           `json:"title"`
	Level              LessonLevel      `json:"level"`
	Focus              string           `json:"focus"`
	Grammar            []GrammarPoint   `json:"grammar"`
	Vocabulary         []VocabularyItem `json:"vocabulary"`
	ConversationPrompt string           `json:"conversation_prompt"`
}

// Validate checks if the Lesson has valid data.
// Returns an error if any field fails validation.
func (l Lesson) Validate() error {
	if l.ID <= 0 {
		return ErrInvalidLessonID
	}

	if l.Title == "" {
		return ErrEmptyLessonTitle
	}

	if !isValidLessonLevel(l.Level) {
		return ErrInvalidLessonLevel
	}

	for _, g := range l.Grammar {
		if err := g.Validate(); err != nil {
			return err
		}
	}

	for _, v := range l.Vocabulary {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// LanguageCurriculum is the full ordered lesson catalog for one language.
// It is immutable after registration; consumers must not mutate the
// lesson slice.
type LanguageCurriculum struct {
	LanguageCode string   `json:"language_code"`
	LanguageName string   `json:"language_name"`
	Lessons      []Lesson `json:"lessons"`
}

// Validate checks if the LanguageCurriculum has valid data, including
// the uniqueness of lesson IDs within the curriculum.
func (c LanguageCurriculum) Validate() error {
	if c.LanguageCode == "" {
		return ErrEmptyLanguageCode
	}

	if c.LanguageName == "" {
		return ErrEmptyLanguageName
	}

	if len(c.Lessons) == 0 {
		return ErrNoLessons
	}

	seen := make(map[int]bool, len(c.Lessons))
	for _, lesson := range c.Lessons {
		if err := lesson.Validate(); err != nil {
			return err
		}
		if seen[lesson.ID] {
			return ErrDuplicateLessonID
		}
		seen[lesson.ID] = true
	}

	return nil
}

// Lesson returns the lesson with the given ID, or false if the
// curriculum does not contain it. Lookup is linear over the ordered
// lesson sequence.
func (c LanguageCurriculum) Lesson(id int) (Lesson, bool) {
	for _, lesson := range c.Lessons {
		if lesson.ID == id {
			return lesson, true
		}
	}
	return Lesson{}, false
}

// isValidLessonLevel checks if the given level is a valid LessonLevel.
func isValidLessonLevel(level LessonLevel) bool {
	switch level {
	case LevelBeginner, LevelElementary, LevelIntermediate,
		LevelUpperIntermediate, LevelAdvanced, LevelMastery:
		return true
	default:
		return false
	}
}
