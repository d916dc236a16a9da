package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for UserProgress
var (
	ErrEmptyProgressUserID   = errors.New("progress user ID cannot be empty")
	ErrEmptyProgressLanguage = errors.New("progress language code cannot be empty")
)

// UserProgress tracks which lessons a learner has completed for one
// language. Completion is membership-only; no ordering is implied by
// the slice. The transcript analyzer is the only writer, and writes
// always merge by set union so that concurrent session processing for
// the same user converges to the union of all completions.
type UserProgress struct {
	UserID             uuid.UUID `json:"user_id"`
	LanguageCode       string    `json:"language_code"`
	CompletedLessonIDs []int     `json:"completed_lesson_ids"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewUserProgress creates an empty progress record for the given user
// and language. Returns an error if validation fails.
func NewUserProgress(userID uuid.UUID, languageCode string) (*UserProgress, error) {
	progress := &UserProgress{
		UserID:             userID,
		LanguageCode:       languageCode,
		CompletedLessonIDs: []int{},
		UpdatedAt:          time.Now().UTC(),
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the UserProgress has valid data.
func (p *UserProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.LanguageCode == "" {
		return ErrEmptyProgressLanguage
	}

	return nil
}

// Completed reports whether the given lesson ID is in the completed set.
func (p *UserProgress) Completed(lessonID int) bool {
	for _, id := range p.CompletedLessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}

// AddCompleted merges the given lesson IDs into the completed set.
// Already-present IDs are ignored, so the operation is idempotent and
// commutative. Returns true if any new completion was recorded.
func (p *UserProgress) AddCompleted(lessonIDs ...int) bool {
	added := false
	for _, id := range lessonIDs {
		if !p.Completed(id) {
			p.CompletedLessonIDs = append(p.CompletedLessonIDs, id)
			added = true
		}
	}
	if added {
		p.UpdatedAt = time.Now().UTC()
	}
	return added
}
