package curriculum

import (
	"fmt"
	"sync"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/store"
)

// Registry is the in-process catalog of language curricula. It is
// constructed once in application wiring and passed by reference to
// all consumers; there is no ambient global registry.
//
// Registration happens during startup. Afterwards the registry is
// effectively immutable and safe for unsynchronized concurrent reads,
// though all access goes through the lock for safety.
type Registry struct {
	mu        sync.RWMutex
	curricula map[string]domain.LanguageCurriculum
}

// NewRegistry creates an empty curriculum registry.
func NewRegistry() *Registry {
	return &Registry{
		curricula: make(map[string]domain.LanguageCurriculum),
	}
}

// Register adds or replaces the curriculum for its language code.
// Last write wins. Returns a validation error if the curriculum is
// malformed; invalid curricula are never stored.
func (r *Registry) Register(curriculum domain.LanguageCurriculum) error {
	if err := curriculum.Validate(); err != nil {
		return fmt.Errorf("invalid curriculum for %q: %w", curriculum.LanguageCode, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.curricula[curriculum.LanguageCode] = curriculum
	return nil
}

// Get returns the curriculum for the given language code.
// Returns store.ErrCurriculumNotFound if no curriculum is registered.
func (r *Registry) Get(languageCode string) (domain.LanguageCurriculum, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	curriculum, ok := r.curricula[languageCode]
	if !ok {
		return domain.LanguageCurriculum{}, fmt.Errorf(
			"%w: language %q", store.ErrCurriculumNotFound, languageCode)
	}
	return curriculum, nil
}

// GetLesson returns the lesson with the given ID from the language's
// curriculum. Returns store.ErrCurriculumNotFound if the language is
// unknown and store.ErrLessonNotFound if the curriculum has no lesson
// with that ID.
func (r *Registry) GetLesson(languageCode string, lessonID int) (domain.Lesson, error) {
	curriculum, err := r.Get(languageCode)
	if err != nil {
		return domain.Lesson{}, err
	}

	lesson, ok := curriculum.Lesson(lessonID)
	if !ok {
		return domain.Lesson{}, fmt.Errorf(
			"%w: lesson %d in language %q", store.ErrLessonNotFound, lessonID, languageCode)
	}
	return lesson, nil
}

// Languages returns the language codes with a registered curriculum.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.curricula))
	for code := range r.curricula {
		codes = append(codes, code)
	}
	return codes
}
