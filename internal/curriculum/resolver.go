package curriculum

import (
	"errors"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/store"
)

// Resolver derives mastery facts from the registry and a learner's
// progress. It holds no state of its own and is safe for concurrent
// use.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a Resolver reading from the given registry.
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// NextLesson returns the first lesson in curriculum order whose ID is
// not in the learner's completed set. The tie-break is strictly
// curriculum sequence order; there is no recency or difficulty
// weighting. Returns (nil, nil) when the curriculum is absent or
// every lesson is completed; exhaustion is not an error.
func (r *Resolver) NextLesson(languageCode string, progress *domain.UserProgress) (*domain.Lesson, error) {
	curriculum, err := r.registry.Get(languageCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	for _, lesson := range curriculum.Lessons {
		if progress == nil || !progress.Completed(lesson.ID) {
			next := lesson
			return &next, nil
		}
	}

	return nil, nil
}

// MasteredContent returns the grammar points and vocabulary items the
// learner has mastered, in first-introduced curriculum order. Items
// are deduplicated by identity key (grammar name, vocabulary term):
// when two completed lessons introduce the same key, the earlier
// lesson's definition wins. An absent curriculum yields empty slices,
// not an error; callers must tolerate a learner with no matching
// curriculum.
func (r *Resolver) MasteredContent(
	languageCode string,
	progress *domain.UserProgress,
) ([]domain.GrammarPoint, []domain.VocabularyItem, error) {
	grammar := newOrderedSet[domain.GrammarPoint]()
	vocabulary := newOrderedSet[domain.VocabularyItem]()

	curriculum, err := r.registry.Get(languageCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return grammar.values(), vocabulary.values(), nil
		}
		return nil, nil, err
	}

	if progress == nil {
		return grammar.values(), vocabulary.values(), nil
	}

	for _, lesson := range curriculum.Lessons {
		if !progress.Completed(lesson.ID) {
			continue
		}
		for _, g := range lesson.Grammar {
			grammar.add(g.Name, g)
		}
		for _, v := range lesson.Vocabulary {
			vocabulary.add(v.Term, v)
		}
	}

	return grammar.values(), vocabulary.values(), nil
}
