package analyzer

import (
	"github.com/fluentloop/tutor-api/internal/domain"
)

// CompletionPolicy decides when a lesson counts as complete for a
// learner. The exact mastery rule is a product-calibration knob, so
// the threshold is configuration rather than a constant.
type CompletionPolicy struct {
	// Threshold is the fraction of a lesson's grammar and vocabulary
	// items that must be credited (used correctly or introduced as
	// new, in this or a prior session) before the lesson is marked
	// complete. 1.0 requires every item.
	Threshold float64
}

// DefaultCompletionPolicy requires full coverage of a lesson's items.
func DefaultCompletionPolicy() CompletionPolicy {
	return CompletionPolicy{Threshold: 1.0}
}

// Complete reports whether the lesson meets the policy given a
// predicate that says which item identity keys are credited. Lessons
// with no items are never auto-completed; there is nothing to observe
// in a transcript that could credit them.
func (p CompletionPolicy) Complete(lesson domain.Lesson, credited func(item string) bool) bool {
	total := len(lesson.Grammar) + len(lesson.Vocabulary)
	if total == 0 {
		return false
	}

	hit := 0
	for _, g := range lesson.Grammar {
		if credited(g.Name) {
			hit++
		}
	}
	for _, v := range lesson.Vocabulary {
		if credited(v.Term) {
			hit++
		}
	}

	return float64(hit)/float64(total) >= p.Threshold
}
