package embedding

import (
	"fmt"
	"strings"

	"github.com/fluentloop/tutor-api/internal/domain"
)

// RenderAnalysisText flattens a session analysis into the text that
// gets embedded. The rendering is deterministic so re-running the
// pipeline for the same analysis produces the same vector input, and
// it carries no learner identifiers.
func RenderAnalysisText(analysis *domain.SessionAnalysis) string {
	var b strings.Builder

	b.WriteString(analysis.Summary)

	writeEvents(&b, "Vocabulary", analysis.VocabularyEvents)
	writeEvents(&b, "Grammar", analysis.GrammarEvents)

	if len(analysis.Highlights) > 0 {
		b.WriteString("\nHighlights: ")
		b.WriteString(strings.Join(analysis.Highlights, "; "))
	}
	if len(analysis.Recommendations) > 0 {
		b.WriteString("\nRecommendations: ")
		b.WriteString(strings.Join(analysis.Recommendations, "; "))
	}

	return b.String()
}

func writeEvents(b *strings.Builder, label string, events []domain.UsageEvent) {
	if len(events) == 0 {
		return
	}

	parts := make([]string, len(events))
	for i, e := range events {
		parts[i] = fmt.Sprintf("%s (%s)", e.Item, e.Verdict)
	}

	b.WriteString("\n")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(strings.Join(parts, ", "))
}
