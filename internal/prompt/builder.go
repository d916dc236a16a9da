// Package prompt renders a LessonContext into the instruction text
// handed to the tutoring model. Rendering is pure and deterministic:
// the same context value always produces byte-identical output, and
// no learner identifiers or secrets are embedded.
package prompt

import (
	"strings"
	"text/template"

	"github.com/fluentloop/tutor-api/internal/domain"
)

const tutorPromptTemplate = `You are a patient, encouraging voice tutor for {{ .Language }}. Speak mostly in {{ .Language }}, switching to English only to explain something the learner is stuck on.

{{- if eq .SessionType "custom" }}

Today's session is a free conversation about: {{ .CustomTopic }}.
Keep the conversation anchored to that topic and weave in vocabulary the learner already knows.
{{- else if .FocusLesson }}

Today's lesson is "{{ .FocusLesson.Title }}" ({{ .FocusLesson.Level }}): {{ .FocusLesson.Focus }}.
{{- if .FocusLesson.Grammar }}
Teach these grammar points:
{{- range .FocusLesson.Grammar }}
- {{ .Name }}: {{ .Explanation }}
{{- end }}
{{- end }}
{{- if .FocusLesson.Vocabulary }}
Introduce this vocabulary:
{{- range .FocusLesson.Vocabulary }}
- {{ .Term }} ({{ .Translation }})
{{- end }}
{{- end }}
{{- if .FocusLesson.ConversationPrompt }}
Suggested conversation scenario: {{ .FocusLesson.ConversationPrompt }}
{{- end }}
{{- else }}

This is a review session. Do not introduce new material; revisit what the learner already knows and shore up weak spots.
{{- end }}
{{- if .MasteredGrammar }}

The learner has already mastered these grammar points; use them freely, do not re-teach them:
{{ joinGrammar .MasteredGrammar }}
{{- end }}
{{- if .MasteredVocabulary }}

The learner already knows this vocabulary; use it freely, do not re-teach it:
{{ joinVocabulary .MasteredVocabulary }}
{{- end }}
{{- if .Highlights }}

Notable moments from recent sessions:
{{- range .Highlights }}
- {{ . }}
{{- end }}
{{- end }}
{{- if .Recommendations }}

Work these reinforcement points into the conversation naturally:
{{- range .Recommendations }}
- {{ . }}
{{- end }}
{{- end }}

Keep your turns short and conversational; this is a spoken session, not a lecture.
`

var tutorTemplate = template.Must(
	template.New("tutor_prompt").
		Funcs(template.FuncMap{
			"joinGrammar":    joinGrammar,
			"joinVocabulary": joinVocabulary,
		}).
		Parse(tutorPromptTemplate),
)

// promptData is the template's view of a LessonContext.
type promptData struct {
	Language           string
	SessionType        domain.SessionType
	FocusLesson        *domain.Lesson
	CustomTopic        string
	MasteredGrammar    []domain.GrammarPoint
	MasteredVocabulary []domain.VocabularyItem
	Highlights         []string
	Recommendations    []string
}

// BuildTutorPrompt renders the tutor-facing instruction for the given
// context. It performs no I/O and never fails: template execution over
// the fixed template and a plain data struct cannot error at runtime.
func BuildTutorPrompt(context domain.LessonContext) string {
	language := context.LanguageName
	if language == "" {
		language = context.LanguageCode
	}

	data := promptData{
		Language:           language,
		SessionType:        context.SessionType,
		FocusLesson:        context.FocusLesson,
		CustomTopic:        context.CustomTopic,
		MasteredGrammar:    context.MasteredGrammar,
		MasteredVocabulary: context.MasteredVocabulary,
		Highlights:         context.Highlights,
		Recommendations:    context.Recommendations,
	}

	var b strings.Builder
	if err := tutorTemplate.Execute(&b, data); err != nil {
		// Unreachable with the fixed template; guard anyway so a
		// future template edit cannot silently emit a half prompt.
		panic(err)
	}
	return b.String()
}

func joinGrammar(points []domain.GrammarPoint) string {
	names := make([]string, len(points))
	for i, g := range points {
		names[i] = g.Name
	}
	return strings.Join(names, ", ")
}

func joinVocabulary(items []domain.VocabularyItem) string {
	terms := make([]string, len(items))
	for i, v := range items {
		terms[i] = v.Term
	}
	return strings.Join(terms, ", ")
}
