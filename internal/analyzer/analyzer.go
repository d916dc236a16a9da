package analyzer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fluentloop/tutor-api/internal/domain"
)

// correctionMarkers are phrases in a tutor turn that signal the tutor
// corrected the learner's immediately preceding usage.
var correctionMarkers = []string{
	"not quite",
	"almost",
	"actually",
	"careful",
	"we say",
	"should be",
	"instead",
	"remember",
	"correct way",
}

// maxRecommendations bounds the recommendation list stored per
// analysis so repeated weak sessions cannot grow it without limit.
const maxRecommendations = 10

// Input carries everything the analyzer needs to classify one
// transcript. The service layer assembles it from the registry, the
// mastery resolver, and the learner's stored history so the analyzer
// itself stays a pure computation.
type Input struct {
	Transcript []domain.TranscriptMessage

	// Curriculum is the language's catalog; HasCurriculum is false
	// when none is registered, in which case classification runs
	// against mastered content only.
	Curriculum    domain.LanguageCurriculum
	HasCurriculum bool

	// FocusLesson is the lesson this session presumably targeted
	// (the learner's next uncompleted lesson). May be nil.
	FocusLesson *domain.Lesson

	// MasteredGrammar and MasteredVocabulary are the learner's
	// mastered items, used both as review inventory and as credit
	// toward lesson completion.
	MasteredGrammar    []domain.GrammarPoint
	MasteredVocabulary []domain.VocabularyItem

	// PriorCredited holds item identity keys credited (correct or
	// new) in prior sessions within the lookback window.
	PriorCredited map[string]bool

	// Progress is the learner's current progress; nil means no
	// lessons completed yet.
	Progress *domain.UserProgress
}

// Output is the computed analysis content plus the lessons newly
// judged complete under the active completion policy.
type Output struct {
	VocabularyEvents   []domain.UsageEvent
	GrammarEvents      []domain.UsageEvent
	Summary            string
	Highlights         []string
	Recommendations    []string
	CompletedLessonIDs []int
}

// Analyzer classifies session transcripts. It is safe for concurrent
// use once matchers are registered.
type Analyzer struct {
	policy   CompletionPolicy
	fallback Matcher
	matchers map[string]Matcher
	logger   *slog.Logger
}

// New creates an Analyzer using the default word matcher for every
// language. Language-specific matchers (e.g. the Japanese
// morphological matcher) are attached with RegisterMatcher during
// application wiring, before any request is served.
func New(policy CompletionPolicy, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		policy:   policy,
		fallback: NewWordMatcher(),
		matchers: make(map[string]Matcher),
		logger:   logger.With("component", "transcript_analyzer"),
	}
}

// RegisterMatcher attaches a language-specific matcher. Not safe to
// call concurrently with Analyze; wiring happens at startup.
func (a *Analyzer) RegisterMatcher(languageCode string, m Matcher) {
	a.matchers[languageCode] = m
}

func (a *Analyzer) matcherFor(languageCode string) Matcher {
	if m, ok := a.matchers[languageCode]; ok {
		return m
	}
	return a.fallback
}

// Analyze walks the ordered transcript once and produces the full
// analysis content. It is deterministic: identical input always
// yields an identical Output.
func (a *Analyzer) Analyze(languageCode string, in Input) Output {
	matcher := a.matcherFor(languageCode)

	vocabulary, grammar := a.inventory(in)
	mastered := masteredKeys(in.MasteredGrammar, in.MasteredVocabulary)

	var out Output
	seen := make(map[string]bool)        // item emitted at least once this session
	creditedNow := make(map[string]bool) // correct or new this session
	missed := make(map[string]bool)      // incorrect at least once this session
	var breakthroughs []string

	for i, msg := range in.Transcript {
		if msg.Role != domain.RoleLearner {
			continue
		}

		for _, item := range vocabulary {
			kind := matcher.MatchTerm(msg.Text, item.Term)
			if kind == MatchNone {
				continue
			}
			verdict := a.classify(kind, item.Term, item.Term, i, in, matcher, mastered, seen)
			out.VocabularyEvents = append(out.VocabularyEvents, domain.UsageEvent{
				Item:      item.Term,
				TurnIndex: i,
				Verdict:   verdict,
			})
			a.tally(item.Term, verdict, seen, creditedNow, missed, &breakthroughs, &out)
		}

		for _, point := range grammar {
			if !a.grammarUsed(matcher, msg.Text, point) {
				continue
			}
			verdict := a.classify(MatchExact, point.Name, grammarMention(point), i, in, matcher, mastered, seen)
			out.GrammarEvents = append(out.GrammarEvents, domain.UsageEvent{
				Item:      point.Name,
				TurnIndex: i,
				Verdict:   verdict,
			})
			a.tally(point.Name, verdict, seen, creditedNow, missed, &breakthroughs, &out)
		}
	}

	out.Highlights = append(out.Highlights, breakthroughs...)
	out.Recommendations = a.recommend(in, creditedNow, missed, seen)
	out.Summary = a.summarize(languageCode, in, out)
	out.CompletedLessonIDs = a.completions(in, mastered, creditedNow)

	return out
}

// inventory collects the curriculum's vocabulary and grammar items in
// curriculum order, deduplicated by identity key, plus mastered items
// not present in the curriculum (review inventory).
func (a *Analyzer) inventory(in Input) ([]domain.VocabularyItem, []domain.GrammarPoint) {
	var vocabulary []domain.VocabularyItem
	var grammar []domain.GrammarPoint
	seenVocab := make(map[string]bool)
	seenGrammar := make(map[string]bool)

	if in.HasCurriculum {
		for _, lesson := range in.Curriculum.Lessons {
			for _, v := range lesson.Vocabulary {
				if !seenVocab[v.Term] {
					seenVocab[v.Term] = true
					vocabulary = append(vocabulary, v)
				}
			}
			for _, g := range lesson.Grammar {
				if !seenGrammar[g.Name] {
					seenGrammar[g.Name] = true
					grammar = append(grammar, g)
				}
			}
		}
	}

	for _, v := range in.MasteredVocabulary {
		if !seenVocab[v.Term] {
			seenVocab[v.Term] = true
			vocabulary = append(vocabulary, v)
		}
	}
	for _, g := range in.MasteredGrammar {
		if !seenGrammar[g.Name] {
			seenGrammar[g.Name] = true
			grammar = append(grammar, g)
		}
	}

	return vocabulary, grammar
}

// classify derives the verdict for one matched occurrence. A near
// miss is incorrect. An exact use is downgraded to incorrect when the
// immediately following tutor turn both carries a correction marker
// and re-mentions the item. Otherwise the first-ever exposure is new
// and everything else is correct.
func (a *Analyzer) classify(
	kind MatchKind,
	key, mention string,
	turnIndex int,
	in Input,
	matcher Matcher,
	mastered map[string]bool,
	seen map[string]bool,
) domain.UsageVerdict {
	if kind == MatchNear {
		return domain.VerdictIncorrect
	}

	if next := turnIndex + 1; next < len(in.Transcript) {
		reply := in.Transcript[next]
		if reply.Role == domain.RoleTutor &&
			hasCorrectionMarker(reply.Text) &&
			matcher.ContainsPattern(reply.Text, mention) {
			return domain.VerdictIncorrect
		}
	}

	if !mastered[key] && !in.PriorCredited[key] && !seen[key] {
		return domain.VerdictNew
	}
	return domain.VerdictCorrect
}

// grammarUsed reports whether any of the grammar point's surface
// patterns occur in the turn.
func (a *Analyzer) grammarUsed(matcher Matcher, turnText string, point domain.GrammarPoint) bool {
	for _, pattern := range point.Patterns {
		if matcher.ContainsPattern(turnText, pattern) {
			return true
		}
	}
	return false
}

// grammarMention picks the representative surface string a tutor
// correction would repeat for a grammar point.
func grammarMention(point domain.GrammarPoint) string {
	if len(point.Patterns) > 0 {
		return point.Patterns[0]
	}
	return point.Name
}

// tally updates per-session bookkeeping after emitting an event and
// records highlight lines for notable moments.
func (a *Analyzer) tally(
	key string,
	verdict domain.UsageVerdict,
	seen, creditedNow, missed map[string]bool,
	breakthroughs *[]string,
	out *Output,
) {
	switch verdict {
	case domain.VerdictNew:
		creditedNow[key] = true
		out.Highlights = append(out.Highlights, fmt.Sprintf("First use of %q", key))
	case domain.VerdictCorrect:
		if missed[key] && !creditedNow[key] {
			*breakthroughs = append(*breakthroughs,
				fmt.Sprintf("Breakthrough: %q used correctly after an earlier miss", key))
		}
		creditedNow[key] = true
	case domain.VerdictIncorrect:
		if !missed[key] {
			out.Highlights = append(out.Highlights, fmt.Sprintf("Needed correction on %q", key))
		}
		missed[key] = true
	}
	seen[key] = true
}

// recommend derives reinforcement suggestions: items that went wrong
// this session first, then focus-lesson items the learner never
// attempted.
func (a *Analyzer) recommend(in Input, creditedNow, missed, seen map[string]bool) []string {
	var recs []string
	added := make(map[string]bool)

	appendRec := func(text, key string) {
		if len(recs) >= maxRecommendations || added[key] {
			return
		}
		added[key] = true
		recs = append(recs, text)
	}

	// Deterministic order: walk the focus lesson, then the mastered
	// inventory, in their defined order.
	var orderedKeys []string
	if in.FocusLesson != nil {
		for _, g := range in.FocusLesson.Grammar {
			orderedKeys = append(orderedKeys, g.Name)
		}
		for _, v := range in.FocusLesson.Vocabulary {
			orderedKeys = append(orderedKeys, v.Term)
		}
	}
	for _, g := range in.MasteredGrammar {
		orderedKeys = append(orderedKeys, g.Name)
	}
	for _, v := range in.MasteredVocabulary {
		orderedKeys = append(orderedKeys, v.Term)
	}

	for _, key := range orderedKeys {
		if missed[key] && !creditedNow[key] {
			appendRec(fmt.Sprintf("Reinforce %q: it gave trouble this session", key), key)
		}
	}

	if in.FocusLesson != nil {
		for _, g := range in.FocusLesson.Grammar {
			if !seen[g.Name] {
				appendRec(fmt.Sprintf("Practice %q from lesson %q", g.Name, in.FocusLesson.Title), g.Name)
			}
		}
		for _, v := range in.FocusLesson.Vocabulary {
			if !seen[v.Term] {
				appendRec(fmt.Sprintf("Practice %q from lesson %q", v.Term, in.FocusLesson.Title), v.Term)
			}
		}
	}

	return recs
}

// summarize renders the deterministic session synopsis.
func (a *Analyzer) summarize(languageCode string, in Input, out Output) string {
	learnerTurns := 0
	for _, msg := range in.Transcript {
		if msg.Role == domain.RoleLearner {
			learnerTurns++
		}
	}

	language := languageCode
	if in.HasCurriculum && in.Curriculum.LanguageName != "" {
		language = in.Curriculum.LanguageName
	}

	focus := "general conversation practice"
	if in.FocusLesson != nil {
		focus = fmt.Sprintf("lesson %q", in.FocusLesson.Title)
	}

	correct, incorrect, fresh := 0, 0, 0
	for _, e := range append(append([]domain.UsageEvent{}, out.VocabularyEvents...), out.GrammarEvents...) {
		switch e.Verdict {
		case domain.VerdictCorrect:
			correct++
		case domain.VerdictIncorrect:
			incorrect++
		case domain.VerdictNew:
			fresh++
		}
	}

	return fmt.Sprintf(
		"%d-turn %s session focused on %s: %d vocabulary and %d grammar usages (%d correct, %d needing work, %d new).",
		learnerTurns, language, focus,
		len(out.VocabularyEvents), len(out.GrammarEvents),
		correct, incorrect, fresh,
	)
}

// completions returns the IDs of curriculum lessons newly judged
// complete under the policy, given credit from this session, prior
// sessions, and already-mastered content.
func (a *Analyzer) completions(in Input, mastered, creditedNow map[string]bool) []int {
	if !in.HasCurriculum {
		return nil
	}

	credited := func(item string) bool {
		return creditedNow[item] || mastered[item] || in.PriorCredited[item]
	}

	var completed []int
	for _, lesson := range in.Curriculum.Lessons {
		if in.Progress != nil && in.Progress.Completed(lesson.ID) {
			continue
		}
		if a.policy.Complete(lesson, credited) {
			completed = append(completed, lesson.ID)
		}
	}
	return completed
}

func masteredKeys(grammar []domain.GrammarPoint, vocabulary []domain.VocabularyItem) map[string]bool {
	keys := make(map[string]bool, len(grammar)+len(vocabulary))
	for _, g := range grammar {
		keys[g.Name] = true
	}
	for _, v := range vocabulary {
		keys[v.Term] = true
	}
	return keys
}

func hasCorrectionMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range correctionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
