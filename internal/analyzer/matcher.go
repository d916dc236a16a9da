package analyzer

import (
	"strings"
	"unicode"
)

// MatchKind classifies how a curriculum item relates to a learner turn.
type MatchKind int

const (
	// MatchNone means the item does not appear in the turn.
	MatchNone MatchKind = iota

	// MatchExact means the item appears in usable form.
	MatchExact

	// MatchNear means the learner attempted the item but produced a
	// close miss (typo-level distance), which the analyzer records as
	// an incorrect usage.
	MatchNear
)

// Matcher decides whether a vocabulary term or grammar pattern occurs
// in a learner turn. Implementations are language-specific; the
// default matcher works on case-folded words and suits space-delimited
// languages, while the Japanese matcher works on morphological base
// forms.
type Matcher interface {
	// MatchTerm reports how the vocabulary term relates to the turn text.
	MatchTerm(turnText, term string) MatchKind

	// ContainsPattern reports whether the grammar surface pattern
	// occurs in the turn text.
	ContainsPattern(turnText, pattern string) bool
}

// wordMatcher is the default Matcher for space-delimited languages.
// It matches multi-word terms by normalized substring containment and
// single words by whole-word comparison, flagging close misspellings
// as near matches.
type wordMatcher struct{}

// NewWordMatcher returns the default word-based matcher.
func NewWordMatcher() Matcher {
	return wordMatcher{}
}

func (wordMatcher) MatchTerm(turnText, term string) MatchKind {
	text := normalizeWords(turnText)
	want := normalizeWords(term)
	if want == "" {
		return MatchNone
	}

	// Multi-word terms match by phrase containment.
	if strings.Contains(want, " ") {
		if strings.Contains(" "+text+" ", " "+want+" ") {
			return MatchExact
		}
		return MatchNone
	}

	best := MatchNone
	for _, word := range strings.Fields(text) {
		if word == want {
			return MatchExact
		}
		if isNearMiss(word, want) {
			best = MatchNear
		}
	}
	return best
}

func (wordMatcher) ContainsPattern(turnText, pattern string) bool {
	text := normalizeWords(turnText)
	want := normalizeWords(pattern)
	if want == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+want+" ") ||
		strings.Contains(text, want)
}

// normalizeWords lowercases the text and strips punctuation so that
// matching is insensitive to casing and sentence boundaries.
func normalizeWords(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation becomes a separator rather than vanishing,
			// so "¿cómo?" still splits cleanly.
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isNearMiss reports whether got is a single-edit misspelling of want.
// Only words long enough to make a one-character slip meaningful are
// considered; short function words would produce too many false hits.
func isNearMiss(got, want string) bool {
	const minLen = 5
	if len([]rune(want)) < minLen || got == want {
		return false
	}
	return editDistance(got, want) == 1
}

// editDistance computes the Levenshtein distance between two words.
// Inputs are short (single words), so the quadratic algorithm is fine.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
