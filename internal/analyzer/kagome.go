package analyzer

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// japaneseMatcher matches vocabulary by morphological analysis rather
// than surface text: a conjugated form like 食べました still credits
// the dictionary entry 食べる. Grammar patterns are matched on the raw
// surface, since particles and endings (は, です, ください) are what
// the curriculum's patterns name.
type japaneseMatcher struct {
	t *tokenizer.Tokenizer
}

// NewJapaneseMatcher builds a Matcher backed by the kagome IPA
// dictionary. Construction loads the dictionary and can fail; callers
// should fall back to the default word matcher when it does.
func NewJapaneseMatcher() (Matcher, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &japaneseMatcher{t: t}, nil
}

func (m *japaneseMatcher) MatchTerm(turnText, term string) MatchKind {
	// Multi-token phrases (こんにちは, はじめまして) match by containment.
	if strings.Contains(turnText, term) {
		return MatchExact
	}

	for _, token := range m.t.Tokenize(turnText) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if token.Surface == term {
			return MatchExact
		}
		// IPA feature 6 is the base form (lemma).
		features := token.Features()
		if len(features) > 6 && features[6] != "*" && features[6] == term {
			return MatchExact
		}
	}
	return MatchNone
}

func (m *japaneseMatcher) ContainsPattern(turnText, pattern string) bool {
	return strings.Contains(turnText, pattern)
}
