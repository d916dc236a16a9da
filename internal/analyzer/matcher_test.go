package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordMatcherMatchTerm(t *testing.T) {
	t.Parallel()

	m := NewWordMatcher()

	tests := []struct {
		name string
		text string
		term string
		want MatchKind
	}{
		{"exact single word", "Quiero un café, por favor.", "café", MatchExact},
		{"case and punctuation insensitive", "¡HOLA! ¿Cómo estás?", "hola", MatchExact},
		{"multi-word phrase", "Buenos días, señora.", "buenos días", MatchExact},
		{"phrase not split across words", "buenos amigos en muchos días", "buenos días", MatchNone},
		{"absent term", "No tengo nada que decir.", "gracias", MatchNone},
		{"single-edit misspelling is near", "Muchas grasias por todo.", "gracias", MatchNear},
		{"short words never near-match", "soy de aquí", "ser", MatchNone},
		{"distant word is not near", "Quiero pan.", "gracias", MatchNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, m.MatchTerm(tc.text, tc.term))
		})
	}
}

func TestWordMatcherContainsPattern(t *testing.T) {
	t.Parallel()

	m := NewWordMatcher()

	assert.True(t, m.ContainsPattern("Yo soy estudiante.", "soy"))
	assert.True(t, m.ContainsPattern("Me llamo Ana.", "me llamo"))
	assert.False(t, m.ContainsPattern("Ella es de Madrid.", "me llamo"))
}

func TestEditDistance(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, editDistance("hola", "hola"))
	assert.Equal(t, 1, editDistance("grasias", "gracias"))
	assert.Equal(t, 2, editDistance("keso", "queso"))
	assert.Equal(t, 4, editDistance("", "hola"))
}
