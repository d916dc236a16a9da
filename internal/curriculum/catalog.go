package curriculum

import (
	"fmt"

	"github.com/fluentloop/tutor-api/internal/domain"
)

// RegisterBuiltins registers the built-in starter curricula. Called
// once from application wiring before the server starts serving
// requests.
func RegisterBuiltins(registry *Registry) error {
	for _, curriculum := range []domain.LanguageCurriculum{
		spanishCurriculum(),
		japaneseCurriculum(),
	} {
		if err := registry.Register(curriculum); err != nil {
			return fmt.Errorf("failed to register builtin curriculum: %w", err)
		}
	}
	return nil
}

func spanishCurriculum() domain.LanguageCurriculum {
	return domain.LanguageCurriculum{
		LanguageCode: "es",
		LanguageName: "Spanish",
		Lessons: []domain.Lesson{
			{
				ID:    1,
				Title: "Greetings and introductions",
				Level: domain.LevelBeginner,
				Focus: "Meeting people and saying who you are",
				Grammar: []domain.GrammarPoint{
					{
						Name:        "ser-present",
						Explanation: "Present tense of 'ser' for identity and origin",
						Patterns:    []string{"soy", "eres", "es de"},
					},
					{
						Name:        "llamarse",
						Explanation: "Reflexive 'llamarse' for stating names",
						Patterns:    []string{"me llamo", "se llama", "te llamas"},
					},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "hola", Translation: "hello"},
					{Term: "buenos días", Translation: "good morning"},
					{Term: "mucho gusto", Translation: "nice to meet you"},
					{Term: "adiós", Translation: "goodbye"},
				},
				ConversationPrompt: "You just moved in; introduce yourself to your new neighbor.",
			},
			{
				ID:    2,
				Title: "Ordering at a café",
				Level: domain.LevelBeginner,
				Focus: "Asking for food and drinks politely",
				Grammar: []domain.GrammarPoint{
					{
						Name:        "querer-present",
						Explanation: "Present tense of 'querer' for requests",
						Patterns:    []string{"quiero", "quieres", "quisiera"},
					},
					{
						Name:        "hay",
						Explanation: "'Hay' for availability and existence",
						Patterns:    []string{"hay"},
					},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "café", Translation: "coffee"},
					{Term: "la cuenta", Translation: "the bill"},
					{Term: "por favor", Translation: "please"},
					{Term: "gracias", Translation: "thank you"},
				},
				ConversationPrompt: "Order breakfast at a busy café in Madrid.",
			},
			{
				ID:    3,
				Title: "Getting around town",
				Level: domain.LevelElementary,
				Focus: "Directions and simple navigation",
				Grammar: []domain.GrammarPoint{
					{
						Name:        "estar-location",
						Explanation: "'Estar' for locations",
						Patterns:    []string{"está en", "estoy en", "dónde está"},
					},
					{
						Name:        "ir-present",
						Explanation: "Present tense of 'ir' for movement",
						Patterns:    []string{"voy a", "vas a", "va a"},
					},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "la estación", Translation: "the station"},
					{Term: "a la derecha", Translation: "to the right"},
					{Term: "a la izquierda", Translation: "to the left"},
					{Term: "cerca", Translation: "near"},
				},
				ConversationPrompt: "Ask a stranger how to get to the train station.",
			},
			{
				ID:    4,
				Title: "Talking about yesterday",
				Level: domain.LevelIntermediate,
				Focus: "Narrating past events with the preterite",
				Grammar: []domain.GrammarPoint{
					{
						Name:        "preterite-regular",
						Explanation: "Regular preterite endings for -ar/-er/-ir verbs",
						Patterns:    []string{"hablé", "comí", "viví", "ayer"},
					},
					{
						Name:        "ir-preterite",
						Explanation: "Irregular preterite of 'ir'",
						Patterns:    []string{"fui", "fuiste", "fue"},
					},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "ayer", Translation: "yesterday"},
					{Term: "anoche", Translation: "last night"},
					{Term: "la semana pasada", Translation: "last week"},
				},
				ConversationPrompt: "Tell your tutor what you did last weekend.",
			},
		},
	}
}

func japaneseCurriculum() domain.LanguageCurriculum {
	return domain.LanguageCurriculum{
		LanguageCode: "ja",
		LanguageName: "Japanese",
		Lessons: []domain.Lesson{
			{
				ID:    1,
				Title: "First meetings",
				Level: domain.LevelBeginner,
				Focus: "Polite self-introduction",
				Grammar: []domain.GrammarPoint{
					{
						Name:        "desu-copula",
						Explanation: "The polite copula です for stating facts",
						Patterns:    []string{"です"},
					},
					{
						Name:        "topic-wa",
						Explanation: "Topic marker は",
						Patterns:    []string{"は"},
					},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "こんにちは", Translation: "hello"},
					{Term: "はじめまして", Translation: "nice to meet you"},
					{Term: "学生", Translation: "student"},
				},
				ConversationPrompt: "Introduce yourself at a language exchange meetup.",
			},
			{
				ID:    2,
				Title: "Shopping basics",
				Level: domain.LevelBeginner,
				Focus: "Asking prices and buying things",
				Grammar: []domain.GrammarPoint{
					{
						Name:        "kudasai-request",
						Explanation: "〜をください for polite requests",
						Patterns:    []string{"ください"},
					},
					{
						Name:        "ikura",
						Explanation: "いくら for asking prices",
						Patterns:    []string{"いくら"},
					},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "高い", Translation: "expensive"},
					{Term: "安い", Translation: "cheap"},
					{Term: "お金", Translation: "money"},
				},
				ConversationPrompt: "Buy fruit at a small market stall.",
			},
			{
				ID:    3,
				Title: "Daily routines",
				Level: domain.LevelElementary,
				Focus: "Describing habits with time expressions",
				Grammar: []domain.GrammarPoint{
					{
						Name:        "masu-form",
						Explanation: "Polite non-past 〜ます for habitual actions",
						Patterns:    []string{"ます"},
					},
					{
						Name:        "time-ni",
						Explanation: "Time particle に",
						Patterns:    []string{"時に"},
					},
				},
				Vocabulary: []domain.VocabularyItem{
					{Term: "毎日", Translation: "every day"},
					{Term: "起きる", Translation: "to wake up"},
					{Term: "食べる", Translation: "to eat"},
				},
				ConversationPrompt: "Describe a typical weekday from morning to night.",
			},
		},
	}
}
