package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// UsageVerdict classifies a single observed use of a vocabulary item
// or grammar point in a session transcript.
type UsageVerdict string

// Possible usage verdicts
const (
	// VerdictCorrect means the learner used the item accurately.
	VerdictCorrect UsageVerdict = "correct"

	// VerdictIncorrect means the learner attempted the item but the
	// usage was flawed or was corrected by the tutor.
	VerdictIncorrect UsageVerdict = "incorrect"

	// VerdictNew means the item appeared for the first time in the
	// learner's history.
	VerdictNew UsageVerdict = "new"
)

// Common validation errors for SessionAnalysis
var (
	ErrEmptySessionID        = errors.New("session ID cannot be empty")
	ErrEmptyAnalysisUserID   = errors.New("analysis user ID cannot be empty")
	ErrEmptyAnalysisLanguage = errors.New("analysis language code cannot be empty")
	ErrInvalidUsageVerdict   = errors.New("invalid usage verdict")
	ErrEmptyUsageItem        = errors.New("usage event item cannot be empty")
	ErrNegativeTurnIndex     = errors.New("usage event turn index cannot be negative")
)

// UsageEvent records one observed occurrence of a curriculum item in
// the transcript. Item is the identity key of the vocabulary term or
// grammar point; TurnIndex is the zero-based position of the learner
// turn it occurred in.
type UsageEvent struct {
	Item      string       `json:"item"`
	TurnIndex int          `json:"turn_index"`
	Verdict   UsageVerdict `json:"verdict"`
}

// Validate checks if the UsageEvent has valid data.
func (e UsageEvent) Validate() error {
	if e.Item == "" {
		return ErrEmptyUsageItem
	}

	if e.TurnIndex < 0 {
		return ErrNegativeTurnIndex
	}

	switch e.Verdict {
	case VerdictCorrect, VerdictIncorrect, VerdictNew:
	default:
		return ErrInvalidUsageVerdict
	}

	return nil
}

// SessionAnalysis is the durable outcome of analyzing one completed
// tutoring session. It is keyed by SessionID: storing an analysis for
// an existing session ID replaces the previous record rather than
// appending, which makes transcript reprocessing idempotent.
type SessionAnalysis struct {
	SessionID        uuid.UUID    `json:"session_id"`
	UserID           uuid.UUID    `json:"user_id"`
	LanguageCode     string       `json:"language_code"`
	ConversationID   uuid.UUID    `json:"conversation_id"`
	VocabularyEvents []UsageEvent `json:"vocabulary_events"`
	GrammarEvents    []UsageEvent `json:"grammar_events"`
	Summary          string       `json:"summary"`
	Highlights       []string     `json:"highlights"`
	Recommendations  []string     `json:"recommendations"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NewSessionAnalysis creates a SessionAnalysis shell for the given
// identifiers with the creation timestamp set. Event and narrative
// fields are filled in by the analyzer. Returns an error if validation
// fails.
func NewSessionAnalysis(
	sessionID, userID, conversationID uuid.UUID,
	languageCode string,
) (*SessionAnalysis, error) {
	analysis := &SessionAnalysis{
		SessionID:        sessionID,
		UserID:           userID,
		LanguageCode:     languageCode,
		ConversationID:   conversationID,
		VocabularyEvents: []UsageEvent{},
		GrammarEvents:    []UsageEvent{},
		Highlights:       []string{},
		Recommendations:  []string{},
		CreatedAt:        time.Now().UTC(),
	}

	if err := analysis.Validate(); err != nil {
		return nil, err
	}

	return analysis, nil
}

// Validate checks if the SessionAnalysis has valid data.
func (a *SessionAnalysis) Validate() error {
	if a.SessionID == uuid.Nil {
		return ErrEmptySessionID
	}

	if a.UserID == uuid.Nil {
		return ErrEmptyAnalysisUserID
	}

	if a.LanguageCode == "" {
		return ErrEmptyAnalysisLanguage
	}

	for _, e := range a.VocabularyEvents {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	for _, e := range a.GrammarEvents {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	return nil
}
