package domain

import (
	"errors"
	"time"
)

// TranscriptRole identifies the speaker of a transcript turn.
type TranscriptRole string

// Possible transcript roles
const (
	RoleLearner TranscriptRole = "learner"
	RoleTutor   TranscriptRole = "tutor"
)

// Common validation errors for TranscriptMessage
var (
	ErrInvalidTranscriptRole = errors.New("invalid transcript role")
	ErrEmptyTranscriptText   = errors.New("transcript text cannot be empty")
)

// TranscriptMessage is one ordered turn of a tutoring session. It is
// immutable and supplied once per session when the transcript is
// submitted for processing.
type TranscriptMessage struct {
	Role      TranscriptRole `json:"role"`
	Text      string         `json:"text"`
	Timestamp time.Time      `json:"timestamp"`
}

// Validate checks if the TranscriptMessage has valid data.
func (m TranscriptMessage) Validate() error {
	if m.Role != RoleLearner && m.Role != RoleTutor {
		return ErrInvalidTranscriptRole
	}

	if m.Text == "" {
		return ErrEmptyTranscriptText
	}

	return nil
}
