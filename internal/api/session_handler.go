package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/api/shared"
	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/service"
)

// TranscriptMessageRequest is one turn of the session transcript.
type TranscriptMessageRequest struct {
	Role      string    `json:"role"      validate:"required,oneof=learner tutor"`
	Text      string    `json:"text"      validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// ProcessSessionRequest represents the request body for processing a
// finished session transcript. The user ID comes from the bearer
// token, never from the body.
type ProcessSessionRequest struct {
	SessionID      uuid.UUID                  `json:"session_id"      validate:"required"`
	ConversationID uuid.UUID                  `json:"conversation_id" validate:"required"`
	LanguageCode   string                     `json:"language_code"   validate:"required,min=2,max=16"`
	Transcript     []TranscriptMessageRequest `json:"transcript"      validate:"required,min=1,dive"`
}

// SessionAnalysisSummary is the caller-facing view of a stored
// analysis. Usage events stay internal; the caller gets counts.
type SessionAnalysisSummary struct {
	VocabularyCount int      `json:"vocabulary_count"`
	GrammarCount    int      `json:"grammar_count"`
	Summary         string   `json:"summary"`
	Highlights      []string `json:"highlights"`
	Recommendations []string `json:"recommendations"`
}

// ProcessSessionResponse carries the analysis summary back to the caller.
type ProcessSessionResponse struct {
	Success  bool                    `json:"success"`
	Analysis *SessionAnalysisSummary `json:"analysis"`
}

// SessionHandler handles session-processing HTTP requests
type SessionHandler struct {
	sessionService service.SessionService
	validator      *validator.Validate
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		validator:      validator.New(),
	}
}

// ProcessSession handles POST /api/sessions/process requests
func (h *SessionHandler) ProcessSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req ProcessSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	transcript := make([]domain.TranscriptMessage, 0, len(req.Transcript))
	for _, m := range req.Transcript {
		transcript = append(transcript, domain.TranscriptMessage{
			Role:      domain.TranscriptRole(m.Role),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		})
	}

	analysis, err := h.sessionService.ProcessSessionTranscript(r.Context(), service.ProcessSessionInput{
		SessionID:      req.SessionID,
		UserID:         userID,
		ConversationID: req.ConversationID,
		LanguageCode:   req.LanguageCode,
		Transcript:     transcript,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProcessSessionResponse{
		Success: true,
		Analysis: &SessionAnalysisSummary{
			VocabularyCount: len(analysis.VocabularyEvents),
			GrammarCount:    len(analysis.GrammarEvents),
			Summary:         analysis.Summary,
			Highlights:      analysis.Highlights,
			Recommendations: analysis.Recommendations,
		},
	})
}
