package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fluentloop/tutor-api/internal/api/shared"
	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/prompt"
	"github.com/fluentloop/tutor-api/internal/service"
)

// GenerateContextRequest represents the request body for generating a
// lesson context. LessonID pins a specific lesson; CustomTopic takes
// precedence over lesson selection entirely. UseCurriculum set to
// false (or SessionType "review") requests a review session with no
// new lesson material.
type GenerateContextRequest struct {
	LanguageCode  string `json:"language_code" validate:"required,min=2,max=16"`
	CustomTopic   string `json:"custom_topic,omitempty"`
	SessionType   string `json:"session_type,omitempty" validate:"omitempty,oneof=lesson review custom"`
	UseCurriculum *bool  `json:"use_curriculum,omitempty"`
	LessonID      *int   `json:"lesson_id,omitempty" validate:"omitempty,gt=0"`
}

// GenerateContextResponse carries the assembled context and the
// rendered system prompt for the tutoring model.
type GenerateContextResponse struct {
	Context *domain.LessonContext `json:"context"`
	Prompt  string                `json:"tutor_prompt"`
}

// ContextHandler handles lesson-context HTTP requests
type ContextHandler struct {
	contextService service.ContextService
	validator      *validator.Validate
}

// NewContextHandler creates a new ContextHandler
func NewContextHandler(contextService service.ContextService) *ContextHandler {
	return &ContextHandler{
		contextService: contextService,
		validator:      validator.New(),
	}
}

// GenerateContext handles POST /api/context/generate requests
func (h *ContextHandler) GenerateContext(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req GenerateContextRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	lessonContext, err := h.contextService.GenerateLessonContext(
		r.Context(),
		userID,
		req.LanguageCode,
		service.ContextOptions{
			CustomTopic:   req.CustomTopic,
			LessonID:      req.LessonID,
			UseCurriculum: req.UseCurriculum,
			SessionType:   domain.SessionType(req.SessionType),
		},
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := GenerateContextResponse{
		Context: lessonContext,
		Prompt:  prompt.BuildTutorPrompt(*lessonContext),
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
