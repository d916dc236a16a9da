package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluentloop/tutor-api/internal/domain"
	"github.com/fluentloop/tutor-api/internal/service"
)

// stubSessionService returns a canned analysis or error.
type stubSessionService struct {
	analysis *domain.SessionAnalysis
	err      error

	gotInput service.ProcessSessionInput
}

func (s *stubSessionService) ProcessSessionTranscript(
	_ context.Context,
	in service.ProcessSessionInput,
) (*domain.SessionAnalysis, error) {
	s.gotInput = in
	if s.err != nil {
		return nil, s.err
	}
	return s.analysis, nil
}

func validSessionRequest() ProcessSessionRequest {
	return ProcessSessionRequest{
		SessionID:      uuid.New(),
		ConversationID: uuid.New(),
		LanguageCode:   "es",
		Transcript: []TranscriptMessageRequest{
			{Role: "learner", Text: "Hola, yo soy Ana.", Timestamp: time.Unix(0, 0)},
			{Role: "tutor", Text: "¡Muy bien!", Timestamp: time.Unix(1, 0)},
		},
	}
}

func TestProcessSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		reqBody := validSessionRequest()
		svc := &stubSessionService{
			analysis: &domain.SessionAnalysis{
				SessionID:    reqBody.SessionID,
				UserID:       userID,
				LanguageCode: "es",
				Summary:      "Solid greetings practice.",
			},
		}
		handler := NewSessionHandler(svc)

		req := authedRequest(t, http.MethodPost, "/api/sessions/process", reqBody, userID)
		recorder := httptest.NewRecorder()

		handler.ProcessSession(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)

		// The user ID comes from the token, the rest from the body.
		assert.Equal(t, userID, svc.gotInput.UserID)
		assert.Equal(t, reqBody.SessionID, svc.gotInput.SessionID)
		assert.Equal(t, reqBody.ConversationID, svc.gotInput.ConversationID)
		require.Len(t, svc.gotInput.Transcript, 2)
		assert.Equal(t, domain.RoleLearner, svc.gotInput.Transcript[0].Role)
		assert.Equal(t, "Hola, yo soy Ana.", svc.gotInput.Transcript[0].Text)

		var resp ProcessSessionResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Analysis)
		assert.Equal(t, "Solid greetings practice.", resp.Analysis.Summary)
		assert.Zero(t, resp.Analysis.VocabularyCount)
	})

	t.Run("missing user ID", func(t *testing.T) {
		handler := NewSessionHandler(&stubSessionService{})

		req := authedRequest(t, http.MethodPost, "/api/sessions/process",
			validSessionRequest(), uuid.Nil)
		recorder := httptest.NewRecorder()

		handler.ProcessSession(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(r *ProcessSessionRequest)
		}{
			{"missing session ID", func(r *ProcessSessionRequest) { r.SessionID = uuid.Nil }},
			{"missing conversation ID", func(r *ProcessSessionRequest) { r.ConversationID = uuid.Nil }},
			{"missing language code", func(r *ProcessSessionRequest) { r.LanguageCode = "" }},
			{"empty transcript", func(r *ProcessSessionRequest) { r.Transcript = nil }},
			{"bad role", func(r *ProcessSessionRequest) { r.Transcript[0].Role = "narrator" }},
			{"empty text", func(r *ProcessSessionRequest) { r.Transcript[0].Text = "" }},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				svc := &stubSessionService{}
				handler := NewSessionHandler(svc)

				reqBody := validSessionRequest()
				tc.mutate(&reqBody)

				req := authedRequest(t, http.MethodPost, "/api/sessions/process", reqBody, userID)
				recorder := httptest.NewRecorder()

				handler.ProcessSession(recorder, req)

				assert.Equal(t, http.StatusBadRequest, recorder.Code)
				assert.Equal(t, uuid.Nil, svc.gotInput.UserID,
					"service should not be called on validation failure")
			})
		}
	})

	t.Run("service rejects input", func(t *testing.T) {
		svc := &stubSessionService{
			err: fmt.Errorf("%w: language code cannot be empty", service.ErrInvalidInput),
		}
		handler := NewSessionHandler(svc)

		req := authedRequest(t, http.MethodPost, "/api/sessions/process",
			validSessionRequest(), userID)
		recorder := httptest.NewRecorder()

		handler.ProcessSession(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("service failure", func(t *testing.T) {
		svc := &stubSessionService{err: assert.AnError}
		handler := NewSessionHandler(svc)

		req := authedRequest(t, http.MethodPost, "/api/sessions/process",
			validSessionRequest(), userID)
		recorder := httptest.NewRecorder()

		handler.ProcessSession(recorder, req)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), assert.AnError.Error())
	})
}
