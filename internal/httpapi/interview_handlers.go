package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"intervuex-backend-go/internal/interview"
	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

type StartInterviewRequest struct {
	SessionType   string  `json:"sessionType"`
	Difficulty    string  `json:"difficulty"`
	Topic         *string `json:"topic"`
	QuestionCount int     `json:"questionCount"`
}

func (s *Server) StartInterview(w http.ResponseWriter, r *http.Request) {
	var req StartInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if req.QuestionCount == 0 {
		req.QuestionCount = 3
	}
	userID := CurrentUserID(r)
	session, err := s.Orch.Start(r.Context(), userID, req.SessionType, req.Difficulty, req.Topic, req.QuestionCount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logActivity(r, userID, &session.ID, "interview_start", "interview", session.SessionType)
	WriteJSON(w, http.StatusCreated, session)
}

func (s *Server) ListInterviews(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	items, err := store.ListUserSessions(s.DB, CurrentUserID(r), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ownedSession loads a session and enforces that the caller owns it.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request) *models.InterviewSession {
	session, err := store.GetSession(s.DB, chi.URLParam(r, "sessionId"))
	if err != nil {
		s.writeDomainError(w, err)
		return nil
	}
	if session.UserID != CurrentUserID(r) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return nil
	}
	return session
}

func (s *Server) GetInterview(w http.ResponseWriter, r *http.Request) {
	if session := s.ownedSession(w, r); session != nil {
		WriteJSON(w, http.StatusOK, session)
	}
}

type NextQuestionResponse struct {
	Question *models.Question `json:"question"`
	Detail   any              `json:"detail"`
}

func (s *Server) NextQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	row, generated, err := s.Orch.NextQuestion(r.Context(), sessionID, CurrentUserID(r))
	if err != nil {
		if errors.Is(err, interview.ErrAllQuestionsAsked) {
			WriteJSON(w, http.StatusOK, map[string]any{"done": true})
			return
		}
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, NextQuestionResponse{Question: row, Detail: generated})
}

func (s *Server) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var sub interview.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	sessionID := chi.URLParam(r, "sessionId")
	result, err := s.Orch.SubmitResponse(r.Context(), sessionID, CurrentUserID(r), sub)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

type FinalizeRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) FinalizeInterview(w http.ResponseWriter, r *http.Request) {
	var req FinalizeRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Reason == "" {
		req.Reason = models.EndReasonNatural
	}
	sessionID := chi.URLParam(r, "sessionId")
	userID := CurrentUserID(r)
	session, completed, err := s.Orch.Finalize(r.Context(), sessionID, userID, req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if completed {
		s.Proctor.Release(sessionID)
		s.logActivity(r, userID, &sessionID, "interview_complete", "interview", req.Reason)
	}
	WriteJSON(w, http.StatusOK, session)
}

func (s *Server) SessionQuestions(w http.ResponseWriter, r *http.Request) {
	session := s.ownedSession(w, r)
	if session == nil {
		return
	}
	items, err := store.SessionQuestions(s.DB, session.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) SessionMessages(w http.ResponseWriter, r *http.Request) {
	session := s.ownedSession(w, r)
	if session == nil {
		return
	}
	items, err := store.SessionMessages(s.DB, session.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) SessionRecordings(w http.ResponseWriter, r *http.Request) {
	session := s.ownedSession(w, r)
	if session == nil {
		return
	}
	items, err := store.SessionRecordings(s.DB, session.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
