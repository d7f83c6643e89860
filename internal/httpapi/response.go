package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"intervuex-backend-go/internal/interview"
	"intervuex-backend-go/internal/store"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// writeDomainError maps service and store errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var validation store.ValidationError
	switch {
	case errors.As(err, &validation):
		WriteError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, interview.ErrEmptySubmission):
		WriteError(w, http.StatusBadRequest, "Response must include text, code, or a transcript")
	case errors.Is(err, interview.ErrNotOwner):
		WriteError(w, http.StatusForbidden, "Not allowed")
	case errors.Is(err, interview.ErrNotActive):
		WriteError(w, http.StatusConflict, "Session is not in progress")
	case errors.Is(err, interview.ErrAllQuestionsAsked):
		WriteError(w, http.StatusConflict, "All questions have been asked")
	case errors.Is(err, sql.ErrNoRows):
		WriteError(w, http.StatusNotFound, "Not found")
	default:
		s.Log.Error("request failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value := 0
	for _, ch := range raw {
		if ch < '0' || ch > '9' {
			return fallback
		}
		value = value*10 + int(ch-'0')
	}
	return value
}
