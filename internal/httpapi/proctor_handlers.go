package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"intervuex-backend-go/internal/store"
)

type ViolationReport struct {
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
	Detail    string `json:"detail"`
}

type ViolationAck struct {
	Recorded bool   `json:"recorded"`
	EventID  string `json:"eventId,omitempty"`
}

// ReportViolation is the plain POST fallback for clients that cannot hold a
// websocket open.
func (s *Server) ReportViolation(w http.ResponseWriter, r *http.Request) {
	var req ViolationReport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	sessionID := chi.URLParam(r, "sessionId")
	userID := CurrentUserID(r)
	event, recorded, err := s.Proctor.Report(sessionID, userID, req.Type, req.Detail)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	ack := ViolationAck{Recorded: recorded}
	if event != nil {
		ack.EventID = event.ID
		s.logActivity(r, userID, &sessionID, "violation", "violation", req.Type)
	}
	WriteJSON(w, http.StatusOK, ack)
}

func (s *Server) SessionViolations(w http.ResponseWriter, r *http.Request) {
	session := s.ownedSession(w, r)
	if session == nil {
		return
	}
	items, err := store.SessionViolations(s.DB, session.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"items":          items,
		"violationCount": session.ViolationCount,
	})
}

// ProctorSocket is the streaming ingest path: the browser pushes violation
// reports as JSON frames and receives an ack per frame. Auth rides on a
// token query parameter because browsers cannot set headers on websockets.
func (s *Server) ProctorSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	identity, err := s.Tokens.ParseAccess(tokenStr)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var report ViolationReport
		if err := conn.ReadJSON(&report); err != nil {
			return
		}
		event, recorded, err := s.Proctor.Report(report.SessionID, identity.UserID, report.Type, report.Detail)
		ack := ViolationAck{Recorded: recorded}
		if err != nil {
			ack.Recorded = false
		} else if event != nil {
			ack.EventID = event.ID
		}
		if err := conn.WriteJSON(ack); err != nil {
			return
		}
	}
}
