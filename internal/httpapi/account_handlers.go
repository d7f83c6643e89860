package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"intervuex-backend-go/internal/store"
)

func (s *Server) ListMemories(w http.ResponseWriter, r *http.Request) {
	items, err := store.UserMemories(s.DB, CurrentUserID(r), r.URL.Query().Get("category"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteMemory(s.DB, CurrentUserID(r), chi.URLParam(r, "key")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) MyActivity(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 100)
	items, err := store.UserActivity(s.DB, CurrentUserID(r), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) MyAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := store.GetUserAnalytics(s.DB, CurrentUserID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, analytics)
}

func (s *Server) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 120)
	if limit > 500 {
		limit = 500
	}
	items, err := store.LatestMetricSamples(s.DB, limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.Ping(); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
