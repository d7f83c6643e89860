package httpapi

import (
	"errors"
	"io"
	"net/http"

	"intervuex-backend-go/internal/resumes"
	"intervuex-backend-go/internal/store"
)

// Resume uploads are capped at 10 MiB.
const maxResumeBytes = 10 << 20

type ResumeUploadResponse struct {
	Resume   any  `json:"resume"`
	Degraded bool `json:"degraded"`
}

func (s *Server) UploadResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "A file field is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxResumeBytes+1))
	if err != nil || len(data) > maxResumeBytes {
		WriteError(w, http.StatusBadRequest, "File too large")
		return
	}

	userID := CurrentUserID(r)
	resume, degraded, err := s.Resumes.Ingest(r.Context(), userID, header.Filename, data)
	if err != nil {
		if errors.Is(err, resumes.ErrUnreadable) {
			WriteError(w, http.StatusUnprocessableEntity, "File contains no extractable text")
			return
		}
		s.writeDomainError(w, err)
		return
	}
	s.logActivity(r, userID, nil, "resume_upload", "resume", header.Filename)
	WriteJSON(w, http.StatusOK, ResumeUploadResponse{Resume: resume, Degraded: degraded})
}

func (s *Server) ListResumes(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListResumes(s.DB, CurrentUserID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) LatestResume(w http.ResponseWriter, r *http.Request) {
	resume, err := store.LatestResume(s.DB, CurrentUserID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if resume == nil {
		WriteError(w, http.StatusNotFound, "No resume uploaded yet")
		return
	}
	WriteJSON(w, http.StatusOK, resume)
}
