package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"intervuex-backend-go/internal/speech"
)

const maxAudioBytes = 25 << 20

type VoiceTurnRequest struct {
	Utterance string `json:"utterance"`
}

func (s *Server) VoiceTurn(w http.ResponseWriter, r *http.Request) {
	var req VoiceTurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.Utterance) == "" {
		WriteError(w, http.StatusBadRequest, "Utterance is required")
		return
	}
	reply, err := s.Orch.VoiceTurn(r.Context(), chi.URLParam(r, "sessionId"), CurrentUserID(r), req.Utterance)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) VoiceFinish(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	userID := CurrentUserID(r)
	eval, session, err := s.Orch.VoiceFinish(r.Context(), sessionID, userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if eval != nil {
		s.Proctor.Release(sessionID)
		s.logActivity(r, userID, &sessionID, "interview_complete", "interview", "voice")
	}
	WriteJSON(w, http.StatusOK, map[string]any{"evaluation": eval, "session": session})
}

type TranscribeResponse struct {
	Transcript string             `json:"transcript"`
	Confidence float64            `json:"confidence"`
	Words      []speech.Word      `json:"words"`
	Pace       speech.PaceMetrics `json:"pace"`
}

func (s *Server) Transcribe(w http.ResponseWriter, r *http.Request) {
	if s.STT == nil {
		WriteError(w, http.StatusServiceUnavailable, "Speech service not configured")
		return
	}
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "An audio field is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil || len(data) > maxAudioBytes {
		WriteError(w, http.StatusBadRequest, "Audio too large")
		return
	}
	result, err := s.STT.Transcribe(r.Context(), bytes.NewReader(data), header.Filename)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "Transcription failed")
		return
	}
	WriteJSON(w, http.StatusOK, TranscribeResponse{
		Transcript: result.Transcript,
		Confidence: result.Confidence,
		Words:      result.Words,
		Pace:       speech.AnalyzePace(result.Words),
	})
}

type SynthesizeRequest struct {
	Text string `json:"text"`
}

func (s *Server) Synthesize(w http.ResponseWriter, r *http.Request) {
	if s.TTS == nil {
		WriteError(w, http.StatusServiceUnavailable, "Speech service not configured")
		return
	}
	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		WriteError(w, http.StatusBadRequest, "Text is required")
		return
	}
	audio, err := s.TTS.Synthesize(r.Context(), req.Text)
	if err != nil {
		WriteError(w, http.StatusBadGateway, "Synthesis failed")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
