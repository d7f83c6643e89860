package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    int64        `json:"expiresAt"`
	User         *models.User `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}
	exists, err := store.UserEmailExists(s.DB, req.Email)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if exists {
		WriteError(w, http.StatusBadRequest, "User already exists")
		return
	}
	hash, err := s.Tokens.HashPassword(req.Password)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	user, err := store.CreateUser(s.DB, req.Name, req.Email, hash)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.logActivity(r, user.ID, nil, "register", "authentication", "")
	WriteJSON(w, http.StatusOK, map[string]string{"userId": user.ID, "email": user.Email})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	user, err := store.GetUserByEmail(s.DB, req.Email)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if !user.IsActive {
		WriteError(w, http.StatusForbidden, "Authentication failed")
		return
	}
	if !s.Tokens.VerifyPassword(req.Password, user.PasswordHash) {
		s.logActivity(r, user.ID, nil, "login_failed", "authentication", "")
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	response, err := s.issueTokens(r, user)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	_ = store.SetLastLogin(s.DB, user.ID)
	s.logActivity(r, user.ID, nil, "login", "authentication", "")
	WriteJSON(w, http.StatusOK, response)
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Authentication failed")
		return
	}
	userID, err := s.Tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	// The signed token must also still exist as an active row; logout and
	// the hourly sweep revoke rows without touching the JWT itself.
	if _, err := store.GetActiveToken(s.DB, req.RefreshToken, "refresh"); err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	user, err := store.GetUser(s.DB, userID)
	if err != nil || !user.IsActive {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	_ = store.InvalidateToken(s.DB, req.RefreshToken)
	response, err := s.issueTokens(r, user)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, response)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		_ = store.InvalidateToken(s.DB, req.RefreshToken)
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, err := store.GetUser(s.DB, CurrentUserID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if strings.TrimSpace(req.NewPassword) == "" {
		WriteError(w, http.StatusBadRequest, "New password is required")
		return
	}
	user, err := store.GetUser(s.DB, CurrentUserID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if !s.Tokens.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		WriteError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	hash, err := s.Tokens.HashPassword(req.NewPassword)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := store.UpdatePassword(s.DB, user.ID, hash); err != nil {
		s.writeDomainError(w, err)
		return
	}
	// Existing refresh tokens stop working after a password change.
	_ = store.InvalidateUserTokens(s.DB, user.ID)
	s.logActivity(r, user.ID, nil, "password_change", "authentication", "")
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) issueTokens(r *http.Request, user *models.User) (*TokenResponse, error) {
	access, exp, err := s.Tokens.CreateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	if _, err := store.CreateAuthToken(s.DB, user.ID, refresh, "refresh", r.UserAgent(), s.Tokens.RefreshTTL); err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
		User:         user,
	}, nil
}

func (s *Server) logActivity(r *http.Request, userID string, sessionID *string, action, actionType, detail string) {
	entry := models.ActivityLog{
		UserID:     userID,
		SessionID:  sessionID,
		Action:     action,
		ActionType: actionType,
		Detail:     detail,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
	}
	if err := store.LogActivity(s.DB, entry); err != nil {
		s.Log.Warn("activity log failed", zap.Error(err))
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		host = host[:idx]
	}
	return host
}
