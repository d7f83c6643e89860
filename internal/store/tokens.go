package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

// CreateAuthToken inserts a new token row. An empty secret gets a generated
// opaque one; refresh rows store the signed JWT so it can be revoked. Tokens
// are never physically deleted; revocation flips is_active so the audit
// trail survives.
func CreateAuthToken(db *sqlx.DB, userID, secret, tokenType, deviceInfo string, ttl time.Duration) (*models.AuthToken, error) {
	if !oneOf(tokenType, "session", "refresh", "api") {
		return nil, errValidation("unknown token type %q", tokenType)
	}
	if secret == "" {
		secret = uuid.NewString()
	}
	now := time.Now().UTC()
	token := models.AuthToken{
		ID:         uuid.NewString(),
		UserID:     userID,
		Token:      secret,
		TokenType:  tokenType,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		IsActive:   true,
		DeviceInfo: deviceInfo,
	}
	_, err := db.Exec(`
INSERT INTO auth_tokens (id, user_id, token, token_type, expires_at, created_at, is_active, device_info)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, token.ID, token.UserID, token.Token, token.TokenType, token.ExpiresAt, token.CreatedAt, token.IsActive, token.DeviceInfo)
	if err != nil {
		return nil, wrap("create auth token", err)
	}
	return &token, nil
}

// GetActiveToken resolves a secret to its row, requiring it to be active and
// unexpired, and touches last_used_at.
func GetActiveToken(db *sqlx.DB, secret, tokenType string) (*models.AuthToken, error) {
	var token models.AuthToken
	err := db.Get(&token, `
SELECT * FROM auth_tokens WHERE token = $1 AND token_type = $2 AND is_active = $3
`, secret, tokenType, true)
	if err != nil {
		return nil, wrap("get auth token", err)
	}
	now := time.Now().UTC()
	if token.ExpiresAt.Before(now) {
		return nil, errValidation("token expired")
	}
	_, _ = db.Exec(`UPDATE auth_tokens SET last_used_at = $1 WHERE id = $2`, now, token.ID)
	token.LastUsedAt = &now
	return &token, nil
}

func InvalidateToken(db *sqlx.DB, secret string) error {
	_, err := db.Exec(`UPDATE auth_tokens SET is_active = $1 WHERE token = $2`, false, secret)
	return wrap("invalidate token", err)
}

func InvalidateUserTokens(db *sqlx.DB, userID string) error {
	_, err := db.Exec(`UPDATE auth_tokens SET is_active = $1 WHERE user_id = $2`, false, userID)
	return wrap("invalidate user tokens", err)
}

// DeactivateExpiredTokens flips is_active on tokens past their expiry so the
// active set stays small. Rows are kept.
func DeactivateExpiredTokens(db *sqlx.DB) (int64, error) {
	result, err := db.Exec(`
UPDATE auth_tokens SET is_active = $1 WHERE is_active = $2 AND expires_at < $3
`, false, true, time.Now().UTC())
	if err != nil {
		return 0, wrap("deactivate expired tokens", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}

func UserTokens(db *sqlx.DB, userID string) ([]*models.AuthToken, error) {
	tokens := []*models.AuthToken{}
	err := db.Select(&tokens, `
SELECT * FROM auth_tokens WHERE user_id = $1 ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, wrap("user tokens", err)
	}
	return tokens, nil
}
