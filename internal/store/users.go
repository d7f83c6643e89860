package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

func CreateUser(db *sqlx.DB, name, email, passwordHash string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if name == "" || email == "" {
		return nil, errValidation("name and email are required")
	}
	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         "user",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := db.Exec(`
INSERT INTO users (id, name, email, password_hash, role, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt)
	if err != nil {
		return nil, wrap("create user", err)
	}
	return &user, nil
}

func GetUser(db *sqlx.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Get(&user, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, wrap("get user", err)
	}
	return &user, nil
}

func GetUserByEmail(db *sqlx.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Get(&user, `SELECT * FROM users WHERE lower(email) = $1`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, wrap("get user by email", err)
	}
	return &user, nil
}

func UserEmailExists(db *sqlx.DB, email string) (bool, error) {
	var exists bool
	err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, wrap("user email exists", err)
	}
	return exists, nil
}

func SetLastLogin(db *sqlx.DB, userID string) error {
	_, err := db.Exec(`UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now().UTC(), userID)
	return wrap("set last login", err)
}

func UpdatePassword(db *sqlx.DB, userID, passwordHash string) error {
	_, err := db.Exec(`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, userID)
	return wrap("update password", err)
}

func SetUserActive(db *sqlx.DB, userID string, active bool) error {
	_, err := db.Exec(`UPDATE users SET is_active = $1 WHERE id = $2`, active, userID)
	return wrap("set user active", err)
}
