package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

var memoryCategories = []string{"general", "preference", "skill", "personal", "interview_style"}

// SaveMemory upserts a fact keyed by (user, key): a repeated key updates the
// value, category, and updated_at in place, never creating a duplicate row.
func SaveMemory(db *sqlx.DB, userID, key, value, category string, sourceSessionID *string) error {
	key = strings.TrimSpace(key)
	if key == "" || strings.TrimSpace(value) == "" {
		return errValidation("memory key and value are required")
	}
	if !oneOf(category, memoryCategories...) {
		return errValidation("unknown memory category %q", category)
	}
	now := time.Now().UTC()
	_, err := db.Exec(`
INSERT INTO user_memory (id, user_id, memory_key, memory_value, category, source_session_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
ON CONFLICT (user_id, memory_key)
DO UPDATE SET memory_value = excluded.memory_value,
              category = excluded.category,
              source_session_id = excluded.source_session_id,
              updated_at = excluded.updated_at
`, uuid.NewString(), userID, key, value, category, sourceSessionID, now)
	return wrap("save memory", err)
}

// UserMemories lists a user's facts, newest first, optionally filtered by
// category (empty string means all).
func UserMemories(db *sqlx.DB, userID, category string) ([]*models.MemoryFact, error) {
	facts := []*models.MemoryFact{}
	var err error
	if category != "" {
		err = db.Select(&facts, `
SELECT * FROM user_memory WHERE user_id = $1 AND category = $2 ORDER BY updated_at DESC
`, userID, category)
	} else {
		err = db.Select(&facts, `
SELECT * FROM user_memory WHERE user_id = $1 ORDER BY updated_at DESC
`, userID)
	}
	if err != nil {
		return nil, wrap("user memories", err)
	}
	return facts, nil
}

func DeleteMemory(db *sqlx.DB, userID, key string) error {
	_, err := db.Exec(`
DELETE FROM user_memory WHERE user_id = $1 AND memory_key = $2
`, userID, key)
	return wrap("delete memory", err)
}
