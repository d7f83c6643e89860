package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

var activityTypes = []string{"general", "authentication", "interview", "resume", "violation", "system"}

// LogActivity appends one audit row. Failures here must not break the calling
// flow, so callers typically log and continue on error.
func LogActivity(db *sqlx.DB, entry models.ActivityLog) error {
	if strings.TrimSpace(entry.Action) == "" {
		return errValidation("activity action is required")
	}
	if entry.ActionType == "" {
		entry.ActionType = "general"
	}
	if !oneOf(entry.ActionType, activityTypes...) {
		return errValidation("unknown activity type %q", entry.ActionType)
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	_, err := db.Exec(`
INSERT INTO activity_logs (id, user_id, session_id, action, action_type, detail, ip, user_agent, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, entry.ID, entry.UserID, entry.SessionID, entry.Action, entry.ActionType, entry.Detail, entry.IP, entry.UserAgent, entry.CreatedAt)
	return wrap("log activity", err)
}

func UserActivity(db *sqlx.DB, userID string, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries := []*models.ActivityLog{}
	err := db.Select(&entries, `
SELECT * FROM activity_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, wrap("user activity", err)
	}
	return entries, nil
}
