package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

// RecordViolation appends a violation event and bumps the session's
// denormalized counter in a single transaction, so the counter always equals
// the number of event rows.
func RecordViolation(db *sqlx.DB, sessionID, violationType, detail string) (*models.ViolationEvent, error) {
	if strings.TrimSpace(violationType) == "" {
		return nil, errValidation("violation type is required")
	}
	event := models.ViolationEvent{
		ID:            uuid.NewString(),
		SessionID:     sessionID,
		ViolationType: violationType,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
	tx, err := db.Beginx()
	if err != nil {
		return nil, wrap("record violation", err)
	}
	defer tx.Rollback()
	_, err = tx.Exec(`
INSERT INTO violation_events (id, session_id, violation_type, detail, created_at)
VALUES ($1,$2,$3,$4,$5)
`, event.ID, event.SessionID, event.ViolationType, event.Detail, event.CreatedAt)
	if err != nil {
		return nil, wrap("record violation", err)
	}
	_, err = tx.Exec(`
UPDATE interview_sessions SET violation_count = violation_count + 1 WHERE id = $1
`, sessionID)
	if err != nil {
		return nil, wrap("record violation", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrap("record violation", err)
	}
	return &event, nil
}

func SessionViolations(db *sqlx.DB, sessionID string) ([]*models.ViolationEvent, error) {
	events := []*models.ViolationEvent{}
	err := db.Select(&events, `
SELECT * FROM violation_events WHERE session_id = $1 ORDER BY created_at
`, sessionID)
	if err != nil {
		return nil, wrap("session violations", err)
	}
	return events, nil
}

// ReconcileViolationCount recomputes the denormalized counter from the event
// rows. Repair pass for counters that drifted (e.g. a crash between the two
// statements on a store that cannot run them transactionally).
func ReconcileViolationCount(db *sqlx.DB, sessionID string) (int, error) {
	var count int
	if err := db.Get(&count, `
SELECT COUNT(*) FROM violation_events WHERE session_id = $1
`, sessionID); err != nil {
		return 0, wrap("reconcile violations", err)
	}
	_, err := db.Exec(`
UPDATE interview_sessions SET violation_count = $1 WHERE id = $2
`, count, sessionID)
	if err != nil {
		return 0, wrap("reconcile violations", err)
	}
	return count, nil
}
