package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

// Chat messages and recording events are append-only logs. Each row carries a
// per-session sequence number so listing order always matches insertion order
// even when two writes land in the same timestamp tick.

func SaveChatMessage(db *sqlx.DB, sessionID, role, content, messageType string) (*models.ChatMessage, error) {
	if !oneOf(role, models.RoleInterviewer, models.RoleCandidate, models.RoleSystem) {
		return nil, errValidation("unknown chat role %q", role)
	}
	if !oneOf(messageType, models.MessageText, models.MessageCode, models.MessageAudioTranscript) {
		return nil, errValidation("unknown message type %q", messageType)
	}
	message := models.ChatMessage{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Role:        role,
		Content:     content,
		MessageType: messageType,
		CreatedAt:   time.Now().UTC(),
	}
	tx, err := db.Beginx()
	if err != nil {
		return nil, wrap("save chat message", err)
	}
	defer tx.Rollback()
	if err := tx.Get(&message.Seq, `
SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_messages WHERE session_id = $1
`, sessionID); err != nil {
		return nil, wrap("save chat message", err)
	}
	_, err = tx.Exec(`
INSERT INTO chat_messages (id, session_id, seq, role, content, message_type, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, message.ID, message.SessionID, message.Seq, message.Role, message.Content, message.MessageType, message.CreatedAt)
	if err != nil {
		return nil, wrap("save chat message", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrap("save chat message", err)
	}
	return &message, nil
}

func SessionMessages(db *sqlx.DB, sessionID string) ([]*models.ChatMessage, error) {
	messages := []*models.ChatMessage{}
	err := db.Select(&messages, `
SELECT * FROM chat_messages WHERE session_id = $1 ORDER BY seq
`, sessionID)
	if err != nil {
		return nil, wrap("session messages", err)
	}
	return messages, nil
}

func SaveRecordingEvent(db *sqlx.DB, sessionID, eventType string, data map[string]any) (*models.RecordingEvent, error) {
	if !oneOf(eventType, models.RecordingCodeSnapshot, models.RecordingConversation,
		models.RecordingAudioClip, models.RecordingAnalysis, models.RecordingQuestionStart) {
		return nil, errValidation("unknown recording event type %q", eventType)
	}
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, errValidation("recording payload is not serializable")
	}
	event := models.RecordingEvent{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		EventType: eventType,
		EventData: data,
		CreatedAt: time.Now().UTC(),
	}
	tx, err := db.Beginx()
	if err != nil {
		return nil, wrap("save recording event", err)
	}
	defer tx.Rollback()
	if err := tx.Get(&event.Seq, `
SELECT COALESCE(MAX(seq), 0) + 1 FROM recording_events WHERE session_id = $1
`, sessionID); err != nil {
		return nil, wrap("save recording event", err)
	}
	_, err = tx.Exec(`
INSERT INTO recording_events (id, session_id, seq, event_type, event_data_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, event.ID, event.SessionID, event.Seq, event.EventType, string(encoded), event.CreatedAt)
	if err != nil {
		return nil, wrap("save recording event", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrap("save recording event", err)
	}
	return &event, nil
}

type recordingRow struct {
	ID        string    `db:"id"`
	SessionID string    `db:"session_id"`
	Seq       int64     `db:"seq"`
	EventType string    `db:"event_type"`
	EventData string    `db:"event_data_json"`
	CreatedAt time.Time `db:"created_at"`
}

func SessionRecordings(db *sqlx.DB, sessionID string) ([]*models.RecordingEvent, error) {
	rows := []recordingRow{}
	err := db.Select(&rows, `
SELECT * FROM recording_events WHERE session_id = $1 ORDER BY seq
`, sessionID)
	if err != nil {
		return nil, wrap("session recordings", err)
	}
	events := make([]*models.RecordingEvent, 0, len(rows))
	for _, row := range rows {
		event := models.RecordingEvent{
			ID:        row.ID,
			SessionID: row.SessionID,
			Seq:       row.Seq,
			EventType: row.EventType,
			EventData: map[string]any{},
			CreatedAt: row.CreatedAt,
		}
		_ = json.Unmarshal([]byte(row.EventData), &event.EventData)
		events = append(events, &event)
	}
	return events, nil
}
