package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

type sessionRow struct {
	ID                  string     `db:"id"`
	UserID              string     `db:"user_id"`
	SessionType         string     `db:"session_type"`
	Status              string     `db:"status"`
	Difficulty          string     `db:"difficulty"`
	Topic               *string    `db:"topic"`
	QuestionCount       int        `db:"question_count"`
	StartedAt           time.Time  `db:"started_at"`
	EndedAt             *time.Time `db:"ended_at"`
	OverallScore        float64    `db:"overall_score"`
	TechnicalScore      float64    `db:"technical_score"`
	CommunicationScore  float64    `db:"communication_score"`
	ReasoningScore      float64    `db:"reasoning_score"`
	ProblemSolvingScore float64    `db:"problem_solving_score"`
	Feedback            string     `db:"feedback_json"`
	ViolationCount      int        `db:"violation_count"`
	EndReason           *string    `db:"end_reason"`
}

func (r sessionRow) decode() *models.InterviewSession {
	session := models.InterviewSession{
		ID:                  r.ID,
		UserID:              r.UserID,
		SessionType:         r.SessionType,
		Status:              r.Status,
		Difficulty:          r.Difficulty,
		Topic:               r.Topic,
		QuestionCount:       r.QuestionCount,
		StartedAt:           r.StartedAt,
		EndedAt:             r.EndedAt,
		OverallScore:        r.OverallScore,
		TechnicalScore:      r.TechnicalScore,
		CommunicationScore:  r.CommunicationScore,
		ReasoningScore:      r.ReasoningScore,
		ProblemSolvingScore: r.ProblemSolvingScore,
		ViolationCount:      r.ViolationCount,
		EndReason:           r.EndReason,
	}
	if r.Feedback != "" && r.Feedback != "{}" {
		var feedback models.SessionFeedback
		if err := json.Unmarshal([]byte(r.Feedback), &feedback); err == nil {
			session.Feedback = &feedback
		}
	}
	return &session
}

func CreateSession(db *sqlx.DB, userID, sessionType, difficulty string, topic *string, questionCount int) (*models.InterviewSession, error) {
	if !oneOf(sessionType, models.SessionTypeCoding, models.SessionTypeBehavioral, models.SessionTypeTechnical) {
		return nil, errValidation("unknown session type %q", sessionType)
	}
	if !oneOf(difficulty, "easy", "medium", "hard") {
		return nil, errValidation("unknown difficulty %q", difficulty)
	}
	if questionCount < 1 || questionCount > 5 {
		return nil, errValidation("question count must be between 1 and 5")
	}
	session := models.InterviewSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		SessionType:   sessionType,
		Status:        models.SessionInProgress,
		Difficulty:    difficulty,
		Topic:         topic,
		QuestionCount: questionCount,
		StartedAt:     time.Now().UTC(),
	}
	_, err := db.Exec(`
INSERT INTO interview_sessions (id, user_id, session_type, status, difficulty, topic, question_count, started_at, feedback_json)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'{}')
`, session.ID, session.UserID, session.SessionType, session.Status, session.Difficulty, session.Topic, session.QuestionCount, session.StartedAt)
	if err != nil {
		return nil, wrap("create session", err)
	}
	return &session, nil
}

func GetSession(db *sqlx.DB, id string) (*models.InterviewSession, error) {
	var row sessionRow
	if err := db.Get(&row, `SELECT * FROM interview_sessions WHERE id = $1`, id); err != nil {
		return nil, wrap("get session", err)
	}
	return row.decode(), nil
}

func ListUserSessions(db *sqlx.DB, userID string, limit int) ([]*models.InterviewSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows := []sessionRow{}
	err := db.Select(&rows, `
SELECT * FROM interview_sessions WHERE user_id = $1
ORDER BY started_at DESC LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, wrap("list sessions", err)
	}
	sessions := make([]*models.InterviewSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.decode())
	}
	return sessions, nil
}

// SessionScores carries the five report scores written at completion.
type SessionScores struct {
	Overall        float64
	Technical      float64
	Communication  float64
	Reasoning      float64
	ProblemSolving float64
}

// CompleteSession writes all five scores, the feedback report, and the
// terminal status in one statement. The status predicate makes the call
// idempotent: a second finalize finds no in_progress row and reports false.
func CompleteSession(db *sqlx.DB, sessionID string, scores SessionScores, feedback *models.SessionFeedback, reason string) (bool, error) {
	if !oneOf(reason, models.EndReasonNatural, models.EndReasonTerminated) {
		return false, errValidation("unknown end reason %q", reason)
	}
	encoded := []byte("{}")
	if feedback != nil {
		encoded, _ = json.Marshal(feedback)
	}
	result, err := db.Exec(`
UPDATE interview_sessions
SET status = $1,
    overall_score = $2,
    technical_score = $3,
    communication_score = $4,
    reasoning_score = $5,
    problem_solving_score = $6,
    feedback_json = $7,
    end_reason = $8,
    ended_at = $9
WHERE id = $10 AND status = $11
`, models.SessionCompleted, scores.Overall, scores.Technical, scores.Communication,
		scores.Reasoning, scores.ProblemSolving, string(encoded), reason, time.Now().UTC(), sessionID, models.SessionInProgress)
	if err != nil {
		return false, wrap("complete session", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, wrap("complete session", err)
	}
	return affected == 1, nil
}

// AbandonStaleSessions marks in_progress sessions with no activity since the
// cutoff as abandoned. Activity is the newer of session start and the last
// chat message.
func AbandonStaleSessions(db *sqlx.DB, cutoff time.Time) (int64, error) {
	result, err := db.Exec(`
UPDATE interview_sessions
SET status = $1, ended_at = $2
WHERE status = $3
  AND started_at < $4
  AND id NOT IN (
    SELECT session_id FROM chat_messages WHERE created_at >= $4
  )
`, models.SessionAbandoned, time.Now().UTC(), models.SessionInProgress, cutoff)
	if err != nil {
		return 0, wrap("abandon stale sessions", err)
	}
	affected, _ := result.RowsAffected()
	return affected, nil
}
