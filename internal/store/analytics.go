package store

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// UserAnalytics aggregates a user's completed sessions for the dashboard.
type UserAnalytics struct {
	TotalSessions     int                  `json:"totalSessions"`
	CompletedSessions int                  `json:"completedSessions"`
	AverageScore      float64              `json:"averageScore"`
	BestScore         float64              `json:"bestScore"`
	TotalViolations   int                  `json:"totalViolations"`
	ByType            map[string]TypeBreak `json:"byType"`
	ByDifficulty      map[string]TypeBreak `json:"byDifficulty"`
	Trend             []ScoreTrendPoint    `json:"trend"`
	MemoryFactCount   int                  `json:"memoryFactCount"`
}

type TypeBreak struct {
	Sessions     int     `json:"sessions"`
	AverageScore float64 `json:"averageScore"`
}

type ScoreTrendPoint struct {
	SessionID    string    `json:"sessionId"`
	SessionType  string    `json:"sessionType"`
	OverallScore float64   `json:"overallScore"`
	EndedAt      time.Time `json:"endedAt"`
}

func GetUserAnalytics(db *sqlx.DB, userID string) (*UserAnalytics, error) {
	analytics := UserAnalytics{
		ByType:       map[string]TypeBreak{},
		ByDifficulty: map[string]TypeBreak{},
		Trend:        []ScoreTrendPoint{},
	}

	var totals struct {
		Total      int     `db:"total"`
		Completed  int     `db:"completed"`
		Violations int     `db:"violations"`
		Avg        float64 `db:"avg_score"`
		Best       float64 `db:"best_score"`
	}
	err := db.Get(&totals, `
SELECT COUNT(*) AS total,
       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
       COALESCE(SUM(violation_count), 0) AS violations,
       COALESCE(AVG(CASE WHEN status = 'completed' THEN overall_score END), 0) AS avg_score,
       COALESCE(MAX(CASE WHEN status = 'completed' THEN overall_score END), 0) AS best_score
FROM interview_sessions WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, wrap("user analytics", err)
	}
	analytics.TotalSessions = totals.Total
	analytics.CompletedSessions = totals.Completed
	analytics.TotalViolations = totals.Violations
	analytics.AverageScore = totals.Avg
	analytics.BestScore = totals.Best

	type bucketRow struct {
		Key      string  `db:"bucket"`
		Sessions int     `db:"sessions"`
		Avg      float64 `db:"avg_score"`
	}
	buckets := []bucketRow{}
	err = db.Select(&buckets, `
SELECT session_type AS bucket, COUNT(*) AS sessions, COALESCE(AVG(overall_score), 0) AS avg_score
FROM interview_sessions WHERE user_id = $1 AND status = 'completed'
GROUP BY session_type
`, userID)
	if err != nil {
		return nil, wrap("user analytics", err)
	}
	for _, b := range buckets {
		analytics.ByType[b.Key] = TypeBreak{Sessions: b.Sessions, AverageScore: b.Avg}
	}

	buckets = buckets[:0]
	err = db.Select(&buckets, `
SELECT difficulty AS bucket, COUNT(*) AS sessions, COALESCE(AVG(overall_score), 0) AS avg_score
FROM interview_sessions WHERE user_id = $1 AND status = 'completed'
GROUP BY difficulty
`, userID)
	if err != nil {
		return nil, wrap("user analytics", err)
	}
	for _, b := range buckets {
		analytics.ByDifficulty[b.Key] = TypeBreak{Sessions: b.Sessions, AverageScore: b.Avg}
	}

	err = db.Select(&analytics.Trend, `
SELECT id AS "sessionid", session_type AS "sessiontype", overall_score AS "overallscore", ended_at AS "endedat"
FROM interview_sessions
WHERE user_id = $1 AND status = 'completed' AND ended_at IS NOT NULL
ORDER BY ended_at DESC LIMIT 20
`, userID)
	if err != nil {
		return nil, wrap("user analytics", err)
	}
	// Trend is reported oldest first.
	for i, j := 0, len(analytics.Trend)-1; i < j; i, j = i+1, j-1 {
		analytics.Trend[i], analytics.Trend[j] = analytics.Trend[j], analytics.Trend[i]
	}

	if err := db.Get(&analytics.MemoryFactCount, `
SELECT COUNT(*) FROM user_memory WHERE user_id = $1
`, userID); err != nil {
		return nil, wrap("user analytics", err)
	}
	return &analytics, nil
}
