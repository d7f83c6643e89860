package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intervuex-backend-go/internal/models"
)

func TestCreateSessionRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "sessions@example.com")

	var validation ValidationError

	_, err := CreateSession(db, user.ID, "trivia", "medium", nil, 3)
	require.True(t, errors.As(err, &validation))

	_, err = CreateSession(db, user.ID, "coding", "impossible", nil, 3)
	require.True(t, errors.As(err, &validation))

	_, err = CreateSession(db, user.ID, "coding", "medium", nil, 0)
	require.True(t, errors.As(err, &validation))

	_, err = CreateSession(db, user.ID, "coding", "medium", nil, 6)
	require.True(t, errors.As(err, &validation))
}

func TestCreateSessionRequiresExistingUser(t *testing.T) {
	db := newTestDB(t)

	_, err := CreateSession(db, "no-such-user", "coding", "medium", nil, 3)
	var integrity ReferentialIntegrityError
	require.True(t, errors.As(err, &integrity))
}

func TestCompleteSessionIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "complete@example.com")
	session := seedSession(t, db, user.ID, "coding")

	scores := SessionScores{Overall: 72, Technical: 80, Communication: 65, Reasoning: 70, ProblemSolving: 74}
	feedback := &models.SessionFeedback{
		ExecutiveSummary: "Solid fundamentals.",
		Recommendation:   "lean_hire",
	}

	completed, err := CompleteSession(db, session.ID, scores, feedback, models.EndReasonNatural)
	require.NoError(t, err)
	require.True(t, completed)

	// second finalize must not rewrite anything
	completed, err = CompleteSession(db, session.ID, SessionScores{Overall: 1}, nil, models.EndReasonTerminated)
	require.NoError(t, err)
	require.False(t, completed)

	got, err := GetSession(db, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, got.Status)
	assert.Equal(t, 72.0, got.OverallScore)
	assert.Equal(t, 80.0, got.TechnicalScore)
	require.NotNil(t, got.EndReason)
	assert.Equal(t, models.EndReasonNatural, *got.EndReason)
	require.NotNil(t, got.EndedAt)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, "Solid fundamentals.", got.Feedback.ExecutiveSummary)
}

func TestCompleteSessionRejectsUnknownReason(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "reason@example.com")
	session := seedSession(t, db, user.ID, "behavioral")

	_, err := CompleteSession(db, session.ID, SessionScores{}, nil, "rage_quit")
	var validation ValidationError
	require.True(t, errors.As(err, &validation))
}

func TestAbandonStaleSessions(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "stale@example.com")

	stale := seedSession(t, db, user.ID, "coding")
	active := seedSession(t, db, user.ID, "coding")
	finished := seedSession(t, db, user.ID, "coding")
	_, err := CompleteSession(db, finished.ID, SessionScores{}, nil, models.EndReasonNatural)
	require.NoError(t, err)

	// age both unfinished sessions past the cutoff, then give one a recent message
	past := time.Now().UTC().Add(-2 * time.Hour)
	for _, id := range []string{stale.ID, active.ID} {
		_, err := db.Exec(`UPDATE interview_sessions SET started_at = $1 WHERE id = $2`, past, id)
		require.NoError(t, err)
	}
	_, err = SaveChatMessage(db, active.ID, models.RoleCandidate, "still here", models.MessageText)
	require.NoError(t, err)

	affected, err := AbandonStaleSessions(db, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := GetSession(db, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbandoned, got.Status)

	got, err = GetSession(db, active.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, got.Status)

	got, err = GetSession(db, finished.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, got.Status)
}

func TestListUserSessionsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "list@example.com")

	older := seedSession(t, db, user.ID, "coding")
	_, err := db.Exec(`UPDATE interview_sessions SET started_at = $1 WHERE id = $2`,
		time.Now().UTC().Add(-time.Hour), older.ID)
	require.NoError(t, err)
	newer := seedSession(t, db, user.ID, "behavioral")

	sessions, err := ListUserSessions(db, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)
}
