package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intervuex-backend-go/internal/models"
)

func TestChatMessagesAreSequenced(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "chat@example.com")
	session := seedSession(t, db, user.ID, "coding")

	first, err := SaveChatMessage(db, session.ID, models.RoleInterviewer, "Question 1: Two Sum", models.MessageText)
	require.NoError(t, err)
	second, err := SaveChatMessage(db, session.ID, models.RoleCandidate, "def solve():", models.MessageCode)
	require.NoError(t, err)
	third, err := SaveChatMessage(db, session.ID, models.RoleCandidate, "I would use a hash map", models.MessageText)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, int64(3), third.Seq)

	messages, err := SessionMessages(db, session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, first.ID, messages[0].ID)
	assert.Equal(t, second.ID, messages[1].ID)
	assert.Equal(t, third.ID, messages[2].ID)
}

func TestChatMessageSequencesAreScopedPerSession(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "chat2@example.com")
	one := seedSession(t, db, user.ID, "coding")
	two := seedSession(t, db, user.ID, "behavioral")

	_, err := SaveChatMessage(db, one.ID, models.RoleInterviewer, "hello", models.MessageText)
	require.NoError(t, err)
	message, err := SaveChatMessage(db, two.ID, models.RoleInterviewer, "hello", models.MessageText)
	require.NoError(t, err)
	assert.Equal(t, int64(1), message.Seq)
}

func TestChatMessageValidation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "chat3@example.com")
	session := seedSession(t, db, user.ID, "coding")

	var validation ValidationError
	_, err := SaveChatMessage(db, session.ID, "narrator", "hi", models.MessageText)
	require.True(t, errors.As(err, &validation))
	_, err = SaveChatMessage(db, session.ID, models.RoleCandidate, "hi", "video")
	require.True(t, errors.As(err, &validation))
}

func TestRecordingEventsRoundTripPayload(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "recordings@example.com")
	session := seedSession(t, db, user.ID, "coding")

	_, err := SaveRecordingEvent(db, session.ID, models.RecordingQuestionStart, map[string]any{
		"question_number": 1,
		"title":           "Two Sum",
	})
	require.NoError(t, err)
	_, err = SaveRecordingEvent(db, session.ID, models.RecordingCodeSnapshot, map[string]any{
		"code": "def two_sum(nums, target):",
	})
	require.NoError(t, err)

	events, err := SessionRecordings(db, session.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].Seq)
	assert.Equal(t, models.RecordingQuestionStart, events[0].EventType)
	assert.Equal(t, "Two Sum", events[0].EventData["title"])
	assert.Equal(t, int64(2), events[1].Seq)
	assert.Equal(t, "def two_sum(nums, target):", events[1].EventData["code"])
}

func TestRecordingEventRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "recordings2@example.com")
	session := seedSession(t, db, user.ID, "coding")

	_, err := SaveRecordingEvent(db, session.ID, "screenshot", nil)
	var validation ValidationError
	require.True(t, errors.As(err, &validation))
}
