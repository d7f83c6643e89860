package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthTokenLifecycle(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "tokens@example.com")

	token, err := CreateAuthToken(db, user.ID, "signed.jwt.value", "refresh", "test-agent", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.value", token.Token)
	assert.True(t, token.IsActive)

	got, err := GetActiveToken(db, "signed.jwt.value", "refresh")
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.NotNil(t, got.LastUsedAt)

	require.NoError(t, InvalidateToken(db, "signed.jwt.value"))
	_, err = GetActiveToken(db, "signed.jwt.value", "refresh")
	require.Error(t, err)
}

func TestCreateAuthTokenGeneratesSecret(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "tokens2@example.com")

	token, err := CreateAuthToken(db, user.ID, "", "session", "", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
}

func TestCreateAuthTokenRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "tokens3@example.com")

	_, err := CreateAuthToken(db, user.ID, "", "forever", "", time.Hour)
	var validation ValidationError
	require.True(t, errors.As(err, &validation))
}

func TestGetActiveTokenRejectsExpired(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "tokens4@example.com")

	_, err := CreateAuthToken(db, user.ID, "stale", "refresh", "", -time.Minute)
	require.NoError(t, err)
	_, err = GetActiveToken(db, "stale", "refresh")
	var validation ValidationError
	require.True(t, errors.As(err, &validation))
}

func TestInvalidateUserTokensRevokesAll(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "tokens5@example.com")
	other := seedUser(t, db, "tokens6@example.com")

	_, err := CreateAuthToken(db, user.ID, "one", "refresh", "", time.Hour)
	require.NoError(t, err)
	_, err = CreateAuthToken(db, user.ID, "two", "refresh", "", time.Hour)
	require.NoError(t, err)
	_, err = CreateAuthToken(db, other.ID, "theirs", "refresh", "", time.Hour)
	require.NoError(t, err)

	require.NoError(t, InvalidateUserTokens(db, user.ID))

	_, err = GetActiveToken(db, "one", "refresh")
	require.Error(t, err)
	_, err = GetActiveToken(db, "two", "refresh")
	require.Error(t, err)
	_, err = GetActiveToken(db, "theirs", "refresh")
	require.NoError(t, err)
}

func TestDeactivateExpiredTokens(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "tokens7@example.com")

	_, err := CreateAuthToken(db, user.ID, "expired", "refresh", "", -time.Minute)
	require.NoError(t, err)
	_, err = CreateAuthToken(db, user.ID, "fresh", "refresh", "", time.Hour)
	require.NoError(t, err)

	affected, err := DeactivateExpiredTokens(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// rows are kept for audit, only the flag flips
	tokens, err := UserTokens(db, user.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
}
