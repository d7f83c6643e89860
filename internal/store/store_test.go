package store

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"intervuex-backend-go/internal/migrations"
	"intervuex-backend-go/internal/models"
)

// newTestDB opens an in-memory sqlite database and applies the real
// migration files. The store only uses portable SQL, so the same
// statements run against both postgres and sqlite.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// a second pool connection would see a different, empty :memory: db
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(db, "../../migrations"))
	return db
}

func seedUser(t *testing.T, db *sqlx.DB, email string) *models.User {
	t.Helper()
	user, err := CreateUser(db, "Test User", email, "not-a-real-hash")
	require.NoError(t, err)
	return user
}

func seedSession(t *testing.T, db *sqlx.DB, userID, sessionType string) *models.InterviewSession {
	t.Helper()
	session, err := CreateSession(db, userID, sessionType, "medium", nil, 3)
	require.NoError(t, err)
	return session
}
