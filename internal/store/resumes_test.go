package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intervuex-backend-go/internal/models"
)

func TestSaveResumeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "resume@example.com")

	saved, err := SaveResume(db, &models.Resume{
		UserID:   user.ID,
		Filename: "ada.pdf",
		RawText:  "raw resume text",
		Skills:   []string{"go", "postgres"},
		Experience: []models.ExperienceEntry{
			{Title: "Engineer", Company: "Initech", Duration: "3 years"},
		},
		Education: []models.EducationEntry{
			{Degree: "BSc", Institution: "MIT", Year: "2019"},
		},
		Summary: "Backend engineer.",
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := LatestResume(db, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, []string{"go", "postgres"}, got.Skills)
	require.Len(t, got.Experience, 1)
	assert.Equal(t, "Initech", got.Experience[0].Company)
	require.Len(t, got.Education, 1)
	assert.Equal(t, "MIT", got.Education[0].Institution)
}

func TestLatestResumeNilWhenAbsent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "resume2@example.com")

	got, err := LatestResume(db, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLatestResumePicksNewestUpload(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "resume3@example.com")

	older, err := SaveResume(db, &models.Resume{UserID: user.ID, Filename: "v1.pdf"})
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE resumes SET uploaded_at = $1 WHERE id = $2`,
		time.Now().UTC().Add(-time.Hour), older.ID)
	require.NoError(t, err)

	newer, err := SaveResume(db, &models.Resume{UserID: user.ID, Filename: "v2.pdf"})
	require.NoError(t, err)

	got, err := LatestResume(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	all, err := ListResumes(db, user.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
