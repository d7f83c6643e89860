package store

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

type resumeRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Filename   string    `db:"filename"`
	RawText    string    `db:"raw_text"`
	Skills     string    `db:"skills_json"`
	Experience string    `db:"experience_json"`
	Education  string    `db:"education_json"`
	Summary    string    `db:"summary"`
	UploadedAt time.Time `db:"uploaded_at"`
}

func (r resumeRow) decode() *models.Resume {
	resume := models.Resume{
		ID:         r.ID,
		UserID:     r.UserID,
		Filename:   r.Filename,
		RawText:    r.RawText,
		Summary:    r.Summary,
		UploadedAt: r.UploadedAt,
		Skills:     []string{},
		Experience: []models.ExperienceEntry{},
		Education:  []models.EducationEntry{},
	}
	_ = json.Unmarshal([]byte(r.Skills), &resume.Skills)
	_ = json.Unmarshal([]byte(r.Experience), &resume.Experience)
	_ = json.Unmarshal([]byte(r.Education), &resume.Education)
	return &resume
}

// SaveResume inserts a new resume row. Rows are immutable; re-uploads create
// new rows so history is preserved.
func SaveResume(db *sqlx.DB, resume *models.Resume) (*models.Resume, error) {
	if strings.TrimSpace(resume.UserID) == "" || strings.TrimSpace(resume.Filename) == "" {
		return nil, errValidation("resume requires owner and filename")
	}
	stored := *resume
	stored.ID = uuid.NewString()
	stored.UploadedAt = time.Now().UTC()
	skills, _ := json.Marshal(orEmptyStrings(stored.Skills))
	experience, _ := json.Marshal(stored.Experience)
	education, _ := json.Marshal(stored.Education)
	_, err := db.Exec(`
INSERT INTO resumes (id, user_id, filename, raw_text, skills_json, experience_json, education_json, summary, uploaded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, stored.ID, stored.UserID, stored.Filename, stored.RawText, string(skills), string(experience), string(education), stored.Summary, stored.UploadedAt)
	if err != nil {
		return nil, wrap("save resume", err)
	}
	return &stored, nil
}

// LatestResume returns the newest resume for a user, or nil when none exists.
func LatestResume(db *sqlx.DB, userID string) (*models.Resume, error) {
	rows := []resumeRow{}
	err := db.Select(&rows, `
SELECT * FROM resumes WHERE user_id = $1 ORDER BY uploaded_at DESC LIMIT 1
`, userID)
	if err != nil {
		return nil, wrap("latest resume", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].decode(), nil
}

func ListResumes(db *sqlx.DB, userID string) ([]*models.Resume, error) {
	rows := []resumeRow{}
	err := db.Select(&rows, `
SELECT * FROM resumes WHERE user_id = $1 ORDER BY uploaded_at DESC
`, userID)
	if err != nil {
		return nil, wrap("list resumes", err)
	}
	resumes := make([]*models.Resume, 0, len(rows))
	for _, row := range rows {
		resumes = append(resumes, row.decode())
	}
	return resumes, nil
}

func orEmptyStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
