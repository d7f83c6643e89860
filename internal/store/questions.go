package store

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"intervuex-backend-go/internal/models"
)

type questionRow struct {
	ID                    string    `db:"id"`
	SessionID             string    `db:"session_id"`
	Number                int       `db:"question_number"`
	Text                  string    `db:"question_text"`
	QuestionType          string    `db:"question_type"`
	Difficulty            string    `db:"difficulty"`
	CandidateResponseText string    `db:"candidate_response_text"`
	CandidateCode         string    `db:"candidate_code"`
	VoiceTranscript       string    `db:"voice_transcript"`
	Analysis              string    `db:"ai_analysis_json"`
	CodeCorrectnessScore  float64   `db:"code_correctness_score"`
	ApproachScore         float64   `db:"approach_score"`
	CommunicationScore    float64   `db:"communication_score"`
	FollowUpQuestions     string    `db:"follow_up_questions_json"`
	SuggestedSolutions    string    `db:"suggested_solutions_json"`
	CreatedAt             time.Time `db:"created_at"`
}

func (r questionRow) decode() *models.Question {
	question := models.Question{
		ID:                    r.ID,
		SessionID:             r.SessionID,
		Number:                r.Number,
		Text:                  r.Text,
		QuestionType:          r.QuestionType,
		Difficulty:            r.Difficulty,
		CandidateResponseText: r.CandidateResponseText,
		CandidateCode:         r.CandidateCode,
		VoiceTranscript:       r.VoiceTranscript,
		CodeCorrectnessScore:  r.CodeCorrectnessScore,
		ApproachScore:         r.ApproachScore,
		CommunicationScore:    r.CommunicationScore,
		FollowUpQuestions:     []string{},
		SuggestedSolutions:    []models.SuggestedSolution{},
		CreatedAt:             r.CreatedAt,
	}
	if r.Analysis != "" && r.Analysis != "{}" {
		var analysis models.QuestionAnalysis
		if err := json.Unmarshal([]byte(r.Analysis), &analysis); err == nil {
			question.Analysis = &analysis
		}
	}
	_ = json.Unmarshal([]byte(r.FollowUpQuestions), &question.FollowUpQuestions)
	_ = json.Unmarshal([]byte(r.SuggestedSolutions), &question.SuggestedSolutions)
	return &question
}

// SaveQuestion persists a newly issued question. Numbers within a session are
// unique and contiguous from 1; the caller supplies the next ordinal.
func SaveQuestion(db *sqlx.DB, sessionID string, number int, text, questionType, difficulty string) (*models.Question, error) {
	if number < 1 {
		return nil, errValidation("question number must start at 1")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errValidation("question text is required")
	}
	question := models.Question{
		ID:                 uuid.NewString(),
		SessionID:          sessionID,
		Number:             number,
		Text:               text,
		QuestionType:       questionType,
		Difficulty:         difficulty,
		FollowUpQuestions:  []string{},
		SuggestedSolutions: []models.SuggestedSolution{},
		CreatedAt:          time.Now().UTC(),
	}
	_, err := db.Exec(`
INSERT INTO interview_questions (id, session_id, question_number, question_text, question_type, difficulty, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, question.ID, question.SessionID, question.Number, question.Text, question.QuestionType, question.Difficulty, question.CreatedAt)
	if err != nil {
		return nil, wrap("save question", err)
	}
	return &question, nil
}

// QuestionResponse is everything written back onto a question once the
// candidate has answered. May be applied more than once if the candidate
// revises before moving on.
type QuestionResponse struct {
	ResponseText       string
	Code               string
	VoiceTranscript    string
	Analysis           *models.QuestionAnalysis
	CodeScore          float64
	ApproachScore      float64
	CommunicationScore float64
	FollowUpQuestions  []string
	SuggestedSolutions []models.SuggestedSolution
}

func UpdateQuestionResponse(db *sqlx.DB, questionID string, response QuestionResponse) error {
	analysis := []byte("{}")
	if response.Analysis != nil {
		analysis, _ = json.Marshal(response.Analysis)
	}
	followUps, _ := json.Marshal(orEmptyStrings(response.FollowUpQuestions))
	solutions := []byte("[]")
	if response.SuggestedSolutions != nil {
		solutions, _ = json.Marshal(response.SuggestedSolutions)
	}
	_, err := db.Exec(`
UPDATE interview_questions
SET candidate_response_text = $1,
    candidate_code = $2,
    voice_transcript = $3,
    ai_analysis_json = $4,
    code_correctness_score = $5,
    approach_score = $6,
    communication_score = $7,
    follow_up_questions_json = $8,
    suggested_solutions_json = $9
WHERE id = $10
`, response.ResponseText, response.Code, response.VoiceTranscript, string(analysis),
		response.CodeScore, response.ApproachScore, response.CommunicationScore, string(followUps), string(solutions), questionID)
	return wrap("update question response", err)
}

func SessionQuestions(db *sqlx.DB, sessionID string) ([]*models.Question, error) {
	rows := []questionRow{}
	err := db.Select(&rows, `
SELECT * FROM interview_questions WHERE session_id = $1 ORDER BY question_number
`, sessionID)
	if err != nil {
		return nil, wrap("session questions", err)
	}
	questions := make([]*models.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.decode())
	}
	return questions, nil
}
