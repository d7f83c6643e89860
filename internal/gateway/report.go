package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"intervuex-backend-go/internal/models"
)

// QuestionSummary is the per-question digest fed into final report
// generation.
type QuestionSummary struct {
	Question           string  `json:"question"`
	CodeScore          float64 `json:"code_score"`
	ApproachScore      float64 `json:"approach_score"`
	CommunicationScore float64 `json:"communication_score"`
	Analysis           string  `json:"analysis"`
}

// FinalReport is the session-level assessment. Scores are 0..100.
type FinalReport struct {
	OverallScore        float64                `json:"overall_score"`
	TechnicalScore      float64                `json:"technical_score"`
	CommunicationScore  float64                `json:"communication_score"`
	ReasoningScore      float64                `json:"reasoning_score"`
	ProblemSolvingScore float64                `json:"problem_solving_score"`
	IntegrityNote       string                 `json:"integrity_note"`
	ExecutiveSummary    string                 `json:"executive_summary"`
	DetailedFeedback    models.FeedbackDetails `json:"detailed_feedback"`
	InterviewReadiness  string                 `json:"interview_readiness"`
	Recommendation      string                 `json:"recommendation"`
}

// GenerateFinalReport scores the whole session. The fallback pins all scores
// at 50 so a model outage never blocks completion.
func (g *Gateway) GenerateFinalReport(ctx context.Context, summaries []QuestionSummary,
	sessionType string, violations int) (*FinalReport, bool) {

	encoded, _ := json.MarshalIndent(summaries, "", "  ")
	system := fmt.Sprintf(`You are generating a final interview assessment report.
Interview type: %s
Tab violations during interview: %d

Questions and performance:
%s

Generate a comprehensive report. Return JSON:
{
    "overall_score": 0-100,
    "technical_score": 0-100,
    "communication_score": 0-100,
    "reasoning_score": 0-100,
    "problem_solving_score": 0-100,
    "integrity_note": "Note about tab violations if any",
    "executive_summary": "2-3 sentence overall assessment",
    "detailed_feedback": {
        "technical_skills": "Paragraph about technical ability",
        "problem_solving": "Paragraph about problem-solving approach",
        "communication": "Paragraph about communication skills",
        "areas_of_strength": ["strength1", "strength2", "strength3"],
        "areas_for_improvement": ["improvement1", "improvement2", "improvement3"],
        "recommended_topics_to_study": ["topic1", "topic2", "topic3"]
    },
    "interview_readiness": "ready/almost_ready/needs_preparation",
    "recommendation": "Strong recommendation paragraph"
}
Return ONLY valid JSON.`, sessionType, violations, string(encoded))

	var report FinalReport
	ok := g.completeJSON(ctx, "generate_final_report", ChatRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: "Generate the final report."},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	}, &report)
	if !ok {
		return &FinalReport{
			OverallScore:        50,
			TechnicalScore:      50,
			CommunicationScore:  50,
			ReasoningScore:      50,
			ProblemSolvingScore: 50,
			ExecutiveSummary:    "Interview completed. Unable to generate detailed report.",
			DetailedFeedback: models.FeedbackDetails{
				TechnicalSkills:   "N/A",
				ProblemSolving:    "N/A",
				Communication:     "N/A",
				Strengths:         []string{},
				Improvements:      []string{},
				RecommendedTopics: []string{},
			},
			InterviewReadiness: "needs_preparation",
			Recommendation:     "Please try the interview again for a more accurate assessment.",
		}, true
	}
	report.OverallScore = clampScore(report.OverallScore, 100)
	report.TechnicalScore = clampScore(report.TechnicalScore, 100)
	report.CommunicationScore = clampScore(report.CommunicationScore, 100)
	report.ReasoningScore = clampScore(report.ReasoningScore, 100)
	report.ProblemSolvingScore = clampScore(report.ProblemSolvingScore, 100)
	return &report, false
}
