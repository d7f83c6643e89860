package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"intervuex-backend-go/internal/models"
)

// BehavioralQuestion is one prepared question for a behavioral session.
// Sessions draw questions from a pre-generated batch instead of calling the
// model per question.
type BehavioralQuestion struct {
	Question      string   `json:"question"`
	Category      string   `json:"category"`
	WhatToLookFor string   `json:"what_to_look_for"`
	FollowUps     []string `json:"follow_ups"`
}

// GenerateBehavioralQuestions prepares a batch of eight personalized
// questions mixing behavioral and situational styles.
func (g *Gateway) GenerateBehavioralQuestions(ctx context.Context, skills Skills,
	experience []models.ExperienceEntry, role, memoryContext string) ([]BehavioralQuestion, bool) {

	if role == "" {
		role = "Software Engineer"
	}
	expContext := "entry-level"
	if len(experience) > 0 {
		top := experience
		if len(top) > 3 {
			top = top[:3]
		}
		if encoded, err := json.Marshal(top); err == nil {
			expContext = string(encoded)
		}
	}
	system := fmt.Sprintf(`You are an HR interviewer preparing questions for a %s position.
Candidate's skills: %s
Candidate's experience: %s
%s

Generate 8 HR interview questions personalized to this candidate. Mix behavioral and situational questions.
Return a JSON array of objects:
[
    {
        "question": "The question text",
        "category": "behavioral/situational/technical-behavioral/culture-fit",
        "what_to_look_for": "Key points in an ideal answer",
        "follow_ups": ["follow-up 1", "follow-up 2"]
    }
]
Return ONLY valid JSON.`, role, skills.orDefault("general software development"), expContext, memoryContext)

	var questions []BehavioralQuestion
	ok := g.completeJSON(ctx, "generate_behavioral_questions", ChatRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: "Generate the HR interview questions."},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	}, &questions)
	if !ok || len(questions) == 0 {
		return []BehavioralQuestion{
			{
				Question:      "Tell me about yourself.",
				Category:      "behavioral",
				WhatToLookFor: "Clear, structured response",
				FollowUps:     []string{"What motivated your career choice?"},
			},
			{
				Question:      "Describe a challenging project you worked on.",
				Category:      "behavioral",
				WhatToLookFor: "Problem-solving ability",
				FollowUps:     []string{"What was the outcome?"},
			},
		}, true
	}
	return questions, false
}

// BehavioralAssessment is the judgment of one behavioral answer.
type BehavioralAssessment struct {
	CommunicationScore float64  `json:"communication_score"`
	RelevanceScore     float64  `json:"relevance_score"`
	DepthScore         float64  `json:"depth_score"`
	ConfidenceLevel    string   `json:"confidence_level"`
	KeyPointsCovered   []string `json:"key_points_covered"`
	MissingPoints      []string `json:"missing_points"`
	Feedback           string   `json:"feedback"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	FollowUpQuestions  []string `json:"follow_up_questions"`
}

func (g *Gateway) AnalyzeBehavioralResponse(ctx context.Context, question, responseText,
	whatToLookFor, memoryContext string) (*BehavioralAssessment, bool) {

	system := fmt.Sprintf(`You are an expert HR interviewer analyzing a candidate's response.
%s
Question: %s
Key points to evaluate: %s

Candidate's response: "%s"

Return a JSON object:
{
    "communication_score": 0-10,
    "relevance_score": 0-10,
    "depth_score": 0-10,
    "confidence_level": "high/medium/low",
    "key_points_covered": ["point1", "point2"],
    "missing_points": ["point1", "point2"],
    "feedback": "Constructive feedback paragraph",
    "strengths": ["strength1"],
    "improvements": ["improvement1"],
    "follow_up_questions": ["question1", "question2"]
}
Return ONLY valid JSON.`, memoryContext, question, whatToLookFor, responseText)

	var assessment BehavioralAssessment
	ok := g.completeJSON(ctx, "analyze_behavioral_response", ChatRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: "Analyze the candidate's response."},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	}, &assessment)
	if !ok {
		return &BehavioralAssessment{
			CommunicationScore: 5,
			RelevanceScore:     5,
			DepthScore:         5,
			ConfidenceLevel:    "medium",
			KeyPointsCovered:   []string{},
			MissingPoints:      []string{},
			Feedback:           "Unable to fully analyze.",
			Strengths:          []string{},
			Improvements:       []string{},
			FollowUpQuestions:  []string{},
		}, true
	}
	assessment.CommunicationScore = clampScore(assessment.CommunicationScore, 10)
	assessment.RelevanceScore = clampScore(assessment.RelevanceScore, 10)
	assessment.DepthScore = clampScore(assessment.DepthScore, 10)
	return &assessment, false
}
