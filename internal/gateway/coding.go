package gateway

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"intervuex-backend-go/internal/models"
)

type QuestionExample struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation"`
}

// GeneratedQuestion is one coding problem produced for a session.
type GeneratedQuestion struct {
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	Examples         []QuestionExample `json:"examples"`
	Constraints      []string          `json:"constraints"`
	Hints            []string          `json:"hints"`
	ExpectedApproach string            `json:"expected_approach"`
	TimeComplexity   string            `json:"time_complexity"`
	SpaceComplexity  string            `json:"space_complexity"`
	TopicTags        []string          `json:"topic_tags"`
	Difficulty       string            `json:"difficulty"`
	StarterCode      string            `json:"starter_code_python"`
}

// QuestionParams steers generation for one question.
type QuestionParams struct {
	Skills         Skills
	Difficulty     string
	Topic          string
	PreviousTitles []string
	MemoryContext  string
}

type Skills []string

func (s Skills) orDefault(fallback string) string {
	if len(s) == 0 {
		return fallback
	}
	return strings.Join(s, ", ")
}

// GenerateCodingQuestion asks for the next problem. On any upstream or
// decode failure it returns the canonical Two Sum fallback, flagged degraded.
func (g *Gateway) GenerateCodingQuestion(ctx context.Context, params QuestionParams) (*GeneratedQuestion, bool) {
	prevContext := ""
	if len(params.PreviousTitles) > 0 {
		titles := params.PreviousTitles
		if len(titles) > 5 {
			titles = titles[len(titles)-5:]
		}
		prevContext = "\n\nAvoid these previously asked questions:\n- " + strings.Join(titles, "\n- ")
	}
	topicContext := ""
	if params.Topic != "" {
		topicContext = "\nFocus on the topic: " + params.Topic
	}
	system := fmt.Sprintf(`You are an expert technical interviewer conducting a coding interview.
The candidate has skills in: %s
Difficulty level: %s%s%s
%s

Generate a coding interview question. Return a JSON object:
{
    "title": "Problem title",
    "description": "Detailed problem description with examples",
    "examples": [
        {"input": "...", "output": "...", "explanation": "..."}
    ],
    "constraints": ["constraint1", "constraint2"],
    "hints": ["hint1", "hint2"],
    "expected_approach": "Brief description of optimal approach",
    "time_complexity": "Expected optimal time complexity",
    "space_complexity": "Expected optimal space complexity",
    "topic_tags": ["Array", "Dynamic Programming", etc.],
    "difficulty": "%s",
    "starter_code_python": "def solution(...):\n    # Your code here\n    pass"
}
Return ONLY valid JSON.`,
		params.Skills.orDefault("general programming"), params.Difficulty,
		topicContext, prevContext, params.MemoryContext, params.Difficulty)

	var question GeneratedQuestion
	ok := g.completeJSON(ctx, "generate_coding_question", ChatRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: "Generate the next interview question."},
		},
		Temperature: 0.8,
		MaxTokens:   1500,
	}, &question)
	if !ok || strings.TrimSpace(question.Title) == "" {
		return fallbackQuestion(params.Difficulty), true
	}
	return &question, false
}

func fallbackQuestion(difficulty string) *GeneratedQuestion {
	return &GeneratedQuestion{
		Title:       "Two Sum",
		Description: "Given an array of integers nums and an integer target, return indices of the two numbers such that they add up to target.",
		Examples: []QuestionExample{{
			Input:       "nums = [2,7,11,15], target = 9",
			Output:      "[0,1]",
			Explanation: "Because nums[0] + nums[1] == 9",
		}},
		Constraints:      []string{"2 <= nums.length <= 10^4", "-10^9 <= nums[i] <= 10^9"},
		Hints:            []string{"Think about using a hash map"},
		ExpectedApproach: "Use a hash map to store complements",
		TimeComplexity:   "O(n)",
		SpaceComplexity:  "O(n)",
		TopicTags:        []string{"Array", "Hash Table"},
		Difficulty:       difficulty,
		StarterCode:      "def solution(nums, target):\n    # Your code here\n    pass",
	}
}

// CodingAssessment bundles the structured judgment of one answer with the
// interviewer's follow-up material.
type CodingAssessment struct {
	models.QuestionAnalysis
	FollowUpQuestions  []string                   `json:"follow_up_questions"`
	SuggestedSolutions []models.SuggestedSolution `json:"suggested_solutions"`
}

// AnalyzeCodingResponse judges a candidate's code and verbal explanation
// against the question. Sub-scores are clamped to 0..10.
func (g *Gateway) AnalyzeCodingResponse(ctx context.Context, question *GeneratedQuestion,
	code, voiceTranscript string, history []Turn, memoryContext string) (*CodingAssessment, bool) {

	convContext := ""
	if len(history) > 0 {
		convContext = "\n\nConversation so far:\n" + transcriptBlock(history, 10)
	}
	system := fmt.Sprintf(`You are an expert technical interviewer analyzing a candidate's response.
%s
Question: %s: %s
Expected approach: %s
Expected time complexity: %s
Expected space complexity: %s
%s

Candidate's code:
`+"```\n%s\n```"+`

Candidate's verbal explanation:
"%s"

Analyze the response thoroughly. Return a JSON object:
{
    "code_correctness": {
        "score": 0-10,
        "is_correct": true/false,
        "issues": ["issue1", "issue2"],
        "edge_cases_handled": true/false
    },
    "approach_analysis": {
        "score": 0-10,
        "approach_used": "description of approach",
        "is_optimal": true/false,
        "time_complexity_achieved": "O(...)",
        "space_complexity_achieved": "O(...)",
        "reasoning_quality": "excellent/good/fair/poor"
    },
    "communication_analysis": {
        "score": 0-10,
        "clarity": "excellent/good/fair/poor",
        "structure": "excellent/good/fair/poor",
        "technical_vocabulary": "excellent/good/fair/poor",
        "explanation_quality": "Brief assessment"
    },
    "overall_feedback": "Detailed constructive feedback paragraph",
    "strengths": ["strength1", "strength2"],
    "improvements": ["improvement1", "improvement2"],
    "follow_up_questions": [
        "Follow-up question 1 to probe deeper understanding",
        "Follow-up question 2 about optimization",
        "Follow-up question 3 about edge cases"
    ],
    "suggested_solutions": [
        {
            "approach": "Approach name",
            "description": "Brief description",
            "code": "Code for this approach",
            "time_complexity": "O(...)",
            "space_complexity": "O(...)"
        }
    ]
}
Return ONLY valid JSON.`,
		memoryContext, question.Title, question.Description, question.ExpectedApproach,
		question.TimeComplexity, question.SpaceComplexity, convContext, code, voiceTranscript)

	var assessment CodingAssessment
	ok := g.completeJSON(ctx, "analyze_coding_response", ChatRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: "Analyze the candidate's response now."},
		},
		Temperature: 0.3,
		MaxTokens:   3000,
	}, &assessment)
	if !ok {
		return fallbackAssessment(), true
	}
	assessment.CodeCorrectness.Score = clampScore(assessment.CodeCorrectness.Score, 10)
	assessment.ApproachAnalysis.Score = clampScore(assessment.ApproachAnalysis.Score, 10)
	assessment.CommunicationAnalysis.Score = clampScore(assessment.CommunicationAnalysis.Score, 10)
	if assessment.FollowUpQuestions == nil {
		assessment.FollowUpQuestions = []string{}
	}
	if assessment.SuggestedSolutions == nil {
		assessment.SuggestedSolutions = []models.SuggestedSolution{}
	}
	return &assessment, false
}

func fallbackAssessment() *CodingAssessment {
	return &CodingAssessment{
		QuestionAnalysis: models.QuestionAnalysis{
			CodeCorrectness: models.CodeCorrectness{
				Score: 5, IsCorrect: false, Issues: []string{"Unable to analyze"}, EdgeCasesHandled: false,
			},
			ApproachAnalysis: models.ApproachAnalysis{
				Score: 5, ApproachUsed: "Unknown", IsOptimal: false,
				TimeComplexity: "Unknown", SpaceComplexity: "Unknown", ReasoningQuality: "fair",
			},
			CommunicationAnalysis: models.CommunicationAnalysis{
				Score: 5, Clarity: "fair", Structure: "fair",
				TechnicalVocabulary: "fair", ExplanationQuality: "Unable to fully analyze",
			},
			OverallFeedback: "Unable to fully analyze the response. Please try again.",
			Strengths:       []string{},
			Improvements:    []string{},
		},
		FollowUpQuestions:  []string{"Can you explain your approach in more detail?"},
		SuggestedSolutions: []models.SuggestedSolution{},
	}
}

// NextInterviewerMessage produces the interviewer's next conversational
// reply. The fallback is a neutral nudge rather than silence.
func (g *Gateway) NextInterviewerMessage(ctx context.Context, question *GeneratedQuestion,
	history []Turn, assessment *CodingAssessment, memoryContext string) (string, bool) {

	analysisContext := ""
	if assessment != nil {
		analysisContext = fmt.Sprintf(`
Current analysis of candidate:
- Code correctness: %.0f/10
- Approach: %.0f/10
- Communication: %.0f/10
`, assessment.CodeCorrectness.Score, assessment.ApproachAnalysis.Score, assessment.CommunicationAnalysis.Score)
	}
	system := fmt.Sprintf(`You are a friendly but thorough technical interviewer conducting a coding interview.
You should respond naturally, like a real interviewer would.
%s
Current question: %s: %s
%s

Guidelines:
- If the candidate is on the right track, encourage them and ask probing questions
- If they're stuck, give subtle hints without giving away the answer
- Ask about time/space complexity when appropriate
- Probe for edge case handling
- Keep responses concise (2-4 sentences)
- Be professional and encouraging`,
		memoryContext, question.Title, question.Description, analysisContext)

	reply, err := g.complete(ctx, ChatRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: "Conversation so far:\n" + transcriptBlock(history, 10) +
				"\nGenerate the interviewer's next response."},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			g.log.Warn("interviewer reply failed, using fallback", zap.Error(err))
		}
		return "Thanks for that. Could you walk me through your approach and its time complexity?", true
	}
	return strings.TrimSpace(reply), false
}
