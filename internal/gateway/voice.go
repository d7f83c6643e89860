package gateway

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const voiceAgentSystem = `You are a senior technical interviewer conducting a live real-time coding interview via voice.

BEHAVIOR RULES:
1. Start professionally and greet the candidate briefly.
2. Ask ONE coding problem clearly and concisely.
3. After asking, wait for the candidate explanation. Do NOT immediately evaluate.
4. Let the candidate explain; ask clarifying questions if unclear.
5. Ask at least ONE follow-up that tests deeper understanding.
6. Keep natural short sentences suitable for voice (2-4 sentences per turn).
7. If answer is shallow, prompt: walk me through it step by step, what is the time complexity, can it be optimized?
8. Challenge assumptions when necessary.
9. Guide on errors instead of directly correcting.
10. Simulate realistic pressure but stay professional and encouraging.
Never output JSON during conversation. Never give away the answer directly.`

const voiceEvalSystem = `You are a strict coding interview evaluator.
The conversation below is a completed interview.
Return ONLY the JSON below, no prose, no markdown fences.

{
  "question_asked": "string",
  "follow_up_question": "string",
  "scores": {
    "problem_understanding": 0,
    "logical_reasoning": 0,
    "data_structure_selection": 0,
    "algorithmic_efficiency": 0,
    "optimization_awareness": 0,
    "edge_case_handling": 0,
    "communication_clarity": 0
  },
  "overall_score": 0.0,
  "strengths": ["string"],
  "areas_of_improvement": ["string"],
  "optimization_suggestions": ["string"],
  "final_feedback_summary": "string"
}

Score each dimension 0-10: 0-3 weak, 4-6 basic, 7-8 strong, 9-10 excellent.
overall_score is the weighted average of all 7 scores.`

// VoiceAgentTurn produces the interviewer's next spoken turn. Only the last
// 20 transcript turns are replayed to the model.
func (g *Gateway) VoiceAgentTurn(ctx context.Context, history []Turn, userMessage string,
	question *GeneratedQuestion, skills Skills) (string, bool) {

	system := voiceAgentSystem
	if len(skills) > 0 {
		system += "\nCandidate skills: " + strings.Join(skills, ", ")
	}
	if question != nil {
		system += "\nCurrent question: " + question.Title + " - " + question.Description +
			"\nExpected approach: " + question.ExpectedApproach +
			"\nOptimal complexity: " + question.TimeComplexity
	}
	messages := []Message{{Role: "system", Content: system}}
	turns := history
	if len(turns) > 20 {
		turns = turns[len(turns)-20:]
	}
	for _, turn := range turns {
		role := "user"
		if turn.Role == "interviewer" {
			role = "assistant"
		}
		messages = append(messages, Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, Message{Role: "user", Content: userMessage})

	reply, err := g.complete(ctx, ChatRequest{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			g.log.Warn("voice turn failed, using fallback", zap.Error(err))
		}
		return "Let's keep going. Can you walk me through your approach step by step?", true
	}
	return strings.TrimSpace(reply), false
}

// VoiceScores is the 7-dimension rubric of a voice interview, each 0..10.
type VoiceScores struct {
	ProblemUnderstanding   float64 `json:"problem_understanding"`
	LogicalReasoning       float64 `json:"logical_reasoning"`
	DataStructureSelection float64 `json:"data_structure_selection"`
	AlgorithmicEfficiency  float64 `json:"algorithmic_efficiency"`
	OptimizationAwareness  float64 `json:"optimization_awareness"`
	EdgeCaseHandling       float64 `json:"edge_case_handling"`
	CommunicationClarity   float64 `json:"communication_clarity"`
}

type VoiceEvaluation struct {
	QuestionAsked           string      `json:"question_asked"`
	FollowUpQuestion        string      `json:"follow_up_question"`
	Scores                  VoiceScores `json:"scores"`
	OverallScore            float64     `json:"overall_score"`
	Strengths               []string    `json:"strengths"`
	AreasOfImprovement      []string    `json:"areas_of_improvement"`
	OptimizationSuggestions []string    `json:"optimization_suggestions"`
	FinalFeedbackSummary    string      `json:"final_feedback_summary"`
}

// VoiceAgentEvaluation scores a completed voice interview. The fallback pins
// every dimension at 5.
func (g *Gateway) VoiceAgentEvaluation(ctx context.Context, history []Turn) (*VoiceEvaluation, bool) {
	var transcript strings.Builder
	for _, turn := range history {
		transcript.WriteString(strings.ToUpper(turn.Role))
		transcript.WriteString(": ")
		transcript.WriteString(turn.Content)
		transcript.WriteString("\n")
	}
	var eval VoiceEvaluation
	ok := g.completeJSON(ctx, "voice_agent_evaluation", ChatRequest{
		Messages: []Message{
			{Role: "system", Content: voiceEvalSystem},
			{Role: "user", Content: "Interview transcript:\n\n" + transcript.String() + "\n\nGenerate evaluation JSON now."},
		},
		Temperature: 0.2,
		MaxTokens:   1500,
	}, &eval)
	if !ok {
		return &VoiceEvaluation{
			QuestionAsked:    "Unknown",
			FollowUpQuestion: "N/A",
			Scores: VoiceScores{
				ProblemUnderstanding: 5, LogicalReasoning: 5, DataStructureSelection: 5,
				AlgorithmicEfficiency: 5, OptimizationAwareness: 5, EdgeCaseHandling: 5,
				CommunicationClarity: 5,
			},
			OverallScore:            5,
			Strengths:               []string{},
			AreasOfImprovement:      []string{},
			OptimizationSuggestions: []string{},
			FinalFeedbackSummary:    "Could not parse evaluation. Please try again.",
		}, true
	}
	return &eval, false
}
