package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedCompleter replays canned replies in order and records every
// request it saw.
type scriptedCompleter struct {
	replies  []string
	err      error
	requests []ChatRequest
}

func (c *scriptedCompleter) Complete(_ context.Context, req ChatRequest) (string, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func testGateway(completer Completer) *Gateway {
	return New(completer, zap.NewNop(), time.Second)
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                          `{"a":1}`,
		"```json\n{\"a\":1}\n```":          `{"a":1}`,
		"```\n{\"a\":1}\n```":              `{"a":1}`,
		"  \n```json\n[1, 2]\n```\n  ":     `[1, 2]`,
		"no fences here": "no fences here",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in), "input %q", in)
	}
}

func TestGenerateCodingQuestionAcceptsFencedJSON(t *testing.T) {
	payload := `{"title": "Valid Parentheses", "description": "Check bracket balance.", "difficulty": "easy"}`
	for _, reply := range []string{payload, "```json\n" + payload + "\n```"} {
		completer := &scriptedCompleter{replies: []string{reply}}
		g := testGateway(completer)

		question, degraded := g.GenerateCodingQuestion(context.Background(), QuestionParams{Difficulty: "easy"})
		require.False(t, degraded)
		assert.Equal(t, "Valid Parentheses", question.Title)
	}
}

func TestGenerateCodingQuestionParameters(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{`{"title": "X", "description": "Y"}`}}
	g := testGateway(completer)

	_, _ = g.GenerateCodingQuestion(context.Background(), QuestionParams{
		Skills:         Skills{"go", "sql"},
		Difficulty:     "hard",
		Topic:          "graphs",
		PreviousTitles: []string{"Two Sum"},
	})
	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.Equal(t, float32(0.8), req.Temperature)
	assert.Equal(t, 1500, req.MaxTokens)
	assert.Contains(t, req.Messages[0].Content, "go, sql")
	assert.Contains(t, req.Messages[0].Content, "graphs")
	assert.Contains(t, req.Messages[0].Content, "Two Sum")
}

func TestGenerateCodingQuestionFallsBackOnError(t *testing.T) {
	g := testGateway(&scriptedCompleter{err: errors.New("upstream down")})

	question, degraded := g.GenerateCodingQuestion(context.Background(), QuestionParams{Difficulty: "medium"})
	require.True(t, degraded)
	assert.Equal(t, "Two Sum", question.Title)
	assert.Equal(t, "medium", question.Difficulty)
}

func TestGenerateCodingQuestionFallsBackOnMissingTitle(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{`{"description": "no title"}`}})

	question, degraded := g.GenerateCodingQuestion(context.Background(), QuestionParams{Difficulty: "easy"})
	require.True(t, degraded)
	assert.Equal(t, "Two Sum", question.Title)
}

func TestAnalyzeCodingResponseClampsScores(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{`{
		"code_correctness": {"score": 14, "is_correct": true},
		"approach_analysis": {"score": -3},
		"communication_analysis": {"score": 7}
	}`}})

	assessment, degraded := g.AnalyzeCodingResponse(context.Background(),
		fallbackQuestion("easy"), "code", "transcript", nil, "")
	require.False(t, degraded)
	assert.Equal(t, 10.0, assessment.CodeCorrectness.Score)
	assert.Equal(t, 0.0, assessment.ApproachAnalysis.Score)
	assert.Equal(t, 7.0, assessment.CommunicationAnalysis.Score)
	assert.NotNil(t, assessment.FollowUpQuestions)
	assert.NotNil(t, assessment.SuggestedSolutions)
}

func TestAnalyzeCodingResponseFallsBack(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{"I cannot produce JSON today"}})

	assessment, degraded := g.AnalyzeCodingResponse(context.Background(),
		fallbackQuestion("easy"), "code", "", nil, "")
	require.True(t, degraded)
	assert.Equal(t, 5.0, assessment.CodeCorrectness.Score)
	assert.Equal(t, 5.0, assessment.ApproachAnalysis.Score)
	assert.Equal(t, 5.0, assessment.CommunicationAnalysis.Score)
	assert.NotEmpty(t, assessment.FollowUpQuestions)
}

func TestNextInterviewerMessageFallsBackOnEmptyReply(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{"   \n"}})

	reply, degraded := g.NextInterviewerMessage(context.Background(), fallbackQuestion("easy"), nil, nil, "")
	require.True(t, degraded)
	assert.Contains(t, reply, "walk me through your approach")
}

func TestNextInterviewerMessageTrimsReply(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{"  Nice, what is the complexity?  "}})

	reply, degraded := g.NextInterviewerMessage(context.Background(), fallbackQuestion("easy"), nil, nil, "")
	require.False(t, degraded)
	assert.Equal(t, "Nice, what is the complexity?", reply)
}

func TestGenerateFinalReportClampsTo100(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{`{
		"overall_score": 150,
		"technical_score": 88,
		"communication_score": -20,
		"reasoning_score": 70,
		"problem_solving_score": 101,
		"executive_summary": "Great."
	}`}})

	report, degraded := g.GenerateFinalReport(context.Background(), nil, "coding", 0)
	require.False(t, degraded)
	assert.Equal(t, 100.0, report.OverallScore)
	assert.Equal(t, 88.0, report.TechnicalScore)
	assert.Equal(t, 0.0, report.CommunicationScore)
	assert.Equal(t, 100.0, report.ProblemSolvingScore)
}

func TestGenerateFinalReportFallsBackAt50(t *testing.T) {
	g := testGateway(&scriptedCompleter{err: errors.New("timeout")})

	report, degraded := g.GenerateFinalReport(context.Background(), []QuestionSummary{
		{Question: "Two Sum", CodeScore: 80},
	}, "coding", 2)
	require.True(t, degraded)
	assert.Equal(t, 50.0, report.OverallScore)
	assert.Equal(t, 50.0, report.TechnicalScore)
	assert.Equal(t, "needs_preparation", report.InterviewReadiness)
}

func TestExtractMemoryFactsSkipsShortTranscripts(t *testing.T) {
	completer := &scriptedCompleter{}
	g := testGateway(completer)

	facts := g.ExtractMemoryFacts(context.Background(), []Turn{{Role: "candidate", Content: "hi"}})
	assert.Empty(t, facts)
	assert.Empty(t, completer.requests, "short transcripts must not reach the model")
}

func TestExtractMemoryFactsFiltersEmptyFields(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{`[
		{"key": "favorite_language", "value": "go", "category": "preference"},
		{"key": "", "value": "orphan", "category": "general"},
		{"key": "college", "value": "  ", "category": "personal"}
	]`}})

	turns := []Turn{{Role: "candidate", Content: "My favorite language is Go and I studied a lot of things."}}
	facts := g.ExtractMemoryFacts(context.Background(), turns)
	require.Len(t, facts, 1)
	assert.Equal(t, "favorite_language", facts[0].Key)
}

func TestExtractMemoryFactsReturnsEmptyOnGarbage(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{"not json"}})

	turns := []Turn{{Role: "candidate", Content: "A transcript that is comfortably longer than fifty characters."}}
	facts := g.ExtractMemoryFacts(context.Background(), turns)
	assert.NotNil(t, facts)
	assert.Empty(t, facts)
}

func TestGenerateBehavioralQuestionsFallsBack(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{`[]`}})

	questions, degraded := g.GenerateBehavioralQuestions(context.Background(), nil, nil, "", "")
	require.True(t, degraded)
	require.Len(t, questions, 2)
	assert.Equal(t, "Tell me about yourself.", questions[0].Question)
}

func TestAnalyzeBehavioralResponseClampsAndFallsBack(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{`{
		"communication_score": 12, "relevance_score": 8, "depth_score": -1,
		"confidence_level": "high", "feedback": "Strong answer."
	}`}})

	assessment, degraded := g.AnalyzeBehavioralResponse(context.Background(), "Tell me about a conflict.", "answer", "", "")
	require.False(t, degraded)
	assert.Equal(t, 10.0, assessment.CommunicationScore)
	assert.Equal(t, 8.0, assessment.RelevanceScore)
	assert.Equal(t, 0.0, assessment.DepthScore)

	g = testGateway(&scriptedCompleter{err: errors.New("down")})
	assessment, degraded = g.AnalyzeBehavioralResponse(context.Background(), "Q", "A", "", "")
	require.True(t, degraded)
	assert.Equal(t, 5.0, assessment.CommunicationScore)
	assert.Equal(t, "medium", assessment.ConfidenceLevel)
}

func TestExtractResumeProfile(t *testing.T) {
	g := testGateway(&scriptedCompleter{replies: []string{"```json\n" + `{
		"skills": ["go", "postgres"],
		"summary": "Backend engineer.",
		"primary_domain": "Backend Development"
	}` + "\n```"}})

	profile, degraded := g.ExtractResumeProfile(context.Background(), "resume text")
	require.False(t, degraded)
	assert.Equal(t, []string{"go", "postgres"}, profile.Skills)
	assert.NotNil(t, profile.Experience)
	assert.NotNil(t, profile.Education)
	assert.NotNil(t, profile.StrongestSkills)

	g = testGateway(&scriptedCompleter{err: errors.New("down")})
	profile, degraded = g.ExtractResumeProfile(context.Background(), "resume text")
	require.True(t, degraded)
	assert.Equal(t, "Unable to parse resume", profile.Summary)
}
