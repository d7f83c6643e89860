package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"intervuex-backend-go/internal/config"
	"intervuex-backend-go/internal/gateway"
	"intervuex-backend-go/internal/interview"
	"intervuex-backend-go/internal/memory"
	"intervuex-backend-go/internal/migrations"
	"intervuex-backend-go/internal/proctor"
	"intervuex-backend-go/internal/resumes"
)

type queueCompleter struct {
	mu      sync.Mutex
	replies []string
}

func (c *queueCompleter) push(replies ...string) {
	c.mu.Lock()
	c.replies = append(c.replies, replies...)
	c.mu.Unlock()
}

func (c *queueCompleter) Complete(_ context.Context, _ gateway.ChatRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func newTestServer(t *testing.T) (http.Handler, *sqlx.DB, *queueCompleter) {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Apply(db, "../../migrations"))

	completer := &queueCompleter{}
	log := zap.NewNop()
	gw := gateway.New(completer, log, time.Second)
	mem := &memory.Service{DB: db, Gw: gw, Log: log}
	orch := interview.NewOrchestrator(db, gw, mem, log)
	recorder := proctor.NewRecorder(db, log, 12*time.Second)
	resumeSvc := &resumes.Service{DB: db, Gw: gw, Log: log}

	cfg := config.Config{
		JWTSecret:         "test-secret",
		JWTIssuer:         "intervuex",
		AccessTTLSeconds:  900,
		RefreshTTLSeconds: 3600,
	}
	server := NewServer(db, cfg, orch, mem, recorder, resumeSvc, nil, nil, log)
	return server.Router(), db, completer
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func registerAndLogin(t *testing.T, handler http.Handler, email, password string) TokenResponse {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Test User", Email: email, Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: email, Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tokens TokenResponse
	decodeBody(t, rec, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)
	return tokens
}

func TestHealth(t *testing.T) {
	handler, _, _ := newTestServer(t)
	rec := doJSON(t, handler, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterLoginAndMe(t *testing.T) {
	handler, _, _ := newTestServer(t)
	tokens := registerAndLogin(t, handler, "ada@example.com", "hunter2secret")

	// duplicate registration is rejected
	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name: "Again", Email: "ada@example.com", Password: "whatever123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "ada@example.com", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/me/", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decodeBody(t, rec, &me)
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Equal(t, "user", me.Role)

	rec = doJSON(t, handler, http.MethodGet, "/api/me/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, handler, http.MethodGet, "/api/me/", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotation(t *testing.T) {
	handler, _, _ := newTestServer(t)
	tokens := registerAndLogin(t, handler, "rotate@example.com", "hunter2secret")

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var rotated TokenResponse
	decodeBody(t, rec, &rotated)
	require.NotEmpty(t, rotated.RefreshToken)

	// the old refresh token was consumed by the rotation
	rec = doJSON(t, handler, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logout revokes the current one too
	rec = doJSON(t, handler, http.MethodPost, "/api/auth/logout", "", RefreshRequest{RefreshToken: rotated.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, handler, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordRevokesRefreshTokens(t *testing.T) {
	handler, _, _ := newTestServer(t)
	tokens := registerAndLogin(t, handler, "rotate2@example.com", "originalpass")

	rec := doJSON(t, handler, http.MethodPut, "/api/me/password", tokens.AccessToken, ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newpassword1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPut, "/api/me/password", tokens.AccessToken, ChangePasswordRequest{
		CurrentPassword: "originalpass", NewPassword: "newpassword1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "rotate2@example.com", Password: "newpassword1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

const questionJSON = `{
	"title": "Valid Parentheses",
	"description": "Given a string of brackets, determine whether it is balanced.",
	"expected_approach": "Use a stack",
	"difficulty": "medium"
}`

const analysisJSON = `{
	"code_correctness": {"score": 8, "is_correct": true},
	"approach_analysis": {"score": 7, "approach_used": "stack"},
	"communication_analysis": {"score": 6},
	"overall_feedback": "Solid.",
	"follow_up_questions": ["What about nesting?"]
}`

const reportJSON = `{
	"overall_score": 74, "technical_score": 80, "communication_score": 60,
	"reasoning_score": 70, "problem_solving_score": 75,
	"executive_summary": "Good session.", "interview_readiness": "almost_ready",
	"recommendation": "Keep practicing."
}`

func TestInterviewFlowOverHTTP(t *testing.T) {
	handler, _, completer := newTestServer(t)
	tokens := registerAndLogin(t, handler, "flow@example.com", "hunter2secret")

	rec := doJSON(t, handler, http.MethodPost, "/api/interviews/", tokens.AccessToken, StartInterviewRequest{
		SessionType: "coding", Difficulty: "medium", QuestionCount: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, rec, &session)
	require.NotEmpty(t, session.ID)

	completer.push(questionJSON)
	rec = doJSON(t, handler, http.MethodPost, "/api/interviews/"+session.ID+"/questions/next", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var next NextQuestionResponse
	decodeBody(t, rec, &next)
	require.NotNil(t, next.Question)
	assert.Equal(t, 1, next.Question.Number)

	completer.push(analysisJSON, "Good. What is the complexity?")
	rec = doJSON(t, handler, http.MethodPost, "/api/interviews/"+session.ID+"/responses", tokens.AccessToken, interview.Submission{
		ResponseText: "I push openers onto a stack and pop on closers.",
		Code:         "def is_valid(s): ...",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result interview.SubmitResult
	decodeBody(t, rec, &result)
	assert.Equal(t, 80.0, result.Question.CodeCorrectnessScore)
	assert.Equal(t, "Good. What is the complexity?", result.InterviewerReply)

	// empty submission is a 400
	rec = doJSON(t, handler, http.MethodPost, "/api/interviews/"+session.ID+"/responses", tokens.AccessToken, interview.Submission{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// the question budget is spent, the client is told to finalize
	rec = doJSON(t, handler, http.MethodPost, "/api/interviews/"+session.ID+"/questions/next", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var done struct {
		Done bool `json:"done"`
	}
	decodeBody(t, rec, &done)
	assert.True(t, done.Done)

	completer.push(reportJSON, "[]")
	rec = doJSON(t, handler, http.MethodPost, "/api/interviews/"+session.ID+"/finalize", tokens.AccessToken, FinalizeRequest{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var finished struct {
		Status       string  `json:"status"`
		OverallScore float64 `json:"overallScore"`
	}
	decodeBody(t, rec, &finished)
	assert.Equal(t, "completed", finished.Status)
	assert.Equal(t, 74.0, finished.OverallScore)

	rec = doJSON(t, handler, http.MethodPost, "/api/interviews/"+session.ID+"/questions/next", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/interviews/"+session.ID+"/messages", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// another account cannot read the session
	other := registerAndLogin(t, handler, "flow2@example.com", "hunter2secret")
	rec = doJSON(t, handler, http.MethodGet, "/api/interviews/"+session.ID+"/", other.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/interviews/does-not-exist/", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViolationReportingOverHTTP(t *testing.T) {
	handler, _, _ := newTestServer(t)
	tokens := registerAndLogin(t, handler, "proctored@example.com", "hunter2secret")

	rec := doJSON(t, handler, http.MethodPost, "/api/interviews/", tokens.AccessToken, StartInterviewRequest{
		SessionType: "coding", Difficulty: "medium", QuestionCount: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var session struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &session)

	rec = doJSON(t, handler, http.MethodPost, "/api/interviews/"+session.ID+"/violations", tokens.AccessToken, ViolationReport{
		Type: "tab_switch", Detail: "switched away",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var ack ViolationAck
	decodeBody(t, rec, &ack)
	assert.True(t, ack.Recorded)
	assert.NotEmpty(t, ack.EventID)

	// the repeat lands inside the debounce window
	rec = doJSON(t, handler, http.MethodPost, "/api/interviews/"+session.ID+"/violations", tokens.AccessToken, ViolationReport{
		Type: "tab_switch",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &ack)
	assert.False(t, ack.Recorded)

	rec = doJSON(t, handler, http.MethodGet, "/api/interviews/"+session.ID+"/violations", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Items          []json.RawMessage `json:"items"`
		ViolationCount int               `json:"violationCount"`
	}
	decodeBody(t, rec, &listing)
	assert.Len(t, listing.Items, 1)
	assert.Equal(t, 1, listing.ViolationCount)
}

func TestSpeechUnavailableWithoutProvider(t *testing.T) {
	handler, _, _ := newTestServer(t)
	tokens := registerAndLogin(t, handler, "speechless@example.com", "hunter2secret")

	rec := doJSON(t, handler, http.MethodPost, "/api/speech/synthesize", tokens.AccessToken, SynthesizeRequest{Text: "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminMetricsRequiresRole(t *testing.T) {
	handler, db, _ := newTestServer(t)
	tokens := registerAndLogin(t, handler, "admin@example.com", "hunter2secret")

	rec := doJSON(t, handler, http.MethodGet, "/api/admin/metrics/history", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err := db.Exec(`UPDATE users SET role = 'admin' WHERE email = $1`, "admin@example.com")
	require.NoError(t, err)

	// role rides in the access token, so a fresh login is needed
	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "admin@example.com", Password: "hunter2secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var admin TokenResponse
	decodeBody(t, rec, &admin)

	rec = doJSON(t, handler, http.MethodGet, "/api/admin/metrics/history", admin.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
