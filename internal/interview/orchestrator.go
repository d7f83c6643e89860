// Package interview drives a session from first question to final report.
// The orchestrator owns the conversational state machine; everything durable
// lives in the store, so a restart only loses in-flight prompt context.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"intervuex-backend-go/internal/gateway"
	"intervuex-backend-go/internal/memory"
	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

var (
	ErrNotOwner          = errors.New("interview: session belongs to another user")
	ErrNotActive         = errors.New("interview: session is not in progress")
	ErrAllQuestionsAsked = errors.New("interview: all questions have been asked")
	ErrEmptySubmission   = errors.New("interview: response must include text, code, or a transcript")
)

type Orchestrator struct {
	DB  *sqlx.DB
	Gw  *gateway.Gateway
	Mem *memory.Service
	Log *zap.Logger

	mu   sync.Mutex
	live map[string]*liveSession
}

// liveSession is the per-session prompt context that does not need to
// survive a restart: the rich question object, titles already asked, and the
// pre-generated behavioral batch.
type liveSession struct {
	mu          sync.Mutex
	current     *gateway.GeneratedQuestion
	currentRow  *models.Question
	asked       []string
	lastJudged  *gateway.CodingAssessment
	behavioral  []gateway.BehavioralQuestion
	behavioralN int
}

func NewOrchestrator(db *sqlx.DB, gw *gateway.Gateway, mem *memory.Service, log *zap.Logger) *Orchestrator {
	return &Orchestrator{DB: db, Gw: gw, Mem: mem, Log: log, live: map[string]*liveSession{}}
}

// normalizeType maps the legacy client-facing type names onto the stored
// enum.
func normalizeType(sessionType string) string {
	switch sessionType {
	case "dsa":
		return models.SessionTypeCoding
	case "hr":
		return models.SessionTypeBehavioral
	}
	return sessionType
}

// Start opens a session. Behavioral sessions pre-generate their question
// batch so per-question latency stays low.
func (o *Orchestrator) Start(ctx context.Context, userID, sessionType, difficulty string, topic *string, questionCount int) (*models.InterviewSession, error) {
	sessionType = normalizeType(sessionType)
	session, err := store.CreateSession(o.DB, userID, sessionType, difficulty, topic, questionCount)
	if err != nil {
		return nil, err
	}
	state := &liveSession{}
	if sessionType == models.SessionTypeBehavioral {
		skills, experience := o.resumeProfile(userID)
		batch, degraded := o.Gw.GenerateBehavioralQuestions(ctx, skills, experience, "Software Engineer", o.Mem.ContextBlock(userID))
		if degraded {
			o.Log.Warn("behavioral batch degraded to fallback", zap.String("session", session.ID))
		}
		state.behavioral = batch
	}
	o.mu.Lock()
	o.live[session.ID] = state
	o.mu.Unlock()
	return session, nil
}

// activeSession loads a session and checks ownership and liveness.
func (o *Orchestrator) activeSession(sessionID, userID string) (*models.InterviewSession, *liveSession, error) {
	session, err := store.GetSession(o.DB, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.UserID != userID {
		return nil, nil, ErrNotOwner
	}
	if session.Status != models.SessionInProgress {
		return nil, nil, ErrNotActive
	}
	o.mu.Lock()
	state, ok := o.live[sessionID]
	if !ok {
		state = &liveSession{}
		o.live[sessionID] = state
	}
	o.mu.Unlock()
	return session, state, nil
}

// NextQuestion issues the next question: generated per call for coding and
// technical sessions, drawn from the batch for behavioral ones. Returns
// ErrAllQuestionsAsked once the configured count is reached; the caller
// finalizes then.
func (o *Orchestrator) NextQuestion(ctx context.Context, sessionID, userID string) (*models.Question, *gateway.GeneratedQuestion, error) {
	session, state, err := o.activeSession(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	existing, err := store.SessionQuestions(o.DB, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if len(existing) >= session.QuestionCount {
		return nil, nil, ErrAllQuestionsAsked
	}
	number := len(existing) + 1
	o.rehydrate(state, existing)

	if session.SessionType == models.SessionTypeBehavioral {
		return o.nextBehavioralQuestion(ctx, session, state, number)
	}
	return o.nextCodingQuestion(ctx, session, state, number)
}

func (o *Orchestrator) nextCodingQuestion(ctx context.Context, session *models.InterviewSession, state *liveSession, number int) (*models.Question, *gateway.GeneratedQuestion, error) {
	skills, _ := o.resumeProfile(session.UserID)
	topic := ""
	if session.Topic != nil {
		topic = *session.Topic
	}
	generated, degraded := o.Gw.GenerateCodingQuestion(ctx, gateway.QuestionParams{
		Skills:         skills,
		Difficulty:     session.Difficulty,
		Topic:          topic,
		PreviousTitles: state.asked,
		MemoryContext:  o.Mem.ContextBlock(session.UserID),
	})
	if degraded {
		o.Log.Warn("question generation degraded to fallback", zap.String("session", session.ID))
	}
	row, err := store.SaveQuestion(o.DB, session.ID, number,
		generated.Title+": "+generated.Description, models.SessionTypeCoding, generated.Difficulty)
	if err != nil {
		return nil, nil, err
	}
	state.current = generated
	state.currentRow = row
	state.asked = append(state.asked, generated.Title)
	state.lastJudged = nil

	intro := fmt.Sprintf("Question %d: %s\n\n%s", number, generated.Title, generated.Description)
	o.recordInterviewer(session.ID, intro)
	o.recordEvent(session.ID, models.RecordingQuestionStart, map[string]any{
		"question_number": number,
		"title":           generated.Title,
		"difficulty":      generated.Difficulty,
	})
	return row, generated, nil
}

func (o *Orchestrator) nextBehavioralQuestion(ctx context.Context, session *models.InterviewSession, state *liveSession, number int) (*models.Question, *gateway.GeneratedQuestion, error) {
	if len(state.behavioral) == 0 {
		skills, experience := o.resumeProfile(session.UserID)
		batch, _ := o.Gw.GenerateBehavioralQuestions(ctx, skills, experience, "Software Engineer", o.Mem.ContextBlock(session.UserID))
		state.behavioral = batch
		state.behavioralN = number - 1
	}
	idx := state.behavioralN % len(state.behavioral)
	question := state.behavioral[idx]
	state.behavioralN++

	row, err := store.SaveQuestion(o.DB, session.ID, number, question.Question, models.SessionTypeBehavioral, session.Difficulty)
	if err != nil {
		return nil, nil, err
	}
	state.current = &gateway.GeneratedQuestion{
		Title:            question.Question,
		Description:      question.Question,
		ExpectedApproach: question.WhatToLookFor,
		Difficulty:       session.Difficulty,
	}
	state.currentRow = row
	state.asked = append(state.asked, question.Question)
	state.lastJudged = nil

	intro := question.Question
	if number > 1 {
		intro = "Let's move on. " + intro
	}
	o.recordInterviewer(session.ID, intro)
	o.recordEvent(session.ID, models.RecordingQuestionStart, map[string]any{
		"question_number": number,
		"category":        question.Category,
	})
	return row, state.current, nil
}

// rehydrate rebuilds what it can of the prompt context after a restart:
// asked titles and the current question row. The rich question object is
// reconstructed from the stored text.
func (o *Orchestrator) rehydrate(state *liveSession, existing []*models.Question) {
	if state.current != nil || len(existing) == 0 || len(state.asked) > 0 {
		return
	}
	for _, q := range existing {
		state.asked = append(state.asked, questionTitle(q.Text))
	}
	last := existing[len(existing)-1]
	state.currentRow = last
	title, description := splitQuestionText(last.Text)
	state.current = &gateway.GeneratedQuestion{
		Title:       title,
		Description: description,
		Difficulty:  last.Difficulty,
	}
	state.behavioralN = len(existing)
}

func questionTitle(text string) string {
	title, _ := splitQuestionText(text)
	return title
}

func splitQuestionText(text string) (string, string) {
	if idx := strings.Index(text, ": "); idx > 0 {
		return text[:idx], text[idx+2:]
	}
	return text, text
}

// resumeProfile loads the user's latest resume skills and experience. Absent
// resumes are fine; questions just lose personalization.
func (o *Orchestrator) resumeProfile(userID string) (gateway.Skills, []models.ExperienceEntry) {
	resume, err := store.LatestResume(o.DB, userID)
	if err != nil {
		o.Log.Warn("resume load failed", zap.Error(err))
		return nil, nil
	}
	if resume == nil {
		return nil, nil
	}
	return gateway.Skills(resume.Skills), resume.Experience
}

func (o *Orchestrator) recordInterviewer(sessionID, content string) {
	if _, err := store.SaveChatMessage(o.DB, sessionID, models.RoleInterviewer, content, models.MessageText); err != nil {
		o.Log.Warn("chat append failed", zap.Error(err))
	}
	o.recordEvent(sessionID, models.RecordingConversation, map[string]any{
		"role":    models.RoleInterviewer,
		"content": content,
	})
}

func (o *Orchestrator) recordEvent(sessionID, eventType string, data map[string]any) {
	if _, err := o.saveRecording(sessionID, eventType, data); err != nil {
		o.Log.Warn("recording append failed", zap.Error(err))
	}
}

func (o *Orchestrator) saveRecording(sessionID, eventType string, data map[string]any) (*models.RecordingEvent, error) {
	return store.SaveRecordingEvent(o.DB, sessionID, eventType, data)
}

// sessionTurns converts the stored transcript into prompt turns.
func (o *Orchestrator) sessionTurns(sessionID string) []gateway.Turn {
	messages, err := store.SessionMessages(o.DB, sessionID)
	if err != nil {
		o.Log.Warn("transcript load failed", zap.Error(err))
		return nil
	}
	turns := make([]gateway.Turn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, gateway.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

// Forget drops a session's in-memory state once it is terminal.
func (o *Orchestrator) Forget(sessionID string) {
	o.mu.Lock()
	delete(o.live, sessionID)
	o.mu.Unlock()
}
