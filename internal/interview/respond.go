package interview

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"intervuex-backend-go/internal/gateway"
	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

// Submission is one candidate answer to the current question.
type Submission struct {
	ResponseText    string `json:"responseText"`
	Code            string `json:"code"`
	VoiceTranscript string `json:"voiceTranscript"`
}

/// SubmitResult is everything produced by one answer: the judged question
// row, the interviewer's reply, and whether any model fallback fired.
type SubmitResult struct {
	Question         *models.Question            `json:"question"`
	Assessment       *gateway.CodingAssessment   `json:"assessment,omitempty"`
	HRAssessment     *gateway.BehavioralAssessment `json:"hrAssessment,omitempty"`
	InterviewerReply string                      `json:"interviewerReply"`
	Degraded         bool                        `json:"degraded"`
}

// SubmitResponse records and judges one answer. The candidate's input is
// made durable before any model call, so a gateway outage can degrade the
// judgment but never lose the answer. An entirely empty submission is
// rejected before any write.
func (o *Orchestrator) SubmitResponse(ctx context.Context, sessionID, userID string, sub Submission) (*SubmitResult, error) {
	combined := strings.TrimSpace(strings.TrimSpace(sub.ResponseText) + " " + strings.TrimSpace(sub.VoiceTranscript))
	code := strings.TrimSpace(sub.Code)
	if combined == "" && code == "" {
		return nil, ErrEmptySubmission
	}

	session, state, err := o.activeSession(sessionID, userID)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	existing, err := store.SessionQuestions(o.DB, sessionID)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, ErrAllQuestionsAsked
	}
	o.rehydrate(state, existing)
	if state.currentRow == nil {
		state.currentRow = existing[len(existing)-1]
	}
	question := state.current
	if question == nil {
		title, description := splitQuestionText(state.currentRow.Text)
		question = &gateway.GeneratedQuestion{Title: title, Description: description, Difficulty: state.currentRow.Difficulty}
	}

	// Durable first: transcript, recordings, heuristic memory.
	candidateMsg := combined
	messageType := models.MessageText
	if candidateMsg == "" {
		candidateMsg = code
		messageType = models.MessageCode
	}
	if _, err := store.SaveChatMessage(o.DB, sessionID, models.RoleCandidate, candidateMsg, messageType); err != nil {
		return nil, err
	}
	if code != "" {
		o.recordEvent(sessionID, models.RecordingCodeSnapshot, map[string]any{
			"question_number": state.currentRow.Number,
			"code":            code,
		})
	}
	o.recordEvent(sessionID, models.RecordingConversation, map[string]any{
		"role":            models.RoleCandidate,
		"content":         candidateMsg,
		"question_number": state.currentRow.Number,
	})
	o.Mem.RecordFromUtterance(userID, sessionID, combined)

	if session.SessionType == models.SessionTypeBehavioral {
		return o.judgeBehavioral(ctx, session, state, question, combined, sub.VoiceTranscript)
	}
	return o.judgeCoding(ctx, session, state, question, combined, code, sub.VoiceTranscript)
}

func (o *Orchestrator) judgeCoding(ctx context.Context, session *models.InterviewSession, state *liveSession,
	question *gateway.GeneratedQuestion, explanation, code, voiceTranscript string) (*SubmitResult, error) {

	memoryCtx := o.Mem.ContextBlock(session.UserID)
	history := o.sessionTurns(session.ID)

	assessment, degraded := o.Gw.AnalyzeCodingResponse(ctx, question, code, explanation, history, memoryCtx)
	state.lastJudged = assessment

	// Question sub-scores are stored on the 0..100 scale.
	err := store.UpdateQuestionResponse(o.DB, state.currentRow.ID, store.QuestionResponse{
		ResponseText:       explanation,
		Code:               code,
		VoiceTranscript:    voiceTranscript,
		Analysis:           &assessment.QuestionAnalysis,
		CodeScore:          assessment.CodeCorrectness.Score * 10,
		ApproachScore:      assessment.ApproachAnalysis.Score * 10,
		CommunicationScore: assessment.CommunicationAnalysis.Score * 10,
		FollowUpQuestions:  assessment.FollowUpQuestions,
		SuggestedSolutions: assessment.SuggestedSolutions,
	})
	if err != nil {
		return nil, err
	}

	reply, replyDegraded := o.Gw.NextInterviewerMessage(ctx, question, o.sessionTurns(session.ID), assessment, memoryCtx)
	o.recordInterviewer(session.ID, reply)
	o.recordEvent(session.ID, models.RecordingAnalysis, map[string]any{
		"question_number": state.currentRow.Number,
		"analysis":        assessment,
	})

	updated, err := o.refreshQuestion(state)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{
		Question:         updated,
		Assessment:       assessment,
		InterviewerReply: reply,
		Degraded:         degraded || replyDegraded,
	}, nil
}

func (o *Orchestrator) judgeBehavioral(ctx context.Context, session *models.InterviewSession, state *liveSession,
	question *gateway.GeneratedQuestion, response, voiceTranscript string) (*SubmitResult, error) {

	memoryCtx := o.Mem.ContextBlock(session.UserID)
	assessment, degraded := o.Gw.AnalyzeBehavioralResponse(ctx, question.Title, response, question.ExpectedApproach, memoryCtx)

	err := store.UpdateQuestionResponse(o.DB, state.currentRow.ID, store.QuestionResponse{
		ResponseText:       response,
		VoiceTranscript:    voiceTranscript,
		CommunicationScore: assessment.CommunicationScore * 10,
		ApproachScore:      assessment.RelevanceScore * 10,
		FollowUpQuestions:  assessment.FollowUpQuestions,
	})
	if err != nil {
		return nil, err
	}

	reply := assessment.Feedback
	if reply == "" {
		reply = "Thank you for your response."
	}
	if len(assessment.FollowUpQuestions) > 0 {
		reply += "\n\nFollow-up: " + assessment.FollowUpQuestions[0]
	}
	o.recordInterviewer(session.ID, reply)
	o.recordEvent(session.ID, models.RecordingAnalysis, map[string]any{
		"question_number": state.currentRow.Number,
		"analysis":        assessment,
	})

	updated, err := o.refreshQuestion(state)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{
		Question:         updated,
		HRAssessment:     assessment,
		InterviewerReply: reply,
		Degraded:         degraded,
	}, nil
}

func (o *Orchestrator) refreshQuestion(state *liveSession) (*models.Question, error) {
	questions, err := store.SessionQuestions(o.DB, state.currentRow.SessionID)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		if q.ID == state.currentRow.ID {
			state.currentRow = q
			return q, nil
		}
	}
	o.Log.Warn("judged question row vanished", zap.String("question", state.currentRow.ID))
	return state.currentRow, nil
}
