package interview

import (
	"context"

	"intervuex-backend-go/internal/gateway"
	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

// VoiceTurn advances a live voice interview by one exchange: the candidate's
// utterance goes into the transcript, the model produces the interviewer's
// spoken reply, and both are durable before returning.
func (o *Orchestrator) VoiceTurn(ctx context.Context, sessionID, userID, utterance string) (string, error) {
	session, state, err := o.activeSession(sessionID, userID)
	if err != nil {
		return "", err
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	history := o.sessionTurns(sessionID)
	if _, err := store.SaveChatMessage(o.DB, sessionID, models.RoleCandidate, utterance, models.MessageAudioTranscript); err != nil {
		return "", err
	}
	o.recordEvent(sessionID, models.RecordingConversation, map[string]any{
		"role":    models.RoleCandidate,
		"content": utterance,
		"voice":   true,
	})
	o.Mem.RecordFromUtterance(userID, sessionID, utterance)

	skills, _ := o.resumeProfile(session.UserID)
	reply, degraded := o.Gw.VoiceAgentTurn(ctx, history, utterance, state.current, skills)
	o.recordInterviewer(sessionID, reply)
	if degraded {
		o.recordEvent(sessionID, models.RecordingAnalysis, map[string]any{"degraded_turn": true})
	}
	return reply, nil
}

// VoiceFinish evaluates the whole voice conversation on the 7-dimension
// rubric and completes the session with scores derived from it.
func (o *Orchestrator) VoiceFinish(ctx context.Context, sessionID, userID string) (*gateway.VoiceEvaluation, *models.InterviewSession, error) {
	session, err := store.GetSession(o.DB, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.UserID != userID {
		return nil, nil, ErrNotOwner
	}
	if session.Status != models.SessionInProgress {
		return nil, session, nil
	}

	eval, degraded := o.Gw.VoiceAgentEvaluation(ctx, o.sessionTurns(sessionID))
	if degraded {
		o.Log.Warn("voice evaluation degraded to fallback")
	}
	o.recordEvent(sessionID, models.RecordingAnalysis, map[string]any{"voice_evaluation": eval})

	s := eval.Scores
	feedback := &models.SessionFeedback{
		ExecutiveSummary: eval.FinalFeedbackSummary,
		DetailedFeedback: models.FeedbackDetails{
			Strengths:         eval.Strengths,
			Improvements:      eval.AreasOfImprovement,
			RecommendedTopics: eval.OptimizationSuggestions,
		},
		Recommendation: eval.FinalFeedbackSummary,
	}
	completed, err := store.CompleteSession(o.DB, sessionID, store.SessionScores{
		Overall:        eval.OverallScore * 10,
		Technical:      (s.DataStructureSelection + s.AlgorithmicEfficiency) * 5,
		Communication:  s.CommunicationClarity * 10,
		Reasoning:      s.LogicalReasoning * 10,
		ProblemSolving: (s.ProblemUnderstanding + s.OptimizationAwareness + s.EdgeCaseHandling) * 10 / 3,
	}, feedback, models.EndReasonNatural)
	if err != nil {
		return nil, nil, err
	}
	if completed {
		o.Mem.ExtractWithModel(ctx, userID, sessionID, o.sessionTurns(sessionID))
		o.Forget(sessionID)
	}
	session, err = store.GetSession(o.DB, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return eval, session, nil
}
