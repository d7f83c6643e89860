package interview

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"intervuex-backend-go/internal/gateway"
	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

// Finalize generates the final report and moves the session to completed.
// It is idempotent: the status predicate in the store means only the first
// caller writes scores, and later calls just return the completed session.
// Memory extraction runs after completion and is best effort.
func (o *Orchestrator) Finalize(ctx context.Context, sessionID, userID, reason string) (*models.InterviewSession, bool, error) {
	session, err := store.GetSession(o.DB, sessionID)
	if err != nil {
		return nil, false, err
	}
	if session.UserID != userID {
		return nil, false, ErrNotOwner
	}
	if session.Status != models.SessionInProgress {
		return session, false, nil
	}

	questions, err := store.SessionQuestions(o.DB, sessionID)
	if err != nil {
		return nil, false, err
	}
	summaries := make([]gateway.QuestionSummary, 0, len(questions))
	for _, q := range questions {
		analysisText := ""
		if q.Analysis != nil {
			if encoded, err := json.Marshal(q.Analysis); err == nil {
				analysisText = string(encoded)
			}
		}
		summaries = append(summaries, gateway.QuestionSummary{
			Question:           q.Text,
			CodeScore:          q.CodeCorrectnessScore,
			ApproachScore:      q.ApproachScore,
			CommunicationScore: q.CommunicationScore,
			Analysis:           analysisText,
		})
	}

	report, degraded := o.Gw.GenerateFinalReport(ctx, summaries, session.SessionType, session.ViolationCount)
	if degraded {
		o.Log.Warn("final report degraded to fallback", zap.String("session", sessionID))
	}
	feedback := &models.SessionFeedback{
		IntegrityNote:      report.IntegrityNote,
		ExecutiveSummary:   report.ExecutiveSummary,
		DetailedFeedback:   report.DetailedFeedback,
		InterviewReadiness: report.InterviewReadiness,
		Recommendation:     report.Recommendation,
	}
	completed, err := store.CompleteSession(o.DB, sessionID, store.SessionScores{
		Overall:        report.OverallScore,
		Technical:      report.TechnicalScore,
		Communication:  report.CommunicationScore,
		Reasoning:      report.ReasoningScore,
		ProblemSolving: report.ProblemSolvingScore,
	}, feedback, reason)
	if err != nil {
		return nil, false, err
	}
	if completed {
		o.Mem.ExtractWithModel(ctx, userID, sessionID, o.sessionTurns(sessionID))
		o.Forget(sessionID)
	}
	session, err = store.GetSession(o.DB, sessionID)
	if err != nil {
		return nil, false, err
	}
	return session, completed, nil
}
