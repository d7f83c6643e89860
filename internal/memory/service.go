// Package memory keeps what the interviewer learns about a candidate across
// sessions: cheap heuristic extraction on every candidate message, a deeper
// model pass at session end, and the context block injected into prompts.
package memory

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"intervuex-backend-go/internal/gateway"
	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

type Service struct {
	DB  *sqlx.DB
	Gw  *gateway.Gateway
	Log *zap.Logger
}

// RecordFromUtterance runs the heuristic extractors over one candidate
// message and upserts any hits. Utterances under 10 characters are skipped.
// Failures are logged and swallowed; memory never blocks the interview.
func (s *Service) RecordFromUtterance(userID, sessionID, text string) []Fact {
	text = strings.TrimSpace(text)
	if len(text) < 10 {
		return nil
	}
	facts := ExtractHeuristic(text)
	saved := facts[:0]
	for _, fact := range facts {
		if err := store.SaveMemory(s.DB, userID, fact.Key, fact.Value, fact.Category, &sessionID); err != nil {
			s.Log.Warn("memory save failed", zap.String("key", fact.Key), zap.Error(err))
			continue
		}
		saved = append(saved, fact)
	}
	return saved
}

// ExtractWithModel runs the model-based extraction over a full session
// transcript, once, after the session ends. Facts with categories outside
// the known set are filed under general. Best effort throughout.
func (s *Service) ExtractWithModel(ctx context.Context, userID, sessionID string, turns []gateway.Turn) []Fact {
	facts := s.Gw.ExtractMemoryFacts(ctx, turns)
	saved := make([]Fact, 0, len(facts))
	for _, fact := range facts {
		category := fact.Category
		switch category {
		case "general", "preference", "skill", "personal", "interview_style":
		default:
			category = "general"
		}
		if err := store.SaveMemory(s.DB, userID, fact.Key, fact.Value, category, &sessionID); err != nil {
			s.Log.Warn("memory save failed", zap.String("key", fact.Key), zap.Error(err))
			continue
		}
		saved = append(saved, Fact{Key: fact.Key, Value: fact.Value, Category: category})
	}
	return saved
}

var categoryLabels = map[string]string{
	"personal":        "Personal Information",
	"skill":           "Skills & Technical Background",
	"preference":      "Preferences",
	"interview_style": "Interview Style",
	"general":         "General Notes",
}

// Categories are rendered in a fixed order so the block is stable.
var categoryOrder = []string{"personal", "skill", "preference", "interview_style", "general"}

// ContextBlock renders everything remembered about a user as the prompt
// fragment injected into interviewer system prompts. Empty string when
// nothing is remembered.
func (s *Service) ContextBlock(userID string) string {
	memories, err := store.UserMemories(s.DB, userID, "")
	if err != nil {
		s.Log.Warn("memory load failed", zap.Error(err))
		return ""
	}
	return RenderContext(memories)
}

func RenderContext(memories []*models.MemoryFact) string {
	if len(memories) == 0 {
		return ""
	}
	grouped := map[string][]string{}
	for _, m := range memories {
		grouped[m.Category] = append(grouped[m.Category], "- "+m.Key+": "+m.Value)
	}
	var b strings.Builder
	b.WriteString("\n=== REMEMBERED INFORMATION ABOUT THIS CANDIDATE ===\n")
	b.WriteString("You have interviewed this candidate before. Here is what you remember:\n")
	for _, cat := range categoryOrder {
		items := grouped[cat]
		if len(items) == 0 {
			continue
		}
		b.WriteString("\n" + categoryLabels[cat] + ":\n")
		b.WriteString(strings.Join(items, "\n") + "\n")
	}
	b.WriteString("\nIMPORTANT: Use this information naturally. Do NOT ask about things you already know.\n")
	b.WriteString("Reference remembered facts when relevant to make the interview feel personalized.\n")
	b.WriteString("=== END OF REMEMBERED INFORMATION ===\n")
	return b.String()
}
