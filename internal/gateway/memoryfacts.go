package gateway

import (
	"context"
	"strings"
)

// CandidateFact is one remembered fact proposed by the model.
type CandidateFact struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Category string `json:"category"`
}

const memoryExtractionSystem = `You are analyzing an interview conversation to extract key facts about the candidate.
Extract any personal information, preferences, skills, experiences, or notable details the candidate shared.

Return a JSON array of objects:
[
    {
        "key": "short_descriptive_key (e.g., 'weight', 'favorite_language', 'years_experience')",
        "value": "the actual value or fact",
        "category": "one of: general, preference, skill, personal, interview_style"
    }
]

Rules:
- Only extract FACTS explicitly stated by the candidate
- Do NOT infer or guess information
- Keep keys short and descriptive
- Keep values concise but complete
- If no facts found, return an empty array []

Return ONLY valid JSON.`

// ExtractMemoryFacts mines a full transcript for facts worth remembering
// across sessions. Transcripts shorter than 50 characters are skipped; the
// prompt carries at most the first 3000 characters. Returns an empty slice
// on any failure.
func (g *Gateway) ExtractMemoryFacts(ctx context.Context, turns []Turn) []CandidateFact {
	transcript := transcriptBlock(turns, 0)
	if len(transcript) < 50 {
		return []CandidateFact{}
	}
	if len(transcript) > 3000 {
		transcript = transcript[:3000]
	}
	var facts []CandidateFact
	ok := g.completeJSON(ctx, "extract_memory_facts", ChatRequest{
		Messages: []Message{
			{Role: "system", Content: memoryExtractionSystem},
			{Role: "user", Content: "Extract key facts about the candidate from this interview conversation:\n\n" + transcript},
		},
		Temperature: 0.2,
		MaxTokens:   1000,
	}, &facts)
	if !ok {
		return []CandidateFact{}
	}
	kept := facts[:0]
	for _, fact := range facts {
		if strings.TrimSpace(fact.Key) == "" || strings.TrimSpace(fact.Value) == "" {
			continue
		}
		kept = append(kept, fact)
	}
	return kept
}
