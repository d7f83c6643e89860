package memory

import (
	"regexp"
	"strings"
)

// Fact is one (key, value, category) candidate extracted from candidate
// speech.
type Fact struct {
	Key      string
	Value    string
	Category string
}

type pattern struct {
	key      string
	category string
	re       *regexp.Regexp
	suffix   string
	maxLen   int
}

// Heuristic patterns for facts candidates commonly volunteer. These run on
// every candidate message so they stay cheap; the model-based extraction at
// session end catches the rest.
var patterns = []pattern{
	{
		key: "weight", category: "personal",
		re: regexp.MustCompile(`(?:my |i )?weigh(?:t is|s?) (\d+\s*(?:kg|lbs?|pounds?|kilos?))`),
	},
	{
		key: "height", category: "personal",
		re: regexp.MustCompile(`(?:my |i am |i'm )?(?:height is )?(\d+\s*(?:cm|feet|ft|inches|in|'|"))`),
	},
	{
		key: "age", category: "personal",
		re:     regexp.MustCompile(`(?:i am |i'm |my age is )(\d{1,2})\s*(?:years? old|yrs?)?`),
		suffix: " years old",
	},
	{
		key: "years_of_experience", category: "skill",
		re:     regexp.MustCompile(`(\d+)\s*(?:\+\s*)?years?\s*(?:of\s*)?(?:experience|exp)`),
		suffix: " years",
	},
	{
		key: "favorite_language", category: "preference",
		re: regexp.MustCompile(`(?:my )?(?:favorite|preferred|favourite)\s*(?:programming\s*)?language\s*is\s*(\w+)`),
	},
	{
		key: "college", category: "personal",
		re:     regexp.MustCompile(`(?:i (?:study|studied|go|went) (?:at|to)|i'm (?:at|from)|my college is|i attend)\s+(.+?)(?:\.|,|$)`),
		maxLen: 100,
	},
	{
		key: "preferred_name", category: "personal",
		re: regexp.MustCompile(`(?:call me|my name is|i'm called|i go by)\s+(\w+)`),
	},
	{
		key: "current_role", category: "skill",
		re:     regexp.MustCompile(`(?:i work as|i'm a|i am a|my role is|my job is|i'm currently a)\s+(.+?)(?:\.|,|$)`),
		maxLen: 100,
	},
	{
		key: "current_company", category: "skill",
		re:     regexp.MustCompile(`(?:i work at|i'm at|i am at|my company is|i work for)\s+(.+?)(?:\.|,|$)`),
		maxLen: 100,
	},
}

// ExtractHeuristic pattern-matches one utterance for memorable facts.
func ExtractHeuristic(text string) []Fact {
	lowered := strings.ToLower(text)
	facts := []Fact{}
	for _, p := range patterns {
		match := p.re.FindStringSubmatch(lowered)
		if match == nil {
			continue
		}
		value := strings.TrimSpace(match[1])
		if value == "" {
			continue
		}
		if p.maxLen > 0 && len(value) > p.maxLen {
			value = value[:p.maxLen]
		}
		facts = append(facts, Fact{Key: p.key, Value: value + p.suffix, Category: p.category})
	}
	return facts
}
