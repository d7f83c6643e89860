package gateway

import (
	"context"

	"intervuex-backend-go/internal/models"
)

// ResumeProfile is the structured extraction of one uploaded resume.
type ResumeProfile struct {
	Skills            []string                 `json:"skills"`
	Experience        []models.ExperienceEntry `json:"experience"`
	Education         []models.EducationEntry  `json:"education"`
	Summary           string                   `json:"summary"`
	PrimaryDomain     string                   `json:"primary_domain"`
	YearsOfExperience string                   `json:"years_of_experience"`
	StrongestSkills   []string                 `json:"strongest_skills"`
}

const resumeExtractionSystem = `You are an expert resume analyzer. Extract structured information from the resume.
Return a JSON object with these exact keys:
{
    "skills": ["skill1", "skill2", ...],
    "experience": [{"title": "...", "company": "...", "duration": "...", "description": "..."}],
    "education": [{"degree": "...", "institution": "...", "year": "..."}],
    "summary": "Brief professional summary in 2-3 sentences",
    "primary_domain": "e.g., Backend Development, Data Science, Full Stack, etc.",
    "years_of_experience": "estimated total years",
    "strongest_skills": ["top 5 strongest skills based on resume context"]
}
Return ONLY valid JSON, no markdown.`

// ExtractResumeProfile distills a resume's raw text into a profile. The
// second return reports whether the fallback placeholder was used.
func (g *Gateway) ExtractResumeProfile(ctx context.Context, resumeText string) (*ResumeProfile, bool) {
	var profile ResumeProfile
	ok := g.completeJSON(ctx, "extract_resume", ChatRequest{
		Messages: []Message{
			{Role: "system", Content: resumeExtractionSystem},
			{Role: "user", Content: "Analyze this resume and extract structured information:\n\n" + resumeText},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	}, &profile)
	if !ok {
		return &ResumeProfile{
			Skills:            []string{},
			Experience:        []models.ExperienceEntry{},
			Education:         []models.EducationEntry{},
			Summary:           "Unable to parse resume",
			PrimaryDomain:     "Unknown",
			YearsOfExperience: "Unknown",
			StrongestSkills:   []string{},
		}, true
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	if profile.Experience == nil {
		profile.Experience = []models.ExperienceEntry{}
	}
	if profile.Education == nil {
		profile.Education = []models.EducationEntry{}
	}
	if profile.StrongestSkills == nil {
		profile.StrongestSkills = []string{}
	}
	return &profile, false
}
