package models

import "time"

// Session lifecycle states. A session starts in_progress and moves exactly
// once to completed or abandoned.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

const (
	SessionTypeCoding     = "coding"
	SessionTypeBehavioral = "behavioral"
	SessionTypeTechnical  = "technical"
)

const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
	RoleSystem      = "system"
)

const (
	MessageText            = "text"
	MessageCode            = "code"
	MessageAudioTranscript = "audio_transcript"
)

const (
	RecordingCodeSnapshot  = "code_snapshot"
	RecordingConversation  = "conversation"
	RecordingAudioClip     = "audio_clip"
	RecordingAnalysis      = "analysis"
	RecordingQuestionStart = "question_start"
)

const (
	EndReasonNatural    = "natural_completion"
	EndReasonTerminated = "user_terminated"
)

type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Resume rows are immutable; a new upload creates a new row and the latest
// row per user is the authoritative personalization context.
type Resume struct {
	ID         string            `db:"id" json:"id"`
	UserID     string            `db:"user_id" json:"userId"`
	Filename   string            `db:"filename" json:"filename"`
	RawText    string            `db:"raw_text" json:"-"`
	Skills     []string          `db:"-" json:"skills"`
	Experience []ExperienceEntry `db:"-" json:"experience"`
	Education  []EducationEntry  `db:"-" json:"education"`
	Summary    string            `db:"summary" json:"summary"`
	UploadedAt time.Time         `db:"uploaded_at" json:"uploadedAt"`
}

// SessionFeedback is the structured final report written at completion.
type SessionFeedback struct {
	IntegrityNote      string          `json:"integrity_note,omitempty"`
	ExecutiveSummary   string          `json:"executive_summary"`
	DetailedFeedback   FeedbackDetails `json:"detailed_feedback"`
	InterviewReadiness string          `json:"interview_readiness"`
	Recommendation     string          `json:"recommendation"`
}

type FeedbackDetails struct {
	TechnicalSkills   string   `json:"technical_skills"`
	ProblemSolving    string   `json:"problem_solving"`
	Communication     string   `json:"communication"`
	Strengths         []string `json:"areas_of_strength"`
	Improvements      []string `json:"areas_for_improvement"`
	RecommendedTopics []string `json:"recommended_topics_to_study"`
}

type InterviewSession struct {
	ID                  string           `db:"id" json:"id"`
	UserID              string           `db:"user_id" json:"userId"`
	SessionType         string           `db:"session_type" json:"sessionType"`
	Status              string           `db:"status" json:"status"`
	Difficulty          string           `db:"difficulty" json:"difficulty"`
	Topic               *string          `db:"topic" json:"topic"`
	QuestionCount       int              `db:"question_count" json:"questionCount"`
	StartedAt           time.Time        `db:"started_at" json:"startedAt"`
	EndedAt             *time.Time       `db:"ended_at" json:"endedAt"`
	OverallScore        float64          `db:"overall_score" json:"overallScore"`
	TechnicalScore      float64          `db:"technical_score" json:"technicalScore"`
	CommunicationScore  float64          `db:"communication_score" json:"communicationScore"`
	ReasoningScore      float64          `db:"reasoning_score" json:"reasoningScore"`
	ProblemSolvingScore float64          `db:"problem_solving_score" json:"problemSolvingScore"`
	Feedback            *SessionFeedback `db:"-" json:"feedback"`
	ViolationCount      int              `db:"violation_count" json:"violationCount"`
	EndReason           *string          `db:"end_reason" json:"endReason"`
}

// QuestionAnalysis is the gateway's judgment of one coding answer.
type QuestionAnalysis struct {
	CodeCorrectness       CodeCorrectness       `json:"code_correctness"`
	ApproachAnalysis      ApproachAnalysis      `json:"approach_analysis"`
	CommunicationAnalysis CommunicationAnalysis `json:"communication_analysis"`
	OverallFeedback       string                `json:"overall_feedback"`
	Strengths             []string              `json:"strengths"`
	Improvements          []string              `json:"improvements"`
}

type CodeCorrectness struct {
	Score            float64  `json:"score"`
	IsCorrect        bool     `json:"is_correct"`
	Issues           []string `json:"issues"`
	EdgeCasesHandled bool     `json:"edge_cases_handled"`
}

type ApproachAnalysis struct {
	Score            float64 `json:"score"`
	ApproachUsed     string  `json:"approach_used"`
	IsOptimal        bool    `json:"is_optimal"`
	TimeComplexity   string  `json:"time_complexity_achieved"`
	SpaceComplexity  string  `json:"space_complexity_achieved"`
	ReasoningQuality string  `json:"reasoning_quality"`
}

type CommunicationAnalysis struct {
	Score               float64 `json:"score"`
	Clarity             string  `json:"clarity"`
	Structure           string  `json:"structure"`
	TechnicalVocabulary string  `json:"technical_vocabulary"`
	ExplanationQuality  string  `json:"explanation_quality"`
}

type SuggestedSolution struct {
	Approach        string `json:"approach"`
	Description     string `json:"description"`
	Code            string `json:"code"`
	TimeComplexity  string `json:"time_complexity"`
	SpaceComplexity string `json:"space_complexity"`
}

type Question struct {
	ID                    string              `db:"id" json:"id"`
	SessionID             string              `db:"session_id" json:"sessionId"`
	Number                int                 `db:"question_number" json:"number"`
	Text                  string              `db:"question_text" json:"text"`
	QuestionType          string              `db:"question_type" json:"questionType"`
	Difficulty            string              `db:"difficulty" json:"difficulty"`
	CandidateResponseText string              `db:"candidate_response_text" json:"candidateResponseText"`
	CandidateCode         string              `db:"candidate_code" json:"candidateCode"`
	VoiceTranscript       string              `db:"voice_transcript" json:"voiceTranscript"`
	Analysis              *QuestionAnalysis   `db:"-" json:"analysis"`
	CodeCorrectnessScore  float64             `db:"code_correctness_score" json:"codeCorrectnessScore"`
	ApproachScore         float64             `db:"approach_score" json:"approachScore"`
	CommunicationScore    float64             `db:"communication_score" json:"communicationScore"`
	FollowUpQuestions     []string            `db:"-" json:"followUpQuestions"`
	SuggestedSolutions    []SuggestedSolution `db:"-" json:"suggestedSolutions"`
	CreatedAt             time.Time           `db:"created_at" json:"createdAt"`
}

type ChatMessage struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"sessionId"`
	Seq         int64     `db:"seq" json:"seq"`
	Role        string    `db:"role" json:"role"`
	Content     string    `db:"content" json:"content"`
	MessageType string    `db:"message_type" json:"messageType"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type ViolationEvent struct {
	ID            string    `db:"id" json:"id"`
	SessionID     string    `db:"session_id" json:"sessionId"`
	ViolationType string    `db:"violation_type" json:"violationType"`
	Detail        string    `db:"detail" json:"detail"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

type RecordingEvent struct {
	ID        string         `db:"id" json:"id"`
	SessionID string         `db:"session_id" json:"sessionId"`
	Seq       int64          `db:"seq" json:"seq"`
	EventType string         `db:"event_type" json:"eventType"`
	EventData map[string]any `db:"-" json:"eventData"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

type MemoryFact struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"userId"`
	Key             string    `db:"memory_key" json:"key"`
	Value           string    `db:"memory_value" json:"value"`
	Category        string    `db:"category" json:"category"`
	SourceSessionID *string   `db:"source_session_id" json:"sourceSessionId"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

type AuthToken struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"userId"`
	Token      string     `db:"token" json:"-"`
	TokenType  string     `db:"token_type" json:"tokenType"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expiresAt"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
	LastUsedAt *time.Time `db:"last_used_at" json:"lastUsedAt"`
	IsActive   bool       `db:"is_active" json:"isActive"`
	DeviceInfo string     `db:"device_info" json:"deviceInfo"`
}

type ActivityLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	SessionID  *string   `db:"session_id" json:"sessionId"`
	Action     string    `db:"action" json:"action"`
	ActionType string    `db:"action_type" json:"actionType"`
	Detail     string    `db:"detail" json:"detail"`
	IP         string    `db:"ip" json:"ip"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
