package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DatabaseURL            string
	JWTSecret              string
	JWTIssuer              string
	AccessTTLSeconds       int64
	RefreshTTLSeconds      int64
	LLMAPIKey              string
	LLMBaseURL             string
	LLMModel               string
	LLMTimeoutSeconds      int
	SpeechAPIKey           string
	ProctorDebounceSeconds int
	SessionIdleMinutes     int
	MetricsDiskPath        string
	MetricsSampleSeconds   int
	CorsOrigins            []string
}

func Load() Config {
	return Config{
		DatabaseURL:            mustEnv("DATABASE_URL"),
		JWTSecret:              mustEnv("JWT_SECRET"),
		JWTIssuer:              envOr("JWT_ISSUER", "intervuex"),
		AccessTTLSeconds:       int64(envOrInt("ACCESS_TTL_SECONDS", 14400)),
		RefreshTTLSeconds:      int64(envOrInt("REFRESH_TTL_SECONDS", 604800)),
		LLMAPIKey:              envOr("LLM_API_KEY", ""),
		LLMBaseURL:             envOr("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:               envOr("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMTimeoutSeconds:      envOrInt("LLM_TIMEOUT_SECONDS", 30),
		SpeechAPIKey:           envOr("SPEECH_API_KEY", ""),
		ProctorDebounceSeconds: envOrInt("PROCTOR_DEBOUNCE_SECONDS", 12),
		SessionIdleMinutes:     envOrInt("SESSION_IDLE_MINUTES", 60),
		MetricsDiskPath:        envOr("METRICS_DISK_PATH", "/"),
		MetricsSampleSeconds:   envOrInt("METRICS_SAMPLE_INTERVAL", 60),
		CorsOrigins:            parseCSV(envOr("CORS_ORIGINS", "")),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
