package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	// CRM backend (Frappe-style resource API)
	CRMBaseURL  string
	CRMAPIToken string
	// Public app base URL, used to build the signing link
	AppBaseURL string
	// Document-understanding service (OpenAI-compatible chat completions)
	DocAIBaseURL string
	DocAIAPIKey  string
	DocAIModel   string
	// Admin API (HS256 bearer tokens for /admin routes)
	AdminJWTSecret string
	// SMTP configuration for signing-invitation mails
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis configuration (rate limiting)
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitSignThreshold   int
	RateLimitGlobalThreshold int
}

func LoadConfig() (*Config, error) {
	// Load .env file (effective locally, ignored in production when absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		// Strip trailing slashes so URL joins never produce double slashes
		CRMBaseURL:  strings.TrimRight(getEnv("CRM_BASE_URL", ""), "/"),
		CRMAPIToken: getEnv("CRM_API_TOKEN", ""),
		AppBaseURL:  strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),

		DocAIBaseURL: strings.TrimRight(getEnv("DOCAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		DocAIAPIKey:  getEnv("DOCAI_API_KEY", ""),
		DocAIModel:   getEnv("DOCAI_MODEL", "gpt-4o-mini"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@example.com"),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),  // 1 minute window
		RateLimitSignThreshold:   getEnvInt("RATE_LIMIT_SIGN_THRESHOLD", 10),  // 10 signing attempts per window
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
	}

	if cfg.CRMBaseURL == "" {
		log.Println("WARNING: CRM_BASE_URL is missing. All lead operations will fail.")
	}
	if cfg.DocAIAPIKey == "" {
		log.Println("WARNING: DOCAI_API_KEY not configured. Document validation will be unavailable.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
