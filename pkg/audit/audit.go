package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of e-signature audit event
type EventType string

const (
	EventTokenIssued       EventType = "esign_token_issued"
	EventContractViewed    EventType = "esign_contract_viewed"
	EventSignatureCaptured EventType = "esign_signature_captured"
	EventTokenRejected     EventType = "esign_token_rejected"
	EventTokenExpired      EventType = "esign_token_expired"
	EventReplayBlocked     EventType = "esign_replay_blocked"
	EventRateLimited       EventType = "rate_limit_triggered"
)

// Event represents a signature-flow event to be logged for compliance review
type Event struct {
	Timestamp   time.Time              `json:"timestamp"`
	Service     string                 `json:"service"`
	Environment string                 `json:"env"`
	Level       string                 `json:"level"`
	Event       EventType              `json:"event"`
	Lead        string                 `json:"lead,omitempty"`
	Email       string                 `json:"email,omitempty"` // masked before logging
	TokenHash   string                 `json:"token_hash,omitempty"`
	IP          string                 `json:"ip,omitempty"`
	RequestID   string                 `json:"request_id,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// Logger provides structured logging for the e-signature audit trail.
// Raw signing tokens are never logged; only their SHA-256 hash.
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var defaultLogger *Logger

// Init initializes the audit logger with Zap
func Init(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"

	// Stdout for container environments
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		// Fallback to a basic logger if config fails
		logger, _ = zap.NewProduction()
	}

	l := &Logger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
	defaultLogger = l
	return l
}

// Default returns the default audit logger instance
func Default() *Logger {
	if defaultLogger == nil {
		return Init("restaurant-onboarding", getEnvironment())
	}
	return defaultLogger
}

// Log logs an audit event
func (l *Logger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = l.serviceName
	event.Environment = l.environment

	level := zapcore.InfoLevel
	switch event.Event {
	case EventTokenRejected, EventTokenExpired, EventRateLimited:
		level = zapcore.WarnLevel
	case EventReplayBlocked:
		level = zapcore.ErrorLevel
	}
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
	}
	if event.Lead != "" {
		fields = append(fields, zap.String("lead", event.Lead))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", MaskEmail(event.Email)))
	}
	if event.TokenHash != "" {
		fields = append(fields, zap.String("token_hash", event.TokenHash))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	l.zapLogger.Log(level, string(event.Event), fields...)
}

// TokenIssued records a new signing token bound to a lead
func (l *Logger) TokenIssued(lead, email, token, requestID string) {
	l.Log(Event{
		Event:     EventTokenIssued,
		Lead:      lead,
		Email:     email,
		TokenHash: HashToken(token),
		RequestID: requestID,
	})
}

// ContractViewed records a successful fetch of the contract for signing
func (l *Logger) ContractViewed(lead, token, ip, requestID string) {
	l.Log(Event{
		Event:     EventContractViewed,
		Lead:      lead,
		TokenHash: HashToken(token),
		IP:        ip,
		RequestID: requestID,
	})
}

// SignatureCaptured records a completed signature
func (l *Logger) SignatureCaptured(lead, token, signerName, ip, requestID string) {
	l.Log(Event{
		Event:     EventSignatureCaptured,
		Lead:      lead,
		TokenHash: HashToken(token),
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"signer_name": signerName},
	})
}

// TokenRejected records a signing attempt with an unknown or consumed token
func (l *Logger) TokenRejected(token, ip, requestID, reason string) {
	l.Log(Event{
		Event:     EventTokenRejected,
		TokenHash: HashToken(token),
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"reason": reason},
	})
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashToken creates a short SHA256 hash of a signing token so audit entries
// can be correlated without ever logging the token itself
func HashToken(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:8])
}

// getEnvironment determines the current environment
func getEnvironment() string {
	env := os.Getenv("GIN_MODE")
	if env == "release" {
		return "production"
	}
	return "development"
}
