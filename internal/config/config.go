package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Triage data files (versioned, validated at startup).
	LexiconPath  string
	ResourcePath string

	// Risk thresholds. Scores in [ThresholdAmber, ThresholdRed) map to
	// AMBER; scores at or above ThresholdRed map to RED.
	ThresholdAmber  float64
	ThresholdRed    float64
	EscalationBonus float64
	TrendMinDelta   float64
	TrendOnlyFloor  bool

	// Conversation window sizing and lifetime.
	WindowSize           int
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	TranscriptTTL time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	AuditQueueURL       string

	AdminJWTSecret string

	// Safeguarding notification settings.
	SafeguardingEmail string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		LexiconPath:  getEnv("TRIAGE_LEXICON_PATH", "configs/lexicon.yaml"),
		ResourcePath: getEnv("TRIAGE_RESOURCE_PATH", "configs/resources.yaml"),

		ThresholdAmber:  getEnvAsFloat("TRIAGE_THRESHOLD_AMBER", 4.0),
		ThresholdRed:    getEnvAsFloat("TRIAGE_THRESHOLD_RED", 7.0),
		EscalationBonus: getEnvAsFloat("TRIAGE_ESCALATION_BONUS", 2.0),
		TrendMinDelta:   getEnvAsFloat("TRIAGE_TREND_MIN_DELTA", 1.0),
		TrendOnlyFloor:  getEnvAsBool("TRIAGE_TREND_ONLY_FLOOR", true),

		WindowSize:           getEnvAsInt("TRIAGE_WINDOW_SIZE", 10),
		SessionTTL:           getEnvAsDuration("TRIAGE_SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvAsDuration("TRIAGE_SESSION_SWEEP_INTERVAL", 5*time.Minute),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		TranscriptTTL: getEnvAsDuration("TRIAGE_TRANSCRIPT_TTL", 24*time.Hour),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		AuditQueueURL:       getEnv("TRIAGE_AUDIT_QUEUE_URL", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		SafeguardingEmail: getEnv("SAFEGUARDING_EMAIL", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Veteran Support"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Veteran Support"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
