package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// VerifiedRecipients is the delivery allow-list. When non-empty, codes
	// are only mailed to these addresses; everyone else gets the code back
	// in the response (demo disclosure).
	VerifiedRecipients []string

	// SNSAlertTopicARN receives an ops alert whenever a configured mail
	// channel fails to deliver. Empty disables alerting.
	SNSAlertTopicARN string
	SNSRegion        string

	CodeTTL       time.Duration
	ResetTokenTTL time.Duration
	MaxAttempts   int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Challenges  string
	ResetTokens string
	Users       string
	Deliveries  string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Challenges:  getEnv("DYNAMO_TABLE_CHALLENGES", "password_challenges"),
			ResetTokens: getEnv("DYNAMO_TABLE_RESET_TOKENS", "password_reset_tokens"),
			Users:       getEnv("DYNAMO_TABLE_USERS", "users"),
			Deliveries:  getEnv("DYNAMO_TABLE_DELIVERIES", "code_deliveries"),
		},

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@brainbox.dev"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		VerifiedRecipients: splitNonEmpty(getEnv("VERIFIED_RECIPIENTS", "")),

		SNSAlertTopicARN: getEnv("SNS_ALERT_TOPIC_ARN", ""),
		SNSRegion:        getEnv("SNS_REGION", "us-east-1"),

		CodeTTL:       time.Duration(getEnvInt("CODE_TTL_MINUTES", 10)) * time.Minute,
		ResetTokenTTL: time.Duration(getEnvInt("RESET_TOKEN_TTL_MINUTES", 30)) * time.Minute,
		MaxAttempts:   getEnvInt("MAX_VERIFY_ATTEMPTS", 5),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
