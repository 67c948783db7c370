package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BaseURL   string // Required: public base URL embedded in emailed links and redirects
	JWTSecret string // Required: shared secret for platform-issued access tokens
	JWTIssuer string // Optional: expected issuer claim (default: lettre-platform)

	PostmarkServerToken  string        // Optional: Postmark server token (dev mailer when empty)
	PostmarkAccountToken string        // Optional: Postmark account token
	FromEmail            string        // Optional: From address for outbound mail (default: no-reply@lettre.app)
	ReplyToEmail         string        // Optional: Reply-To address for outbound mail
	MailOutputDir        string        // Optional: directory the dev mailer writes to (default: ./outbox)
	DatabaseFile         string        // Optional: path to SQLite database file (default: ./workspace.db)
	SenderTokenTTL       time.Duration // Optional: confirmation token validity (default: 24h)
	InvitationTTL        time.Duration // Optional: invitation validity (default: 72h)
	RecoveryTTL          time.Duration // Optional: recovery link validity (default: 1h)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		BaseURL:   getEnvOrDefault("WORKSPACE_BASE_URL", "http://localhost:8080"),
		JWTSecret: os.Getenv("WORKSPACE_JWT_SECRET"),
		JWTIssuer: getEnvOrDefault("WORKSPACE_JWT_ISSUER", "lettre-platform"),

		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
		FromEmail:            getEnvOrDefault("MAIL_FROM", "no-reply@lettre.app"),
		ReplyToEmail:         os.Getenv("MAIL_REPLY_TO"),
		MailOutputDir:        getEnvOrDefault("MAIL_OUTPUT_DIR", "outbox"),
		DatabaseFile:         getEnvOrDefault("WORKSPACE_DATABASE_FILE", "workspace.db"),
		SenderTokenTTL:       getEnvDurationOrDefault("SENDER_TOKEN_TTL", 24*time.Hour),
		InvitationTTL:        getEnvDurationOrDefault("INVITATION_TTL", 72*time.Hour),
		RecoveryTTL:          getEnvDurationOrDefault("RECOVERY_TTL", 1*time.Hour),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
