package config

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	JWTSecret         string
	Port              string
	Env               string
	FCMServiceAccount string
	UploadDir         string
	// OperatorEmails register with the operator role.
	OperatorEmails []string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	// Cron specs for the recurring jobs.
	SweepSchedule      string
	MotivationSchedule string
	CleanupSchedule    string

	InactivityDays            int
	NotificationRetentionDays int
	MaxRejections             int
	RankingCacheTTL           time.Duration
}

func Load() *Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "civic.db"),
		JWTSecret:         getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		FCMServiceAccount: getEnv("FCM_SERVICE_ACCOUNT", ""),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		OperatorEmails:    getEnvList("OPERATOR_EMAILS"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@civic-tasks.local"),

		SweepSchedule:      getEnv("SWEEP_SCHEDULE", "@every 1h"),
		MotivationSchedule: getEnv("MOTIVATION_SCHEDULE", "0 9 * * *"),
		CleanupSchedule:    getEnv("CLEANUP_SCHEDULE", "0 3 * * 0"),

		InactivityDays:            getEnvInt("INACTIVITY_DAYS", 4),
		NotificationRetentionDays: getEnvInt("NOTIFICATION_RETENTION_DAYS", 30),
		MaxRejections:             getEnvInt("MAX_REJECTIONS", 0),
		RankingCacheTTL:           getEnvDuration("RANKING_CACHE_TTL", time.Minute),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}

func (c *Config) IsOperatorEmail(email string) bool {
	return slices.Contains(c.OperatorEmails, strings.ToLower(email))
}
