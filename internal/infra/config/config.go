package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the scheduler service
type AppConfig struct {
	LogLevel    string
	Environment string

	MongoURI                     string
	MongoDatabase                string
	TournamentsCollection        string
	RegistrationsCollection      string
	NotificationsCollection      string
	AnnouncementsCollection      string
	DatabaseURL                  string // Postgres ledger for sweep reports and notification retries; optional
	RedisAddr                    string // Sweep lease across instances; in-process lease when empty
	RedisPassword                string
	TelegramToken                string // Admin bot; disabled when empty
	AdminTelegramID              int64
	HTTPListenAddr               string
	AdminAPIToken                string
	CronSpecSweep                string
	CronSpecNotificationRetry    string
	SweepTimeout                 time.Duration
	ManualStartTimeout           time.Duration
	CompletionWindow             time.Duration
	FanoutTimeout                time.Duration
	SweepConcurrency             int
	FanoutConcurrency            int
	NotificationRetryMaxAttempts int
	NotificationRetryBatch       int
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.MongoURI = os.Getenv("MONGODB_URI")
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is not set")
	}
	cfg.MongoDatabase = getString("MONGODB_DATABASE", "esports")
	cfg.TournamentsCollection = getString("MONGODB_TOURNAMENTS_COLLECTION", "tournaments")
	cfg.RegistrationsCollection = getString("MONGODB_REGISTRATIONS_COLLECTION", "registrations")
	cfg.NotificationsCollection = getString("MONGODB_NOTIFICATIONS_COLLECTION", "notifications")
	cfg.AnnouncementsCollection = getString("MONGODB_ANNOUNCEMENTS_COLLECTION", "announcements")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is required when TELEGRAM_TOKEN is set")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.HTTPListenAddr = getString("HTTP_LISTEN_ADDR", ":8080")
	cfg.AdminAPIToken = os.Getenv("ADMIN_API_TOKEN")

	cfg.LogLevel = strings.ToLower(getString("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getString("ENVIRONMENT", "development"))

	cfg.CronSpecSweep = getString("CRON_SPEC_SWEEP", "*/5 * * * *")                           // every 5 minutes
	cfg.CronSpecNotificationRetry = getString("CRON_SPEC_NOTIFICATION_RETRY", "*/15 * * * *") // every 15 minutes

	if cfg.SweepTimeout, err = getDuration("SWEEP_TIMEOUT", 4*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ManualStartTimeout, err = getDuration("MANUAL_START_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if cfg.CompletionWindow, err = getDuration("COMPLETION_WINDOW", time.Hour); err != nil {
		return nil, err
	}
	if cfg.FanoutTimeout, err = getDuration("FANOUT_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepConcurrency, err = getInt("SWEEP_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.FanoutConcurrency, err = getInt("FANOUT_CONCURRENCY", 16); err != nil {
		return nil, err
	}
	if cfg.NotificationRetryMaxAttempts, err = getInt("NOTIFICATION_RETRY_MAX_ATTEMPTS", 5); err != nil {
		return nil, err
	}
	if cfg.NotificationRetryBatch, err = getInt("NOTIFICATION_RETRY_BATCH", 100); err != nil {
		return nil, err
	}

	for name, d := range map[string]time.Duration{
		"SWEEP_TIMEOUT":        cfg.SweepTimeout,
		"MANUAL_START_TIMEOUT": cfg.ManualStartTimeout,
		"COMPLETION_WINDOW":    cfg.CompletionWindow,
		"FANOUT_TIMEOUT":       cfg.FanoutTimeout,
	} {
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive (got %s)", name, d)
		}
	}
	if cfg.SweepConcurrency <= 0 || cfg.FanoutConcurrency <= 0 {
		return nil, fmt.Errorf("SWEEP_CONCURRENCY and FANOUT_CONCURRENCY must be positive (got %d and %d)", cfg.SweepConcurrency, cfg.FanoutConcurrency)
	}

	return cfg, nil
}

func getString(envKey, defaultVal string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultVal
}

func getDuration(envKey string, defaultVal time.Duration) (time.Duration, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format for %s: %w", envKey, err)
	}
	return d, nil
}

func getInt(envKey string, defaultVal int) (int, error) {
	valStr := os.Getenv(envKey)
	if valStr == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format for %s: %w", envKey, err)
	}
	return i, nil
}
