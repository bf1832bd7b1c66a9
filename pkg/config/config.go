package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DatabaseURL        string
	JWTSecret          string
	JWTAccessExpiry    time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	// Sync engine tuning
	SyncBatchSize     int           // ids requested per Gmail list call
	SyncPageDelay     time.Duration // pause between pages to bound request rate
	SessionStaleAfter time.Duration // active session with no activity past this is abandoned

	// Background loops
	SchedulerInterval    time.Duration // scan cycle for accounts needing sync
	AccountStaleAfter    time.Duration // last_sync older than this triggers a sync
	ScheduledSyncTimeout time.Duration // wall-clock limit for one scheduled sync
	ScheduledSyncCap     int           // max messages per scheduled sync
	RefreshInterval      time.Duration // token refresher cycle
	RefreshThreshold     time.Duration // refresh tokens expiring within this window
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost user=mailvault password=mailvault dbname=mailvault port=5432 sslmode=disable"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:    getDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/google/callback"),

		SyncBatchSize:     getInt("SYNC_BATCH_SIZE", 100),
		SyncPageDelay:     getDuration("SYNC_PAGE_DELAY", 100*time.Millisecond),
		SessionStaleAfter: getDuration("SESSION_STALE_AFTER", 10*time.Minute),

		SchedulerInterval:    getDuration("SCHEDULER_INTERVAL", 5*time.Minute),
		AccountStaleAfter:    getDuration("ACCOUNT_STALE_AFTER", 10*time.Minute),
		ScheduledSyncTimeout: getDuration("SCHEDULED_SYNC_TIMEOUT", 30*time.Minute),
		ScheduledSyncCap:     getInt("SCHEDULED_SYNC_CAP", 1000),
		RefreshInterval:      getDuration("TOKEN_REFRESH_INTERVAL", 15*time.Minute),
		RefreshThreshold:     getDuration("TOKEN_REFRESH_THRESHOLD", 10*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
