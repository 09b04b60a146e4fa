package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                   string
	GoogleProjectID        string
	FirebaseCredentials    string
	FirestoreDatabase      string
	TaskEventsSubscription string
	DatabaseURL            string
	NotifyLocale           string

	ReminderUserID         string
	ReminderStateFile      string
	ReminderSettingsFile   string
	ReminderLeadTime       time.Duration
	ReminderDispatchSpec   string
	ReminderResyncInterval time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		GoogleProjectID:        getEnv("GOOGLE_PROJECT_ID", ""),
		FirebaseCredentials:    getEnv("FIREBASE_CREDENTIALS", ""),
		FirestoreDatabase:      getEnv("FIRESTORE_DATABASE", "(default)"),
		TaskEventsSubscription: getEnv("TASK_EVENTS_SUBSCRIPTION", ""),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		NotifyLocale:           getEnv("NOTIFY_LOCALE", "ja"),

		ReminderUserID:         getEnv("REMINDER_USER_ID", ""),
		ReminderStateFile:      getEnv("REMINDER_STATE_FILE", "reminders.json"),
		ReminderSettingsFile:   getEnv("REMINDER_SETTINGS_FILE", "reminder-settings.json"),
		ReminderLeadTime:       getDuration("REMINDER_LEAD_TIME", 6*time.Hour),
		ReminderDispatchSpec:   getEnv("REMINDER_DISPATCH_SPEC", "0 * * * * *"),
		ReminderResyncInterval: getDuration("REMINDER_RESYNC_INTERVAL", 15*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[WARN] Invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
