package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "NOTIFY_LOCALE", "REMINDER_LEAD_TIME", "REMINDER_RESYNC_INTERVAL", "FIRESTORE_DATABASE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ja", cfg.NotifyLocale)
	assert.Equal(t, "(default)", cfg.FirestoreDatabase)
	assert.Equal(t, 6*time.Hour, cfg.ReminderLeadTime)
	assert.Equal(t, 15*time.Minute, cfg.ReminderResyncInterval)
	assert.Equal(t, "0 * * * * *", cfg.ReminderDispatchSpec)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFY_LOCALE", "en")
	t.Setenv("REMINDER_LEAD_TIME", "90m")
	t.Setenv("REMINDER_RESYNC_INTERVAL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "en", cfg.NotifyLocale)
	assert.Equal(t, 90*time.Minute, cfg.ReminderLeadTime)
	assert.Equal(t, 15*time.Minute, cfg.ReminderResyncInterval)
}
