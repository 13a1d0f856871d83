package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUIZ_WINDOW_SECONDS", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("METRICS_ENABLED", "")

	cfg := Load()
	assert.Equal(t, 60*time.Second, cfg.QuizWindow)
	assert.Nil(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.Mail.Host)
	assert.Equal(t, 3, cfg.Mail.MaxAttempts)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("QUIZ_WINDOW_SECONDS", "45")
	t.Setenv("ALLOWED_ORIGINS", " https://ptp.example.edu , ,http://localhost:5173")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("MAX_IMPORT_SIZE_MB", "2")
	t.Setenv("POLL_RATE_PER_MINUTE", "not-a-number")

	cfg := Load()
	assert.Equal(t, 45*time.Second, cfg.QuizWindow)
	assert.Equal(t, []string{"https://ptp.example.edu", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxImportBytes)
	assert.Equal(t, 120, cfg.PollRatePerMinute, "unparsable values fall back to the default")
}

func TestAttendanceLocation(t *testing.T) {
	cfg := &Config{AttendanceTimezone: "Not/AZone"}
	loc := cfg.AttendanceLocation()

	noonUTC := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	_, offset := noonUTC.In(loc).Zone()
	assert.Equal(t, 5*3600+1800, offset, "unknown zones fall back to +05:30")
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "login:42", CacheKey.StudentSessionKey(42))
	assert.Equal(t, "event:abc:activation", CacheKey.EventActivationKey("abc"))
	assert.Equal(t, "event:abc:quiz", CacheKey.EventQuizChannel("abc"))
}
