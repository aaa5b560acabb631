package config

import "time"

const (
	DefaultLogLevel = "info"

	DefaultHTTPAddr            = ":8080"
	DefaultHTTPReadTimeout     = 15 * time.Second
	DefaultHTTPWriteTimeout    = 2 * time.Minute // chat can wait on several Gemini attempts
	DefaultHTTPShutdownTimeout = 10 * time.Second

	DefaultDatabasePath = "lifesync.db"

	DefaultTokenTTL   = 24 * time.Hour
	DefaultCookieName = "lifesync_token"

	DefaultGeminiAttempts        = 3
	DefaultGeminiTimeout         = 10 * time.Second
	DefaultGeminiTemperature     = 0.7
	DefaultGeminiMaxOutputTokens = 300
	DefaultGeminiBackoffStep     = 2 * time.Second
	DefaultGeminiBackoffJitter   = time.Second
	DefaultGeminiRetryDelay      = time.Second

	DefaultMatchPolicy = "first"

	TaskSQLMaintenance = "sql_maintenance"
	TaskWeeklyDigest   = "weekly_digest"
)

// DefaultGeminiModels is tried in order.
var DefaultGeminiModels = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-flash-latest"}

var defaults = map[string]any{
	"log.level": DefaultLogLevel,
	"log.json":  false,

	"http.addr":             DefaultHTTPAddr,
	"http.read_timeout":     DefaultHTTPReadTimeout,
	"http.write_timeout":    DefaultHTTPWriteTimeout,
	"http.shutdown_timeout": DefaultHTTPShutdownTimeout,

	"database.path": DefaultDatabasePath,

	"auth.jwt_secret":    "",
	"auth.token_ttl":     DefaultTokenTTL,
	"auth.cookie_name":   DefaultCookieName,
	"auth.secure_cookie": false,

	"gemini.base_url":          "",
	"gemini.models":            DefaultGeminiModels,
	"gemini.attempts":          DefaultGeminiAttempts,
	"gemini.timeout":           DefaultGeminiTimeout,
	"gemini.temperature":       DefaultGeminiTemperature,
	"gemini.max_output_tokens": DefaultGeminiMaxOutputTokens,
	"gemini.backoff_step":      DefaultGeminiBackoffStep,
	"gemini.backoff_jitter":    DefaultGeminiBackoffJitter,
	"gemini.retry_delay":       DefaultGeminiRetryDelay,

	"nutrition.match_policy": DefaultMatchPolicy,
	"nutrition.foods_file":   "",

	"telegram.token": "",

	"scheduler.tasks." + TaskSQLMaintenance + ".enabled":  true,
	"scheduler.tasks." + TaskSQLMaintenance + ".schedule": "0 0 4 * * *",
	"scheduler.tasks." + TaskWeeklyDigest + ".enabled":    true,
	"scheduler.tasks." + TaskWeeklyDigest + ".schedule":   "0 0 9 * * 1",
}
