// Package config loads LifeSync configuration from an optional YAML file,
// LIFESYNC_* environment variables and built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Nutrition NutritionConfig `mapstructure:"nutrition"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"    validate:"omitempty,min=16"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"     validate:"gt=0"`
	CookieName   string        `mapstructure:"cookie_name"   validate:"required"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
}

// GeminiConfig configures the Gemini client and the dietitian retry loop.
// APIKey may be empty; the dietitian then answers with its fallback text.
type GeminiConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"          validate:"omitempty,url"`
	Models          []string      `mapstructure:"models"            validate:"required,min=1,dive,required"`
	Attempts        int           `mapstructure:"attempts"          validate:"min=1,max=10"`
	Timeout         time.Duration `mapstructure:"timeout"           validate:"gt=0"`
	Temperature     float32       `mapstructure:"temperature"       validate:"min=0,max=2"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" validate:"min=1"`
	BackoffStep     time.Duration `mapstructure:"backoff_step"      validate:"min=0"`
	BackoffJitter   time.Duration `mapstructure:"backoff_jitter"    validate:"min=0"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"       validate:"min=0"`
}

type NutritionConfig struct {
	MatchPolicy string `mapstructure:"match_policy" validate:"oneof=longest first"`
	// FoodsFile replaces the embedded food table when set.
	FoodsFile string `mapstructure:"foods_file"`
}

// TelegramConfig enables the Telegram front end when Token is set.
type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig uses a six-field cron expression (seconds first).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// TelegramEnabled reports whether a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != ""
}

// ValidateServe checks settings that only the long-running service needs.
func (c *Config) ValidateServe() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrConfiguration)
	}
	return nil
}
