package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone   AuthMode = "none"   // Every visitor may edit (local use)
	AuthModeLocal  AuthMode = "local"  // Single maintainer account with a bcrypt password
	AuthModeGitHub AuthMode = "github" // GitHub OAuth login
)

type (
	Config struct {
		HTTP
		Global
		Log
		Database
		Auth
		GitHub
		Tasks
		IntegritySweep
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Log struct {
		Level  string
		Pretty bool // Human readable console output instead of JSON
	}
	Database struct {
		Path string
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Local mode maintainer account
		MaintainerUsername     string
		MaintainerPasswordHash string

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	GitHub struct {
		ClientID      string
		ClientSecret  string
		RedirectURL   string
		AllowedLogins []string // Empty allows any GitHub account
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	IntegritySweep struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
		Repair   bool   // Repair findings instead of only reporting them
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 90)
	}
)

// NewConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func NewConfig() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", DefaultHost)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_maintainer_username", "maintainer")
	v.SetDefault("auth_maintainer_password_hash", "")
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// GitHub OAuth defaults
	v.SetDefault("github_client_id", "")
	v.SetDefault("github_client_secret", "")
	v.SetDefault("github_redirect_url", "http://localhost:8188/github-callback")
	v.SetDefault("github_allowed_logins", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("integrity_sweep_enabled", true)
	v.SetDefault("integrity_sweep_schedule", "30 3 * * *") // Daily at 03:30
	v.SetDefault("integrity_sweep_repair", false)
	v.SetDefault("audit_retention_days", 90)

	if AuthMode(v.GetString("AUTH_MODE")) == AuthModeNone {
		v.SetDefault("host", LoopbackHost)
	}

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			Mode:                   AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:          v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:        v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:             v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:          v.GetBool("AUTH_SECURE_COOKIES"),
			MaintainerUsername:     v.GetString("AUTH_MAINTAINER_USERNAME"),
			MaintainerPasswordHash: v.GetString("AUTH_MAINTAINER_PASSWORD_HASH"),
			MaxLoginAttempts:       v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:        v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:        v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		GitHub: GitHub{
			ClientID:      v.GetString("GITHUB_CLIENT_ID"),
			ClientSecret:  v.GetString("GITHUB_CLIENT_SECRET"),
			RedirectURL:   v.GetString("GITHUB_REDIRECT_URL"),
			AllowedLogins: splitList(v.GetString("GITHUB_ALLOWED_LOGINS")),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		IntegritySweep: IntegritySweep{
			Enabled:  v.GetBool("INTEGRITY_SWEEP_ENABLED"),
			Schedule: v.GetString("INTEGRITY_SWEEP_SCHEDULE"),
			Repair:   v.GetBool("INTEGRITY_SWEEP_REPAIR"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
	}
}

// splitList parses a comma-separated environment value.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
