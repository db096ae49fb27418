package config

import (
	"time"

	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Web
		Client
		Tasks
		Metrics
	}

	HTTP struct {
		Port       int32
		Host       string
		HSTSMaxAge int // Seconds; 0 disables the header
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // SQLite file, used when Driver is sqlite
		DSN    string // Postgres connection string
	}
	Auth struct {
		JWTSecret   string
		Issuer      string
		TokenExpiry time.Duration
		BcryptCost  int

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)

		PurgeSchedule string // Cron format, revoked token cleanup
	}
	Web struct {
		Port            int32
		APIURL          string // Base URL of the API server the UI talks to
		SessionDBPath   string
		SessionLifetime time.Duration
		CSRFSecret      string
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
	Client struct {
		APIURL          string
		CredentialsPath string
		CredentialsKey  string // Base64 32 byte key; a key file is generated when empty
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Metrics struct {
		Enabled bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("hsts_max_age", 0)
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	// Auth defaults
	v.SetDefault("auth_jwt_secret", "")           // Auto-generated if empty
	v.SetDefault("auth_issuer", DefaultIssuer)    // JWT iss claim
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	v.SetDefault("auth_purge_schedule", "0 * * * *") // Hourly at :00

	// Web UI defaults
	v.SetDefault("web_port", 8189)
	v.SetDefault("web_api_url", "http://localhost:8188")
	v.SetDefault("web_session_db_path", DefaultSessionDatabasePath)
	v.SetDefault("web_session_lifetime", "24h")
	v.SetDefault("web_csrf_secret", "") // Auto-generated if empty
	v.SetDefault("web_secure_cookies", true)

	// CLI defaults
	v.SetDefault("library_api_url", "http://localhost:8188")
	v.SetDefault("library_credentials_path", DefaultCredentialsPath)
	v.SetDefault("library_credentials_key", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port:       v.GetInt32("PORT"),
			Host:       v.GetString("HOST"),
			HSTSMaxAge: v.GetInt("HSTS_MAX_AGE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: Auth{
			JWTSecret:        v.GetString("AUTH_JWT_SECRET"),
			Issuer:           v.GetString("AUTH_ISSUER"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
			PurgeSchedule:    v.GetString("AUTH_PURGE_SCHEDULE"),
		},
		Web: Web{
			Port:            v.GetInt32("WEB_PORT"),
			APIURL:          v.GetString("WEB_API_URL"),
			SessionDBPath:   v.GetString("WEB_SESSION_DB_PATH"),
			SessionLifetime: v.GetDuration("WEB_SESSION_LIFETIME"),
			CSRFSecret:      v.GetString("WEB_CSRF_SECRET"),
			SecureCookies:   v.GetBool("WEB_SECURE_COOKIES"),
		},
		Client: Client{
			APIURL:          v.GetString("LIBRARY_API_URL"),
			CredentialsPath: v.GetString("LIBRARY_CREDENTIALS_PATH"),
			CredentialsKey:  v.GetString("LIBRARY_CREDENTIALS_KEY"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
