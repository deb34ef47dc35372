package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"   // Local file database (default)
	DriverPostgres DatabaseDriver = "postgres" // External PostgreSQL server
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Log
		Security
		Demo
		Tasks
		Export
		Metrics
		Plausible
		RateLimit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver       DatabaseDriver
		Path         string // sqlite file path
		DSN          string // postgres connection string
		MaxOpenConns int
		MaxIdleConns int
		LogSQL       bool
	}
	UI struct {
		TemplatesPath string // Empty means use the embedded templates
		StaticPath    string // Empty means use the embedded assets
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // json or console
	}
	Security struct {
		CSRFEnabled     bool
		CSRFSecret      string // Auto-generated if empty
		SecureCookies   bool   // Set to false for local dev without HTTPS
		SessionLifetime time.Duration
	}
	Demo struct {
		Enabled bool // Block every write operation
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Export struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
	}
	Metrics struct {
		Enabled bool
	}
	Plausible struct {
		Domain     string // Analytics are off while empty
		ScriptURL  string
		Extensions string // Comma-separated, e.g. "outbound-links,file-downloads"
	}
	RateLimit struct {
		Writes int           // Catalog writes allowed per client per window, 0 disables
		Window time.Duration
	}
)

// LoadDotEnv loads a .env file from the working directory when present.
// A missing file is not an error; real environment variables win.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_max_open_conns", 10)
	v.SetDefault("database_max_idle_conns", 5)
	v.SetDefault("database_log_sql", false)

	v.SetDefault("templates_path", "")
	v.SetDefault("static_path", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("csrf_enabled", true)
	v.SetDefault("csrf_secret", "")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("session_lifetime", "24h")

	v.SetDefault("demo_mode", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Periodic catalog export
	v.SetDefault("export_enabled", false)
	v.SetDefault("export_schedule", "0 3 * * *")
	v.SetDefault("export_dir", DefaultExportDir)

	v.SetDefault("metrics_enabled", true)

	v.SetDefault("plausible_domain", "")
	v.SetDefault("plausible_script_url", "https://plausible.io/js/script.js")
	v.SetDefault("plausible_extensions", "")

	v.SetDefault("rate_limit_writes", 60)
	v.SetDefault("rate_limit_window", "1m")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:       DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:         v.GetString("DATABASE_PATH"),
			DSN:          v.GetString("DATABASE_DSN"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			LogSQL:       v.GetBool("DATABASE_LOG_SQL"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Security: Security{
			CSRFEnabled:     v.GetBool("CSRF_ENABLED"),
			CSRFSecret:      v.GetString("CSRF_SECRET"),
			SecureCookies:   v.GetBool("SECURE_COOKIES"),
			SessionLifetime: v.GetDuration("SESSION_LIFETIME"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Export: Export{
			Enabled:  v.GetBool("EXPORT_ENABLED"),
			Schedule: v.GetString("EXPORT_SCHEDULE"),
			Dir:      v.GetString("EXPORT_DIR"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		Plausible: Plausible{
			Domain:     v.GetString("PLAUSIBLE_DOMAIN"),
			ScriptURL:  v.GetString("PLAUSIBLE_SCRIPT_URL"),
			Extensions: v.GetString("PLAUSIBLE_EXTENSIONS"),
		},
		RateLimit: RateLimit{
			Writes: v.GetInt("RATE_LIMIT_WRITES"),
			Window: v.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}
