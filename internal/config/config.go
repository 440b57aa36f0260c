package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendREST  = "rest"
	BackendLocal = "local"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Backend selection: "rest" talks to the portfolio API, "local" serves
	// the same contract from a SQL database.
	Backend string

	// REST backend
	APIBaseURL  string
	APIToken    string
	APIUsername string
	APIPassword string
	APITimeout  time.Duration

	// Local backend (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Behaviour
	PersistReorder bool
	SearchDebounce time.Duration
	PageSize       int

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Folio"),
		AppEnv:  envString("APP_ENV", "development"),
		Port:    envString("PORT", "8090"),

		Backend: envString("BACKEND", BackendLocal),

		APIBaseURL:  envString("API_BASE_URL", "http://localhost:8000/api/"),
		APIToken:    envString("API_TOKEN", ""),
		APIUsername: envString("API_USERNAME", ""),
		APIPassword: envString("API_PASSWORD", ""),
		APITimeout:  envDuration("API_TIMEOUT", 15*time.Second),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/folio.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		PersistReorder: envBool("PERSIST_REORDER", true),
		SearchDebounce: envDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		PageSize:       envInt("PAGE_SIZE", 20),

		SentryDSN: envString("SENTRY_DSN", ""),
	}

	if cfg.Backend == BackendREST {
		validateREST(cfg)
	}

	return cfg
}

// validateREST ensures the REST backend can be reached. Credentials are
// optional; without them the app starts signed out.
func validateREST(cfg *Config) {
	if cfg.APIBaseURL == "" {
		slog.Error("rest backend requires API_BASE_URL")
		os.Exit(1)
	}
	if cfg.APIToken == "" && (cfg.APIUsername == "" || cfg.APIPassword == "") {
		slog.Warn("no API_TOKEN or API_USERNAME/API_PASSWORD set, starting signed out",
			"hint", "set BACKEND=local to work against a local database")
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Credentials and connection strings are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:        c.AppName,
		AppEnv:         c.AppEnv,
		Port:           c.Port,
		Backend:        c.Backend,
		APIBaseURL:     c.APIBaseURL,
		APITimeout:     c.APITimeout,
		DBDriver:       c.DBDriver,
		PersistReorder: c.PersistReorder,
		SearchDebounce: c.SearchDebounce,
		PageSize:       c.PageSize,
	}
}
