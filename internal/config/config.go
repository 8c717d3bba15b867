// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, upstream API credentials, enrichment
// budgets, the persistent hotel cache, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Persistent cache backends.
const (
	CacheSQLite = "sqlite"
	CachePebble = "pebble"
	CacheNone   = "none"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-hotel-search")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// UpstreamConfig holds the RateHawk partner API settings.
type UpstreamConfig struct {
	BaseURL string // PAPI_BASE_PATH, empty means production
	AuthKey string // PAPI_AUTH_KEY as "<key_id>:<api_key>"
	KeyID   string // PAPI_KEY_ID
	Key     string // PAPI_KEY

	DefaultLanguage  string
	DefaultCurrency  string
	DefaultResidency string

	Timeout time.Duration // per call

	InfoBudget        int // base hotel info calls per page scan
	InfoBudgetCeiling int // cap for deep pages (0 = uncapped)
	InfoRPM           int // hotel info requests per minute (0 = unpaced)
	InfoBurst         int
}

// Credentials returns the key id and secret, preferring the combined
// PAPI_AUTH_KEY form. ok is false when neither form is configured.
func (u UpstreamConfig) Credentials() (keyID, key string, ok bool) {
	if u.AuthKey != "" {
		id, k, found := strings.Cut(u.AuthKey, ":")
		return id, k, found
	}
	if u.KeyID != "" && u.Key != "" {
		return u.KeyID, u.Key, true
	}
	return "", "", false
}

// CacheConfig selects and locates the persistent (Tier 2) hotel info cache.
type CacheConfig struct {
	Backend   string // sqlite|pebble|none
	Path      string // SQLite file
	PebbleDir string
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Upstream API and enrichment
	Upstream UpstreamConfig

	// Persistent hotel cache
	Cache CacheConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Upstream
		Upstream: UpstreamConfig{
			BaseURL:           strings.TrimSpace(getenv("PAPI_BASE_PATH", "")),
			AuthKey:           strings.TrimSpace(getenv("PAPI_AUTH_KEY", "")),
			KeyID:             strings.TrimSpace(getenv("PAPI_KEY_ID", "")),
			Key:               strings.TrimSpace(getenv("PAPI_KEY", "")),
			DefaultLanguage:   strings.ToLower(getenv("PAPI_DEFAULT_LANGUAGE", "en")),
			DefaultCurrency:   strings.ToUpper(getenv("PAPI_DEFAULT_CURRENCY", "EUR")),
			DefaultResidency:  strings.ToLower(getenv("PAPI_DEFAULT_RESIDENCY", "gb")),
			Timeout:           getdur("PAPI_TIMEOUT", time.Duration(getint("PAPI_TIMEOUT_SECONDS", 30))*time.Second),
			InfoBudget:        getint("PAPI_INFO_BUDGET", 25),
			InfoBudgetCeiling: getint("PAPI_INFO_BUDGET_CEILING", 200),
			InfoRPM:           getint("PAPI_INFO_RPM", 30),
			InfoBurst:         getint("PAPI_INFO_BURST", 5),
		},

		// Cache
		Cache: CacheConfig{
			Backend:   strings.ToLower(getenv("CACHE_BACKEND", CacheSQLite)),
			Path:      getenv("PAPI_HOTEL_CACHE_PATH", "data/hotel_cache.db"),
			PebbleDir: getenv("PEBBLE_DIR", "data/hotel_cache.pebble"),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		// No configured origin means any origin may read the API.
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", getenv("FRONTEND_ORIGIN", ""))),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-hotel-search"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.Cache.Backend == "sqlite3" {
		cfg.Cache.Backend = CacheSQLite
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if cfg.Upstream.AuthKey != "" && !strings.Contains(cfg.Upstream.AuthKey, ":") {
		return cfg, errors.New("PAPI_AUTH_KEY must contain <key_id>:<api_key>")
	}
	if cfg.Upstream.Timeout <= 0 {
		return cfg, errors.New("PAPI_TIMEOUT must be a positive duration")
	}
	if cfg.Upstream.InfoBudget <= 0 {
		return cfg, errors.New("PAPI_INFO_BUDGET must be > 0")
	}
	if cfg.Upstream.InfoBudgetCeiling < 0 {
		return cfg, errors.New("PAPI_INFO_BUDGET_CEILING must be >= 0")
	}
	if cfg.Upstream.InfoRPM < 0 || cfg.Upstream.InfoBurst < 0 {
		return cfg, errors.New("PAPI_INFO_RPM and PAPI_INFO_BURST must be >= 0")
	}
	switch cfg.Cache.Backend {
	case CacheSQLite:
		if strings.TrimSpace(cfg.Cache.Path) == "" {
			return cfg, errors.New("PAPI_HOTEL_CACHE_PATH must not be empty")
		}
	case CachePebble:
		if strings.TrimSpace(cfg.Cache.PebbleDir) == "" {
			return cfg, errors.New("PEBBLE_DIR must not be empty")
		}
	case CacheNone:
	default:
		return cfg, errors.New("CACHE_BACKEND must be one of: sqlite, pebble, none")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
