package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Record sources for the served snapshot.
const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

type Config struct {
	Port         string   `mapstructure:"PORT"`
	Env          string   `mapstructure:"ENV"`
	LogLevel     string   `mapstructure:"LOG_LEVEL"`
	FHIRBaseURL  string   `mapstructure:"FHIR_BASE_URL"`
	RecordSource string   `mapstructure:"RECORD_SOURCE"`
	DatabaseURL  string   `mapstructure:"DATABASE_URL"`
	DBMaxConns   int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns   int32    `mapstructure:"DB_MIN_CONNS"`
	SQLitePath   string   `mapstructure:"SQLITE_PATH"`
	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`
	LatencyMinMS int      `mapstructure:"MOCK_LATENCY_MIN_MS"`
	LatencyMaxMS int      `mapstructure:"MOCK_LATENCY_MAX_MS"`
	PageSize     int      `mapstructure:"PAGE_SIZE"`

	// RequestTimeoutS bounds each request in seconds; 0 disables it.
	RequestTimeoutS int `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
}

var envKeys = []string{
	"PORT",
	"ENV",
	"LOG_LEVEL",
	"FHIR_BASE_URL",
	"RECORD_SOURCE",
	"DATABASE_URL",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"SQLITE_PATH",
	"CORS_ORIGINS",
	"MOCK_LATENCY_MIN_MS",
	"MOCK_LATENCY_MAX_MS",
	"PAGE_SIZE",
	"REQUEST_TIMEOUT_SECONDS",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FHIR_BASE_URL", "http://localhost:8000/fhir")
	v.SetDefault("RECORD_SOURCE", SourceMemory)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("SQLITE_PATH", "patients.db")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MOCK_LATENCY_MIN_MS", 200)
	v.SetDefault("MOCK_LATENCY_MAX_MS", 700)
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))
	cfg.RecordSource = strings.ToLower(strings.TrimSpace(cfg.RecordSource))
	cfg.FHIRBaseURL = strings.TrimRight(cfg.FHIRBaseURL, "/")

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// LatencyRange returns the simulated latency bounds for the mock server.
func (c *Config) LatencyRange() (lo, hi time.Duration) {
	return time.Duration(c.LatencyMinMS) * time.Millisecond, time.Duration(c.LatencyMaxMS) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutS) * time.Second
}

// Validate checks that the configuration is consistent before anything is
// started. A postgres source needs DATABASE_URL and sane pool bounds, a
// sqlite source needs a path, and latency bounds must be ordered.
func (c *Config) Validate() error {
	switch c.RecordSource {
	case SourceMemory:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when RECORD_SOURCE is %q", SourcePostgres)
		}
		if c.DBMaxConns < 1 {
			return fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns)
		}
		if c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d), got %d", c.DBMaxConns, c.DBMinConns)
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when RECORD_SOURCE is %q", SourceSQLite)
		}
	default:
		return fmt.Errorf("RECORD_SOURCE must be %q, %q, or %q, got %q",
			SourceMemory, SourcePostgres, SourceSQLite, c.RecordSource)
	}

	if c.LatencyMinMS < 0 || c.LatencyMaxMS < 0 {
		return fmt.Errorf("mock latency bounds must not be negative (min=%d, max=%d)", c.LatencyMinMS, c.LatencyMaxMS)
	}
	if c.LatencyMaxMS > 0 && c.LatencyMinMS > c.LatencyMaxMS {
		return fmt.Errorf("MOCK_LATENCY_MIN_MS (%d) exceeds MOCK_LATENCY_MAX_MS (%d)", c.LatencyMinMS, c.LatencyMaxMS)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1, got %d", c.PageSize)
	}
	if c.RequestTimeoutS < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must not be negative, got %d", c.RequestTimeoutS)
	}
	if c.FHIRBaseURL == "" {
		return fmt.Errorf("FHIR_BASE_URL must not be empty")
	}

	return nil
}
