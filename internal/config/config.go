package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how pages reach the browser.
type Mode string

const (
	// ModeSPA serves one shell page; the browser script fetches the JSON API.
	ModeSPA Mode = "spa"
	// ModeSSR renders every page on the server.
	ModeSSR Mode = "ssr"
)

type Config struct {
	Port    string `yaml:"port"`
	DocsDir string `yaml:"docs_dir"`
	Mode    Mode   `yaml:"mode"`

	// Search
	SearchIndex bool          `yaml:"search_index"`
	SearchRate  float64       `yaml:"search_rate"`
	SearchBurst int           `yaml:"search_burst"`
	StatsWindow time.Duration `yaml:"stats_window"`

	// Reload the search index when files under DocsDir change.
	WatchDocs bool `yaml:"watch_docs"`

	// Allowed CORS origin; "*" permits any.
	CORSOrigin string `yaml:"cors_origin"`

	LogLevel string `yaml:"log_level"`
	Metrics  bool   `yaml:"metrics"`

	// HTTP server
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Port:            "3000",
		DocsDir:         "./docs",
		Mode:            ModeSPA,
		SearchRate:      10,
		SearchBurst:     20,
		StatsWindow:     time.Hour,
		CORSOrigin:      "*",
		LogLevel:        "info",
		Metrics:         true,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// DOCSERVE_CONFIG if set, then individual environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("DOCSERVE_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.DocsDir = envOr("DOCS_DIR", cfg.DocsDir)
	cfg.Mode = Mode(strings.ToLower(envOr("MODE", string(cfg.Mode))))
	cfg.SearchIndex = envBool("SEARCH_INDEX", cfg.SearchIndex)
	cfg.SearchRate = envFloat("SEARCH_RATE", cfg.SearchRate)
	cfg.SearchBurst = envInt("SEARCH_BURST", cfg.SearchBurst)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)
	cfg.WatchDocs = envBool("WATCH_DOCS", cfg.WatchDocs)
	cfg.CORSOrigin = envOr("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.Metrics = envBool("METRICS", cfg.Metrics)
	cfg.ReadTimeout = envDuration("HTTP_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = envDuration("HTTP_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = envDuration("HTTP_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = time.Hour
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg, nil
}

func (c Config) Validate() error {
	n, err := strconv.Atoi(c.Port)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Port)
	}
	if c.DocsDir == "" {
		return fmt.Errorf("DOCS_DIR is required")
	}
	switch c.Mode {
	case ModeSPA, ModeSSR:
	default:
		return fmt.Errorf("MODE must be %q or %q, got %q", ModeSPA, ModeSSR, c.Mode)
	}
	if c.SearchRate < 0 {
		return fmt.Errorf("SEARCH_RATE must not be negative, got %v", c.SearchRate)
	}
	if c.SearchRate > 0 && c.SearchBurst <= 0 {
		return fmt.Errorf("SEARCH_BURST must be positive when SEARCH_RATE is set, got %d", c.SearchBurst)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a LOG_LEVEL value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", s, err)
	}
	return lvl, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	data = expandEnvVars(data)
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = def
		}
		return []byte(val)
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
