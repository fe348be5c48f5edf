package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // RENDER_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host               string        `toml:"host"`
	Port               string        `toml:"port"`
	RequestTimeout     time.Duration `toml:"request_timeout"`
	RenderTimeout      time.Duration `toml:"render_timeout"`
	MaxRequestBodySize int64         `toml:"max_request_body_size"`
	RenderWorkers      int           `toml:"render_workers"`

	Upstream UpstreamConfig `toml:"upstream"`
	Archive  ArchiveConfig  `toml:"archive"`
	OCR      OCRConfig      `toml:"ocr"`
	Render   RenderConfig   `toml:"render"`
}

// UpstreamConfig locates the analysis API. An empty BaseURL disables the
// analyze endpoints.
type UpstreamConfig struct {
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

type ArchiveConfig struct {
	Backend               string `toml:"backend"`
	Dir                   string `toml:"dir"`
	AzureConnectionString string `toml:"azure_connection_string"`
	AzureContainer        string `toml:"azure_container"`
}

type OCRConfig struct {
	Enabled  bool    `toml:"enabled"`
	Language string  `toml:"language"`
	MaxWER   float64 `toml:"max_wer"`
}

// RenderConfig holds the layout tunables of the complete report
type RenderConfig struct {
	MaxHeight         int    `toml:"max_height"`
	SuggestionReserve int    `toml:"suggestion_reserve"`
	ActionsReserve    int    `toml:"actions_reserve"`
	Timezone          string `toml:"timezone"`
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Location resolves the render timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Render.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Render.Timezone)
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		RenderTimeout:      20 * time.Second,
		MaxRequestBodySize: 1024 * 1024, // 1MB
		Upstream: UpstreamConfig{
			Timeout: 30 * time.Second,
		},
		Archive: ArchiveConfig{
			Backend:        "none",
			Dir:            "reports",
			AzureContainer: "reports",
		},
		OCR: OCRConfig{
			Language: "eng",
			MaxWER:   0.35,
		},
		Render: RenderConfig{
			MaxHeight:         3200,
			SuggestionReserve: 600,
			ActionsReserve:    500,
			Timezone:          "UTC",
		},
	}
}

// LoadFromEnv builds the configuration from the defaults, the TOML file
// named by CONFIG_FILE when set, then environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.Host = getEnvOrDefault("HOST", cfg.Host)
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RenderTimeout = parseDurationOrDefault("RENDER_TIMEOUT", cfg.RenderTimeout)
	cfg.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", cfg.MaxRequestBodySize)
	cfg.RenderWorkers = int(parseIntOrDefault("RENDER_WORKERS", int64(cfg.RenderWorkers)))

	cfg.Upstream.BaseURL = getEnvOrDefault("UPSTREAM_BASE_URL", cfg.Upstream.BaseURL)
	cfg.Upstream.Timeout = parseDurationOrDefault("UPSTREAM_TIMEOUT", cfg.Upstream.Timeout)

	cfg.Archive.Backend = getEnvOrDefault("ARCHIVE_BACKEND", cfg.Archive.Backend)
	cfg.Archive.Dir = getEnvOrDefault("ARCHIVE_DIR", cfg.Archive.Dir)
	cfg.Archive.AzureConnectionString = getEnvOrDefault("AZURE_STORAGE_CONNECTION_STRING", cfg.Archive.AzureConnectionString)
	cfg.Archive.AzureContainer = getEnvOrDefault("AZURE_STORAGE_CONTAINER", cfg.Archive.AzureContainer)

	cfg.OCR.Enabled = parseBoolOrDefault("OCR_ENABLED", cfg.OCR.Enabled)
	cfg.OCR.Language = getEnvOrDefault("OCR_LANGUAGE", cfg.OCR.Language)
	cfg.OCR.MaxWER = parseFloatOrDefault("LEGIBILITY_MAX_WER", cfg.OCR.MaxWER)

	cfg.Render.MaxHeight = int(parseIntOrDefault("RENDER_MAX_HEIGHT", int64(cfg.Render.MaxHeight)))
	cfg.Render.SuggestionReserve = int(parseIntOrDefault("RENDER_SUGGESTION_RESERVE", int64(cfg.Render.SuggestionReserve)))
	cfg.Render.ActionsReserve = int(parseIntOrDefault("RENDER_ACTIONS_RESERVE", int64(cfg.Render.ActionsReserve)))
	cfg.Render.Timezone = getEnvOrDefault("RENDER_TIMEZONE", cfg.Render.Timezone)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.RenderTimeout <= 0 || c.Upstream.Timeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, render=%s, upstream=%s)",
			c.RequestTimeout, c.RenderTimeout, c.Upstream.Timeout)
	}
	if c.RenderWorkers < 0 {
		return fmt.Errorf("RENDER_WORKERS must be >= 0 (got %d)", c.RenderWorkers)
	}
	if c.OCR.MaxWER <= 0 {
		return fmt.Errorf("LEGIBILITY_MAX_WER must be > 0 (got %g)", c.OCR.MaxWER)
	}
	r := c.Render
	if r.MaxHeight <= 0 {
		return fmt.Errorf("RENDER_MAX_HEIGHT must be > 0 (got %d)", r.MaxHeight)
	}
	if r.SuggestionReserve < 0 || r.SuggestionReserve >= r.MaxHeight ||
		r.ActionsReserve < 0 || r.ActionsReserve >= r.MaxHeight {
		return fmt.Errorf("render reserves must be within [0, %d) (got suggestions=%d, actions=%d)",
			r.MaxHeight, r.SuggestionReserve, r.ActionsReserve)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid RENDER_TIMEZONE %q: %w", r.Timezone, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
