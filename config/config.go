// Package config loads server configuration. Values come from built-in
// defaults, an optional YAML file, .env files and the environment, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the scanner.
type Config struct {
	// Server
	Port    int    `koanf:"port"`
	GinMode string `koanf:"gin_mode"`
	DevMode bool   `koanf:"dev_mode"`
	DataDir string `koanf:"data_dir"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// Scanning
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	MaxCacheSize int           `koanf:"max_cache_size"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
	UserAgent    string        `koanf:"user_agent"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`

	// Rate limiting, requests per second per client IP
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// Headless browser snapshots
	BrowserEnabled   bool   `koanf:"browser_enabled"`
	BrowserRemoteURL string `koanf:"browser_remote_url"`
	BrowserStealth   bool   `koanf:"browser_stealth"`
}

// Validation errors.
var (
	ErrInvalidPort      = errors.New("PORT must be between 1 and 65535")
	ErrInvalidLogLevel  = errors.New("LOG_LEVEL must be one of debug, info, warn, error")
	ErrInvalidLogFormat = errors.New("LOG_FORMAT must be text or json")
	ErrInvalidDuration  = errors.New("durations must be positive")
	ErrInvalidSize      = errors.New("sizes must be positive")
	ErrInvalidRate      = errors.New("RATE_LIMIT and RATE_BURST must be positive")
)

// Defaults.
const (
	DefaultPort         = 8082
	DefaultDataDir      = "./data"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultCacheTTL     = 30 * time.Minute
	DefaultMaxCacheSize = 1000
	DefaultFetchTimeout = 15 * time.Second
	DefaultUserAgent    = "WCAGScan/1.0"
	DefaultMaxBodyBytes = 5 << 20
	DefaultRateLimit    = 2
	DefaultRateBurst    = 5
)

// LoadDotEnv loads .env.development, falling back to .env. Variables already
// present in the environment are not overridden. It returns the file that
// was loaded, or "" when none was found.
func LoadDotEnv() string {
	for _, name := range []string{".env.development", ".env"} {
		if err := godotenv.Load(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables take precedence over file values.
// Returns the config and the validation errors (empty if valid).
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var errs []error

	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	port, err := envInt("PORT", k, "port", DefaultPort)
	collect(err)
	maxCache, err := envInt("MAX_CACHE_SIZE", k, "max_cache_size", DefaultMaxCacheSize)
	collect(err)
	burst, err := envInt("RATE_BURST", k, "rate_burst", DefaultRateBurst)
	collect(err)
	maxBody, err := envInt("MAX_BODY_BYTES", k, "max_body_bytes", DefaultMaxBodyBytes)
	collect(err)
	rate, err := envFloat("RATE_LIMIT", k, "rate_limit", DefaultRateLimit)
	collect(err)
	cacheTTL, err := envDuration("CACHE_TTL", k, "cache_ttl", DefaultCacheTTL)
	collect(err)
	fetchTimeout, err := envDuration("FETCH_TIMEOUT", k, "fetch_timeout", DefaultFetchTimeout)
	collect(err)

	cfg := &Config{
		Port:             port,
		GinMode:          envString("GIN_MODE", k, "gin_mode", "release"),
		DevMode:          envBool("DEV_MODE", k, "dev_mode", false),
		DataDir:          envString("DATA_DIR", k, "data_dir", DefaultDataDir),
		LogLevel:         strings.ToLower(envString("LOG_LEVEL", k, "log_level", DefaultLogLevel)),
		LogFormat:        strings.ToLower(envString("LOG_FORMAT", k, "log_format", DefaultLogFormat)),
		CacheTTL:         cacheTTL,
		MaxCacheSize:     maxCache,
		FetchTimeout:     fetchTimeout,
		UserAgent:        envString("USER_AGENT", k, "user_agent", DefaultUserAgent),
		MaxBodyBytes:     int64(maxBody),
		RateLimit:        rate,
		RateBurst:        burst,
		BrowserEnabled:   envBool("BROWSER_ENABLED", k, "browser_enabled", false),
		BrowserRemoteURL: envString("BROWSER_REMOTE_URL", k, "browser_remote_url", ""),
		BrowserStealth:   envBool("BROWSER_STEALTH", k, "browser_stealth", true),
	}

	errs = append(errs, cfg.Validate()...)
	return cfg, errs
}

// Validate checks value ranges. Returns a slice of validation errors.
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, ErrInvalidLogFormat)
	}
	if c.CacheTTL <= 0 || c.FetchTimeout <= 0 {
		errs = append(errs, ErrInvalidDuration)
	}
	if c.MaxCacheSize <= 0 || c.MaxBodyBytes <= 0 {
		errs = append(errs, ErrInvalidSize)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, ErrInvalidRate)
	}
	return errs
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// LogSummary returns the configuration as flat key/value pairs for logging.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":               strconv.Itoa(c.Port),
		"gin_mode":           c.GinMode,
		"dev_mode":           strconv.FormatBool(c.DevMode),
		"data_dir":           c.DataDir,
		"log_level":          c.LogLevel,
		"cache_ttl":          c.CacheTTL.String(),
		"fetch_timeout":      c.FetchTimeout.String(),
		"browser_enabled":    strconv.FormatBool(c.BrowserEnabled),
		"browser_remote_url": c.BrowserRemoteURL,
	}
}

func envString(envKey string, k *koanf.Koanf, key, def string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if v := k.String(key); v != "" {
		return v
	}
	return def
}

func envInt(envKey string, k *koanf.Koanf, key string, def int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return def, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if k.Exists(key) {
		return k.Int(key), nil
	}
	return def, nil
}

func envFloat(envKey string, k *koanf.Koanf, key string, def float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return def, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if k.Exists(key) {
		return k.Float64(key), nil
	}
	return def, nil
}

func envDuration(envKey string, k *koanf.Koanf, key string, def time.Duration) (time.Duration, error) {
	if val := os.Getenv(envKey); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return def, fmt.Errorf("%s must be a valid duration: %w", envKey, err)
		}
		return d, nil
	}
	if k.Exists(key) {
		return k.Duration(key), nil
	}
	return def, nil
}

func envBool(envKey string, k *koanf.Koanf, key string, def bool) bool {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	if k.Exists(key) {
		return k.Bool(key)
	}
	return def
}
