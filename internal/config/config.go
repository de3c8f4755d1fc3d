// ABOUTME: Configuration loading and parsing for the chat gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Providers ProvidersConfig `yaml:"providers"`
	Retention RetentionConfig `yaml:"retention"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`

	TokenLifetime    time.Duration `yaml:"-"`
	TokenLifetimeRaw string        `yaml:"token_lifetime"`
}

// ProvidersConfig holds AI provider credentials
type ProvidersConfig struct {
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
}

// RetentionConfig holds retention sweep configuration
type RetentionConfig struct {
	ConversationTTL time.Duration `yaml:"-"`
	FileTTL         time.Duration `yaml:"-"`
	SweepInterval   time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	ConversationTTLRaw string `yaml:"conversation_ttl"`
	FileTTLRaw         string `yaml:"file_ttl"`
	SweepIntervalRaw   string `yaml:"sweep_interval"`
}

// RateLimitConfig holds per-client API rate limit configuration
type RateLimitConfig struct {
	Requests int `yaml:"requests"`

	Window    time.Duration `yaml:"-"`
	WindowRaw string        `yaml:"window"`
}

// UploadsConfig holds file upload configuration
type UploadsConfig struct {
	MaxSizeBytes int64 `yaml:"max_size_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults applied when fields are absent from the file.
const (
	DefaultHTTPAddr          = ":3001"
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = 15 * time.Minute
	DefaultUploadMaxSize     = 10 << 20 // 10MB
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in fields that were absent from the file.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = DefaultRateLimitRequests
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = DefaultRateLimitWindow
	}
	if c.Uploads.MaxSizeBytes == 0 {
		c.Uploads.MaxSizeBytes = DefaultUploadMaxSize
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests must not be negative")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{cfg.Auth.TokenLifetimeRaw, &cfg.Auth.TokenLifetime, "auth.token_lifetime"},
		{cfg.Retention.ConversationTTLRaw, &cfg.Retention.ConversationTTL, "retention.conversation_ttl"},
		{cfg.Retention.FileTTLRaw, &cfg.Retention.FileTTL, "retention.file_ttl"},
		{cfg.Retention.SweepIntervalRaw, &cfg.Retention.SweepInterval, "retention.sweep_interval"},
		{cfg.RateLimit.WindowRaw, &cfg.RateLimit.Window, "rate_limit.window"},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
