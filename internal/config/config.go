// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Gemini (embeddings)
	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model"`

	// Anthropic (insight generation)
	AnthropicAPIKey string `koanf:"anthropic_api_key"`
	AnthropicModel  string `koanf:"anthropic_model"`

	// CORS: comma-separated list of allowed origins, or "*"
	AllowedOrigins string `koanf:"allowed_origins"`

	// Rate limiting
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// Redis (optional; enables the Redis rate-limit store and readiness check)
	RedisAddr string `koanf:"redis_addr"`

	// Feeds
	FeedsFile         string `koanf:"feeds_file"`          // Optional YAML file with feed sources
	CrawlLimitPerFeed int    `koanf:"crawl_limit_per_feed"`

	// Tracing
	TracingEnabled    bool    `koanf:"tracing_enabled"`
	OTLPEndpoint      string  `koanf:"otlp_endpoint"`
	OTLPProtocol      string  `koanf:"otlp_protocol"` // "grpc" or "http"
	TraceSamplingRate float64 `koanf:"trace_sampling_rate"`
}

// Configuration validation errors.
var (
	ErrMissingGeminiAPIKey    = errors.New("GEMINI_API_KEY is required")
	ErrMissingAnthropicAPIKey = errors.New("ANTHROPIC_API_KEY is required")
	ErrInvalidPort            = errors.New("PORT must be a valid integer")
	ErrInvalidRateLimit       = errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	ErrInvalidSamplingRate    = errors.New("TRACE_SAMPLING_RATE must be in [0, 1]")
	ErrInvalidOTLPProtocol    = errors.New("OTLP_PROTOCOL must be \"grpc\" or \"http\"")
)

// Default values for non-secret configuration.
const (
	DefaultPort               = 8080
	DefaultEnv                = "development"
	DefaultGeminiModel        = "text-embedding-004"
	DefaultAnthropicModel     = "claude-sonnet-4-20250514"
	DefaultAllowedOrigins     = "*"
	DefaultRateLimitPerMinute = 100
	DefaultCrawlLimitPerFeed  = 10
	DefaultOTLPProtocol       = "grpc"
	DefaultTraceSamplingRate  = 1.0
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Parse port from env, collecting error if invalid
	// Try PAI_PORT first, then PORT for container platforms that inject it
	port, portErr := getEnvIntOrDefaultMulti([]string{"PAI_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	rateLimit, rateLimitErr := getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", k.Int("rate_limit_per_minute"), DefaultRateLimitPerMinute)
	if rateLimitErr != nil {
		loadErrs = append(loadErrs, rateLimitErr)
	}

	crawlLimit, crawlLimitErr := getEnvIntOrDefault("CRAWL_LIMIT_PER_FEED", k.Int("crawl_limit_per_feed"), DefaultCrawlLimitPerFeed)
	if crawlLimitErr != nil {
		loadErrs = append(loadErrs, crawlLimitErr)
	}

	samplingRate, samplingErr := getEnvFloatOrDefault("TRACE_SAMPLING_RATE", k.Float64("trace_sampling_rate"), DefaultTraceSamplingRate)
	if samplingErr != nil {
		loadErrs = append(loadErrs, samplingErr)
	}

	tracingEnabled := false
	if k.Exists("tracing_enabled") {
		tracingEnabled = k.Bool("tracing_enabled")
	}
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			tracingEnabled = true
		case "false", "0", "no", "off":
			tracingEnabled = false
		}
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:               port,
		Env:                getEnvOrDefaultMulti([]string{"PAI_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		GeminiAPIKey:       getEnvOrKoanf("GEMINI_API_KEY", k, "gemini_api_key"),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", k.String("gemini_model"), DefaultGeminiModel),
		AnthropicAPIKey:    getEnvOrKoanf("ANTHROPIC_API_KEY", k, "anthropic_api_key"),
		AnthropicModel:     getEnvOrDefault("ANTHROPIC_MODEL", k.String("anthropic_model"), DefaultAnthropicModel),
		AllowedOrigins:     getEnvOrDefault("ALLOWED_ORIGINS", k.String("allowed_origins"), DefaultAllowedOrigins),
		RateLimitPerMinute: rateLimit,
		RedisAddr:          getEnvOrKoanf("REDIS_ADDR", k, "redis_addr"),
		FeedsFile:          getEnvOrKoanf("FEEDS_FILE", k, "feeds_file"),
		CrawlLimitPerFeed:  crawlLimit,
		TracingEnabled:     tracingEnabled,
		OTLPEndpoint:       getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
		OTLPProtocol:       getEnvOrDefault("OTLP_PROTOCOL", k.String("otlp_protocol"), DefaultOTLPProtocol),
		TraceSamplingRate:  samplingRate,
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, err)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.GeminiAPIKey == "" {
		errs = append(errs, ErrMissingGeminiAPIKey)
	}
	if c.AnthropicAPIKey == "" {
		errs = append(errs, ErrMissingAnthropicAPIKey)
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		errs = append(errs, ErrInvalidSamplingRate)
	}
	if c.OTLPProtocol != "grpc" && c.OTLPProtocol != "http" {
		errs = append(errs, ErrInvalidOTLPProtocol)
	}

	return errs
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Origins returns the allowed CORS origins as a slice.
func (c *Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                  fmt.Sprintf("%d", c.Port),
		"env":                   c.Env,
		"gemini_api_key":        maskSecret(c.GeminiAPIKey),
		"gemini_model":          c.GeminiModel,
		"anthropic_api_key":     maskSecret(c.AnthropicAPIKey),
		"anthropic_model":       c.AnthropicModel,
		"allowed_origins":       c.AllowedOrigins,
		"rate_limit_per_minute": fmt.Sprintf("%d", c.RateLimitPerMinute),
		"redis_addr":            orNotSet(c.RedisAddr),
		"feeds_file":            orNotSet(c.FeedsFile),
		"crawl_limit_per_feed":  fmt.Sprintf("%d", c.CrawlLimitPerFeed),
		"tracing_enabled":       fmt.Sprintf("%t", c.TracingEnabled),
		"otlp_endpoint":         orNotSet(c.OTLPEndpoint),
		"otlp_protocol":         c.OTLPProtocol,
		"trace_sampling_rate":   fmt.Sprintf("%g", c.TraceSamplingRate),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

func orNotSet(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}
