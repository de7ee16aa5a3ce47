package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Pipeline variants
const (
	VariantFlat    = "flat"
	VariantGrouped = "grouped"
)

// Config holds all configuration options for the Pokédex builder
type Config struct {
	// Remote API settings
	API APIConfig `yaml:"api" json:"api"`

	// Retry policy for every remote request
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Politeness rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Identifier range, concurrency and durable files
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`

	// Silhouette artifact settings
	Silhouette SilhouetteConfig `yaml:"silhouette" json:"silhouette"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds PokeAPI-specific configuration
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
	// Backoff is one of constant, linear, exponential
	Backoff    string        `yaml:"backoff" json:"backoff"`
	MaxDelay   time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier float64       `yaml:"multiplier" json:"multiplier"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// PipelineConfig holds the orchestrator configuration
type PipelineConfig struct {
	StartID         int    `yaml:"start_id" json:"start_id"`
	MaxID           int    `yaml:"max_id" json:"max_id"`
	Concurrency     int    `yaml:"concurrency" json:"concurrency"`
	CheckpointEvery int    `yaml:"checkpoint_every" json:"checkpoint_every"`
	Variant         string `yaml:"variant" json:"variant"`
	OutputFile      string `yaml:"output_file" json:"output_file"`
	CheckpointFile  string `yaml:"checkpoint_file" json:"checkpoint_file"`
}

// SilhouetteConfig holds artifact cache configuration
type SilhouetteConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Directory string `yaml:"directory" json:"directory"`
	// BaseURL, when set, replaces the directory in returned references
	BaseURL   string `yaml:"base_url" json:"base_url"`
	FillColor string `yaml:"fill_color" json:"fill_color"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://pokeapi.co/api/v2",
			Timeout:   15 * time.Second,
			UserAgent: "pokedex-builder/1.0",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Delay:       3 * time.Second,
			Backoff:     "constant",
			MaxDelay:    30 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 600,
		},
		Pipeline: PipelineConfig{
			StartID:         1,
			MaxID:           1025,
			Concurrency:     5,
			CheckpointEvery: 25,
			Variant:         VariantFlat,
			OutputFile:      "pokedex.json",
			CheckpointFile:  "pokedex_checkpoint.json",
		},
		Silhouette: SilhouetteConfig{
			Enabled:   true,
			Directory: "silhouettes",
			BaseURL:   "",
			FillColor: "#000000",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("POKEDEX_API_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if userAgent := os.Getenv("POKEDEX_USER_AGENT"); userAgent != "" {
		c.API.UserAgent = userAgent
	}
	if timeout := os.Getenv("POKEDEX_API_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid POKEDEX_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}

	if rpm := os.Getenv("POKEDEX_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}

	if concurrent := os.Getenv("POKEDEX_CONCURRENCY"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Pipeline.Concurrency = val
		}
	}
	if maxID := os.Getenv("POKEDEX_MAX_ID"); maxID != "" {
		val, err := strconv.Atoi(maxID)
		if err != nil {
			return fmt.Errorf("invalid POKEDEX_MAX_ID: %w", err)
		}
		c.Pipeline.MaxID = val
	}
	if variant := os.Getenv("POKEDEX_VARIANT"); variant != "" {
		c.Pipeline.Variant = strings.ToLower(variant)
	}
	if output := os.Getenv("POKEDEX_OUTPUT_FILE"); output != "" {
		c.Pipeline.OutputFile = output
	}
	if cp := os.Getenv("POKEDEX_CHECKPOINT_FILE"); cp != "" {
		c.Pipeline.CheckpointFile = cp
	}

	if dir := os.Getenv("POKEDEX_SILHOUETTE_DIR"); dir != "" {
		c.Silhouette.Directory = dir
	}
	if baseURL := os.Getenv("POKEDEX_SILHOUETTE_BASE_URL"); baseURL != "" {
		c.Silhouette.BaseURL = baseURL
	}
	if enabled := os.Getenv("POKEDEX_SILHOUETTES_ENABLED"); enabled != "" {
		c.Silhouette.Enabled = strings.ToLower(enabled) == "true"
	}

	if logLevel := os.Getenv("POKEDEX_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("POKEDEX_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"pokedex.yaml",
		"pokedex.yml",
		".pokedex.yaml",
		".pokedex.yml",
		filepath.Join(home, ".config", "pokedex", "config.yaml"),
		filepath.Join(home, ".config", "pokedex", "config.yml"),
		filepath.Join(home, ".pokedex.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api base URL is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api timeout must be positive"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	validBackoffs := map[string]bool{"constant": true, "linear": true, "exponential": true}
	if !validBackoffs[strings.ToLower(c.Retry.Backoff)] {
		errs = append(errs, fmt.Errorf("invalid retry backoff %q", c.Retry.Backoff))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Pipeline.StartID < 1 {
		errs = append(errs, errors.New("start id must be at least 1"))
	}
	if c.Pipeline.MaxID < c.Pipeline.StartID {
		errs = append(errs, errors.New("max id must not be below start id"))
	}
	if c.Pipeline.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if c.Pipeline.Concurrency > 32 {
		errs = append(errs, errors.New("concurrency should not exceed 32"))
	}
	if c.Pipeline.CheckpointEvery <= 0 {
		errs = append(errs, errors.New("checkpoint cadence must be positive"))
	}
	if c.Pipeline.Variant != VariantFlat && c.Pipeline.Variant != VariantGrouped {
		errs = append(errs, fmt.Errorf("invalid variant %q (want %s or %s)", c.Pipeline.Variant, VariantFlat, VariantGrouped))
	}
	if c.Pipeline.OutputFile == "" {
		errs = append(errs, errors.New("output file is required"))
	}
	if c.Pipeline.CheckpointFile == "" {
		errs = append(errs, errors.New("checkpoint file is required"))
	}

	if c.Silhouette.Enabled && c.Silhouette.Directory == "" {
		errs = append(errs, errors.New("silhouette directory is required when silhouettes are enabled"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["base-url"].(string); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := flags["start-id"].(int); ok && v > 0 {
		c.Pipeline.StartID = v
	}
	if v, ok := flags["max-id"].(int); ok && v > 0 {
		c.Pipeline.MaxID = v
	}
	if v, ok := flags["concurrent"].(int); ok && v > 0 {
		c.Pipeline.Concurrency = v
	}
	if v, ok := flags["checkpoint-every"].(int); ok && v > 0 {
		c.Pipeline.CheckpointEvery = v
	}
	if v, ok := flags["variant"].(string); ok && v != "" {
		c.Pipeline.Variant = strings.ToLower(v)
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Pipeline.OutputFile = v
	}
	if v, ok := flags["checkpoint"].(string); ok && v != "" {
		c.Pipeline.CheckpointFile = v
	}
	if v, ok := flags["silhouette-dir"].(string); ok && v != "" {
		c.Silhouette.Directory = v
	}
	if v, ok := flags["silhouettes"].(bool); ok {
		c.Silhouette.Enabled = v
	}
	if v, ok := flags["max-retries"].(int); ok && v > 0 {
		c.Retry.MaxAttempts = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".pokedex.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
