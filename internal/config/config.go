// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (ADCRAFT_* runtime overrides)
//  2. .env file in the working directory
//  3. Config file (~/.adcraft/config.yaml)
//  4. Default values
//
// Validation runs at load time with sentinel errors for errors.Is()
// checking.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidBackendURL indicates the backend URL is missing or malformed.
	ErrInvalidBackendURL = errors.New("invalid backend URL")

	// ErrInvalidUserID indicates the user id is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid request timeout")

	// ErrInvalidPollInterval indicates the poll interval is out of range.
	ErrInvalidPollInterval = errors.New("invalid poll interval")

	// ErrInvalidPollAttempts indicates the poll attempt ceiling is out of range.
	ErrInvalidPollAttempts = errors.New("invalid poll attempts")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

const (
	// DefaultBackendURL points at a local orchestrator.
	DefaultBackendURL = "http://localhost:8000"

	// DefaultUserID identifies the operator when none is configured.
	DefaultUserID = "default_user"

	// DefaultRequestTimeout bounds non-streaming requests.
	DefaultRequestTimeout = 30 * time.Second

	// MaxRequestTimeout is the hard ceiling for request timeouts.
	MaxRequestTimeout = 5 * time.Minute
)

// Config stores application configuration.
type Config struct {
	// Backend connection
	BackendURL     string        `mapstructure:"backend_url"`
	UserID         string        `mapstructure:"user_id"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Generation behavior
	GenerateImages bool          `mapstructure:"generate_images"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	PollAttempts   int           `mapstructure:"poll_attempts"`

	// Logging. The TUI owns stderr, so logs go to a file; empty LogFile
	// disables logging entirely.
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// StateDir overrides where the current-conversation state file lives.
	// Empty means the user's home directory.
	StateDir string `mapstructure:"state_dir"`
}

// Load loads configuration from configDir (empty means ~/.adcraft).
// Priority: environment variables > .env > config file > defaults.
func Load(configDir string) (*Config, error) {
	// .env is a developer convenience; a missing file is fine.
	_ = godotenv.Load()

	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(home, ".adcraft")
	}

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend_url", DefaultBackendURL)
	v.SetDefault("user_id", DefaultUserID)
	v.SetDefault("request_timeout", DefaultRequestTimeout)

	v.SetDefault("generate_images", true)
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("poll_attempts", 120)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("state_dir", "")
}

// bindEnvVariables binds the ADCRAFT_* environment overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys can't fail to bind; a failure here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("backend_url", "ADCRAFT_BACKEND_URL")
	mustBind("user_id", "ADCRAFT_USER_ID")
	mustBind("request_timeout", "ADCRAFT_REQUEST_TIMEOUT")
	mustBind("generate_images", "ADCRAFT_GENERATE_IMAGES")
	mustBind("poll_interval", "ADCRAFT_POLL_INTERVAL")
	mustBind("poll_attempts", "ADCRAFT_POLL_ATTEMPTS")
	mustBind("log_level", "ADCRAFT_LOG_LEVEL")
	mustBind("log_file", "ADCRAFT_LOG_FILE")
	mustBind("state_dir", "ADCRAFT_STATE_DIR")
}

// Validate validates configuration values. Returns sentinel errors that can
// be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.BackendURL == "" {
		return fmt.Errorf("%w: backend_url cannot be empty", ErrInvalidBackendURL)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidBackendURL, c.BackendURL)
	}

	if c.UserID == "" {
		return fmt.Errorf("%w: user_id cannot be empty", ErrInvalidUserID)
	}

	if c.RequestTimeout < time.Second || c.RequestTimeout > MaxRequestTimeout {
		return fmt.Errorf("%w: must be between 1s and %s, got %s",
			ErrInvalidTimeout, MaxRequestTimeout, c.RequestTimeout)
	}

	if c.PollInterval < 100*time.Millisecond || c.PollInterval > 30*time.Second {
		return fmt.Errorf("%w: must be between 100ms and 30s, got %s",
			ErrInvalidPollInterval, c.PollInterval)
	}

	if c.PollAttempts < 1 || c.PollAttempts > 3600 {
		return fmt.Errorf("%w: must be between 1 and 3600, got %d",
			ErrInvalidPollAttempts, c.PollAttempts)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q must be one of debug, info, warn, error",
			ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
