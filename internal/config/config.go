// Package config loads the CLI's TOML configuration. Unknown keys are
// fatal: silently ignoring a typo in a config file leads to
// hard-to-debug behavior.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk configuration for the gdrive CLI.
type Config struct {
	// CredentialsPath points at the OAuth2 client secrets JSON.
	CredentialsPath string `toml:"credentials_path"`

	// TokenPath is where the saved OAuth token lives.
	TokenPath string `toml:"token_path"`

	// Scopes is the authorization scope set requested at login.
	Scopes []string `toml:"scopes"`

	// RetryCount is the upload attempt ceiling for transient failures.
	RetryCount int `toml:"retry_count"`

	// MaxBytesPerSecond caps each individual download; 0 disables.
	MaxBytesPerSecond int64 `toml:"max_bytes_per_second"`

	// BandwidthLimit caps aggregate throughput, e.g. "5MB/s"; "0" or
	// empty disables.
	BandwidthLimit string `toml:"bandwidth_limit"`

	// SerializeCalls forces one-at-a-time execution of all operations
	// within the process.
	SerializeCalls bool `toml:"serialize_calls"`

	// LockFile, when set, serializes operations across processes via a
	// flock on this path. Overrides SerializeCalls.
	LockFile string `toml:"lock_file"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// DefaultScope grants full Drive access, matching what the upload and
// comment operations need.
const DefaultScope = "https://www.googleapis.com/auth/drive"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		CredentialsPath: filepath.Join(defaultConfigDir(), "credentials.json"),
		TokenPath:       filepath.Join(defaultConfigDir(), "token.json"),
		Scopes:          []string{DefaultScope},
		RetryCount:      5,
		BandwidthLimit:  "0",
		LogLevel:        "info",
	}
}

// DefaultConfigPath is the config file location used when --config is
// not given.
func DefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.toml")
}

func defaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gdrive-go")
	}

	return ".gdrive-go"
}

// Load reads and parses a TOML config file, rejects unknown keys, and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// the defaults. Supports the zero-config first-run experience.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Validate checks field values that TOML decoding cannot.
func Validate(cfg *Config) error {
	if cfg.RetryCount < 1 {
		return fmt.Errorf("retry_count must be at least 1, got %d", cfg.RetryCount)
	}

	if cfg.MaxBytesPerSecond < 0 {
		return fmt.Errorf("max_bytes_per_second must be non-negative, got %d", cfg.MaxBytesPerSecond)
	}

	if _, err := ParseRate(cfg.BandwidthLimit); err != nil {
		return err
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", cfg.LogLevel)
	}

	if len(cfg.Scopes) == 0 {
		return errors.New("scopes must not be empty")
	}

	return nil
}
