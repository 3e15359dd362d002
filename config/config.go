// Package config loads the sc configuration from an optional YAML file and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/shortcut-cli/sc/shortcut"
)

// Config is the configuration of the sc CLI.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type Config struct {
	APIToken      string        `mapstructure:"api_token" yaml:"api_token"`           // Secret: Shortcut API token
	APIURL        string        `mapstructure:"api_url" yaml:"api_url"`               // Base URL of the Shortcut REST API
	CacheDir      string        `mapstructure:"cache_dir" yaml:"cache_dir"`           // Directory of the name to id cache
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`           // debug, info, warn or error
	LogJSON       bool          `mapstructure:"log_json" yaml:"log_json"`             // Emit logs as JSON instead of console text
	RetryAttempts uint          `mapstructure:"retry_attempts" yaml:"retry_attempts"` // Attempts per retryable request
	RetryDelay    time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`       // Base delay between attempts
}

// ErrMissingToken is returned by RequireToken when no API token is configured.
var ErrMissingToken = errors.New("no API token configured: set SHORTCUT_API_TOKEN or api_token in the config file")

// RequireToken returns ErrMissingToken when the token is empty.
func (c *Config) RequireToken() error {
	if c.APIToken == "" {
		return ErrMissingToken
	}

	return nil
}

// DefaultPath returns the default config file location, $XDG_CONFIG_HOME/sc/config.yaml or the
// platform equivalent. It returns an empty string when no config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "sc", "config.yaml")
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
// An empty path skips the file entirely.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		v.SetConfigFile(filePath)
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", shortcut.DefaultBaseURL)
	v.SetDefault("log_level", "info")
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_delay", 500*time.Millisecond)
	if dir, err := os.UserCacheDir(); err == nil {
		v.SetDefault("cache_dir", filepath.Join(dir, "sc"))
	}
}

var (
	// envBindings maps each config key to the environment variables that can provide its value.
	// The first name is preferred; later names are accepted for older setups that still export
	// the Clubhouse-era variables.
	envBindings = map[string][]string{
		"api_token":      {"SHORTCUT_API_TOKEN", "CLUBHOUSE_API_TOKEN"},
		"api_url":        {"SHORTCUT_API_URL"},
		"cache_dir":      {"SHORTCUT_CACHE_DIR"},
		"log_level":      {"SHORTCUT_LOG_LEVEL"},
		"log_json":       {"SHORTCUT_LOG_JSON"},
		"retry_attempts": {"SHORTCUT_RETRY_ATTEMPTS"},
		"retry_delay":    {"SHORTCUT_RETRY_DELAY"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		// Prepend the env key to the start of the arguments
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
