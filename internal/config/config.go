// Package config loads zspace settings from an optional TOML file and
// ZSPACE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/zarlcorp/zspace/internal/api"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig
	Web     WebConfig
	Log     LogConfig
	DataDir string `mapstructure:"data_dir"`
}

// APIConfig holds cloud API connection settings.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
}

// WebConfig holds the browser-facing base URL used when printing links.
type WebConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and env. Env var overrides use prefix ZSPACE_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "https://api.zspace.dev")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 5.0)
	v.SetDefault("api.burst", 2)
	v.SetDefault("web.base_url", "https://zspace.dev")
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	explicit := os.Getenv("ZSPACE_CONFIG")
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ZSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// a missing default file is fine, a broken or missing explicit one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// APIClientConfig converts settings to an api.Config for the given token.
func (c Config) APIClientConfig(token string) api.Config {
	return api.Config{
		BaseURL:   c.API.BaseURL,
		Token:     token,
		Timeout:   c.API.Timeout,
		RateLimit: c.API.RateLimit,
		Burst:     c.API.Burst,
	}
}

// DefaultDataDir returns the default data directory for zspace.
func DefaultDataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "zspace")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zspace"
	}
	return filepath.Join(home, ".local", "share", "zspace")
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".zspace"
	}
	return filepath.Join(dir, "zspace")
}
