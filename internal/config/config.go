// Package config handles application configuration using Viper.
// Defaults, an optional YAML file, and DEVBOOM_-prefixed environment
// variables merge in that priority order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration struct. `mapstructure` tags map
// YAML/env keys to struct fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StorageConfig locates the app data directory. The registry file, the
// icon disk cache, and the audit database all live under DataDir.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// StorePath is the registry JSON file under the data dir.
func (s StorageConfig) StorePath() string {
	return filepath.Join(s.DataDir, "store.json")
}

// IconCacheDir is where downloaded vendor icons are persisted.
func (s StorageConfig) IconCacheDir() string {
	return filepath.Join(s.DataDir, "ide-icons")
}

// DatabasePath is the SQLite audit database under the data dir.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataDir, "devboom.db")
}

type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

type ScanConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("storage.data_dir", defaultDataDir())
	v.SetDefault("fetch.timeout_seconds", 6)
	v.SetDefault("fetch.user_agent", "devboom/0.1 icon-fetch")
	v.SetDefault("scan.max_depth", 3)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:1420"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("log.level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// A missing config file is fine; defaults and env cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// DEVBOOM_ prefix + nested keys: DEVBOOM_SERVER_PORT=9090 → server.port
	v.SetEnvPrefix("DEVBOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// defaultDataDir follows the platform convention for per-user app data,
// falling back to a dotdir in $HOME.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "devboom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./devboom-data"
	}
	return filepath.Join(home, ".devboom")
}

// Address returns the listen address string like "127.0.0.1:8090".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
