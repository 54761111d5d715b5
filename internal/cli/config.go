package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Cache backends selectable in the config file.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the on-disk CLI configuration, read from
// ~/.config/pipegrid/config.toml (or $XDG_CONFIG_HOME/pipegrid/config.toml).
//
// Example:
//
//	[layout]
//	unit_heights = true
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Export ExportConfig `toml:"export"`
	Cache  CacheConfig  `toml:"cache"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	UnitHeights bool `toml:"unit_heights"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Formats  []string `toml:"formats"`
	Detailed bool     `toml:"detailed"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig holds Redis connection options for the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Backend: CacheBackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
	}
}

// LoadDefaultConfig reads the config file from the standard location.
// A missing file is not an error; the defaults are returned.
func LoadDefaultConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// LoadConfig reads a TOML config file, applying defaults for absent fields.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendRedis, CacheBackendNone, "":
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	return nil
}

// configPath returns the config file path using XDG standard.
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
