// Package config loads the server configuration from a TOML file, falling
// back to defaults when the file is missing, with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mcoot/resonance/internal/model"
)

// Environment variables that override the file
const (
	EnvConfigPath  = "RESONANCE_CONFIG"
	EnvStorageType = "STORAGE_TYPE"
	EnvRedisURL    = "REDIS_URL"
	EnvSQLitePath  = "SQLITE_PATH"
	EnvPort        = "PORT"
	EnvLogLevel    = "LOG_LEVEL"
)

const (
	defaultConfigPath = "~/.config/resonance/config.toml"
	defaultSQLitePath = "~/.local/share/resonance/resonance.db"
	defaultRedisURL   = "redis://localhost:6379"
	defaultPort       = 8080
	defaultStorage    = "memory"
)

// Config is the resolved server configuration
type Config struct {
	Host     string
	Port     int
	LogLevel slog.Level

	StorageType string
	RedisURL    string
	SQLitePath  string

	Track model.Track

	// HostFallback identifies requests that carry no device traits as the
	// server's own machine
	HostFallback bool
}

// Default returns the configuration used when no file exists
func Default() Config {
	return Config{
		Port:        defaultPort,
		LogLevel:    slog.LevelInfo,
		StorageType: defaultStorage,
		RedisURL:    defaultRedisURL,
		SQLitePath:  mustExpand(defaultSQLitePath),
		Track:       model.DefaultTrack(),
	}
}

type rawConfig struct {
	Server struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
	} `toml:"server"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
	Storage struct {
		Type       string `toml:"type"`
		RedisURL   string `toml:"redis_url"`
		SQLitePath string `toml:"sqlite_path"`
	} `toml:"storage"`
	Track struct {
		Title    string `toml:"title"`
		Artist   string `toml:"artist"`
		Duration int    `toml:"duration"`
	} `toml:"track"`
	Identity struct {
		HostFallback bool `toml:"host_fallback"`
	} `toml:"identity"`
}

// Load parses the config file at path, or the default location when path is
// empty. A missing file yields defaults; an unreadable or invalid one is an
// error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Host = strings.TrimSpace(raw.Server.Host)
	if raw.Server.Port > 0 {
		cfg.Port = raw.Server.Port
	}
	if level := strings.TrimSpace(raw.Log.Level); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return Config{}, fmt.Errorf("parse log level: %w", err)
		}
	}
	if t := strings.TrimSpace(raw.Storage.Type); t != "" {
		cfg.StorageType = strings.ToLower(t)
	}
	if u := strings.TrimSpace(raw.Storage.RedisURL); u != "" {
		cfg.RedisURL = u
	}
	if p := strings.TrimSpace(raw.Storage.SQLitePath); p != "" {
		cfg.SQLitePath = mustExpand(p)
	}
	if t := strings.TrimSpace(raw.Track.Title); t != "" {
		cfg.Track.Title = t
	}
	if a := strings.TrimSpace(raw.Track.Artist); a != "" {
		cfg.Track.Artist = a
	}
	if raw.Track.Duration > 0 {
		cfg.Track.Duration = raw.Track.Duration
	}
	cfg.HostFallback = raw.Identity.HostFallback

	return cfg, nil
}

// FromEnv loads the file named by RESONANCE_CONFIG (or the default file) and
// applies environment overrides
func FromEnv(getenv func(string) string) (Config, error) {
	cfg, err := Load(getenv(EnvConfigPath))
	if err != nil {
		return Config{}, err
	}
	return cfg.WithEnv(getenv)
}

// WithEnv applies environment overrides to c
func (c Config) WithEnv(getenv func(string) string) (Config, error) {
	if v := strings.TrimSpace(getenv(EnvStorageType)); v != "" {
		c.StorageType = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvRedisURL)); v != "" {
		c.RedisURL = v
	}
	if v := strings.TrimSpace(getenv(EnvSQLitePath)); v != "" {
		c.SQLitePath = mustExpand(v)
	}
	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		c.Port = port
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
	}
	return c, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
