// Package config loads textops settings from a YAML file, a .env file and
// TEXTOPS_-prefixed environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/skosovsky/textops"
	"github.com/skosovsky/textops/backend"
)

// EnvPrefix prefixes every environment override, e.g. TEXTOPS_BACKEND_API_KEY.
const EnvPrefix = "TEXTOPS"

// Config is the full textops configuration.
type Config struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// BackendConfig selects the evaluation strategy and the reasoning backend used by
// the delegated one.
type BackendConfig struct {
	Mode       string        `mapstructure:"mode" yaml:"mode"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Model      string        `mapstructure:"model" yaml:"model"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// CacheConfig sizes the evaluation cache. Zero disables it.
type CacheConfig struct {
	Size int `mapstructure:"size" yaml:"size"`
}

// StoreConfig locates the SQLite database. An empty path keeps everything in memory.
// LiveRoutines caps the routines held in memory either way.
type StoreConfig struct {
	Path         string `mapstructure:"path" yaml:"path"`
	LiveRoutines int    `mapstructure:"live_routines" yaml:"live_routines"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Mode:       textops.StrategyHeuristic,
			BaseURL:    backend.DefaultBaseURL,
			Model:      backend.DefaultModel,
			Timeout:    backend.DefaultTimeout,
			MaxRetries: backend.DefaultMaxRetries,
		},
		Cache:  CacheConfig{Size: 256},
		Store:  StoreConfig{Path: "", LiveRoutines: textops.DefaultRoutineLimit},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path (optional; empty means defaults only) and applies environment
// overrides. A .env file next to the working directory is loaded first without
// overriding variables that are already set.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads path into the environment if it exists. Variables already set
// take priority.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("backend.mode", d.Backend.Mode)
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.api_key", d.Backend.APIKey)
	v.SetDefault("backend.model", d.Backend.Model)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.max_retries", d.Backend.MaxRetries)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.live_routines", d.Store.LiveRoutines)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// Validate checks value ranges and the strategy name.
func (c *Config) Validate() error {
	switch c.Backend.Mode {
	case textops.StrategyHeuristic, textops.StrategyDelegated:
	default:
		return fmt.Errorf("backend.mode must be %q or %q, got %q", textops.StrategyHeuristic, textops.StrategyDelegated, c.Backend.Mode)
	}
	if c.Backend.Mode == textops.StrategyDelegated && c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required for the delegated mode")
	}
	if c.Backend.Timeout < 0 {
		return errors.New("backend.timeout must not be negative")
	}
	if c.Backend.MaxRetries < 0 {
		return errors.New("backend.max_retries must not be negative")
	}
	if c.Cache.Size < 0 {
		return errors.New("cache.size must not be negative")
	}
	if c.Store.LiveRoutines <= 0 {
		return errors.New("store.live_routines must be positive")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// BackendClient builds the reasoning backend described by c.Backend.
func (c *Config) BackendClient(logger *slog.Logger) *backend.Client {
	return backend.New(backend.Config{
		BaseURL:    c.Backend.BaseURL,
		APIKey:     c.Backend.APIKey,
		Model:      c.Backend.Model,
		Timeout:    c.Backend.Timeout,
		MaxRetries: c.Backend.MaxRetries,
	}, backend.WithLogger(logger))
}

// NewLogger returns a text or JSON slog logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
