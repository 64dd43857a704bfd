// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath     = "config.toml"
	DefaultAppName        = "notracepdf"
	DefaultHTTPAddr       = ":8080"
	DefaultMaxUploadMB    = 100
	DefaultRequestTimeout = "30s"
	DefaultMaxConcurrent  = 8
)

// Config is the root application configuration loaded from TOML.
// It is read once at startup and treated as immutable afterwards.
type Config struct {
	App     AppConfig     `toml:"app"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	Limits  LimitsConfig  `toml:"limits"`
	Scratch ScratchConfig `toml:"scratch"`
}

// AppConfig holds the application display name reported by the liveness endpoint.
type AppConfig struct {
	Name string `toml:"name"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LimitsConfig bounds a single request: maximum upload size, the combined
// upload+processing wall-clock budget, and how many requests may process
// concurrently. The service honors these values; it does not derive them.
type LimitsConfig struct {
	MaxUploadMB    int    `toml:"max_upload_mb"`
	RequestTimeout string `toml:"request_timeout"`
	MaxConcurrent  int    `toml:"max_concurrent"`
}

// ScratchConfig lists directories the hosting environment hands the process
// as volatile scratch space. The process never writes user bytes there, and
// the storage check asserts they stay empty.
type ScratchConfig struct {
	Dirs []string `toml:"dirs"`
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c LimitsConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// Timeout parses the request timeout, falling back to the default on error.
func (c LimitsConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultRequestTimeout)
	}
	return d
}

// Load reads and parses the TOML config file at path and applies default
// values for missing fields. Environment variables HTTP_ADDR, MAX_UPLOAD_MB
// and REQUEST_TIMEOUT override the file.
func Load(path string) (Config, error) {
	cfg := Config{
		App: AppConfig{
			Name: DefaultAppName,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Limits: LimitsConfig{
			MaxUploadMB:    DefaultMaxUploadMB,
			RequestTimeout: DefaultRequestTimeout,
			MaxConcurrent:  DefaultMaxConcurrent,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if value := os.Getenv("HTTP_ADDR"); value != "" {
		cfg.Server.Addr = value
	}
	if value := os.Getenv("MAX_UPLOAD_MB"); value != "" {
		if mb, err := strconv.Atoi(value); err == nil && mb > 0 {
			cfg.Limits.MaxUploadMB = mb
		}
	}
	if value := os.Getenv("REQUEST_TIMEOUT"); value != "" {
		if _, err := time.ParseDuration(value); err == nil {
			cfg.Limits.RequestTimeout = value
		}
	}
	return cfg
}
