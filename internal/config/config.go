package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/dinotail/dinotail/internal/filter"
	"github.com/dinotail/dinotail/internal/logging"
	"github.com/dinotail/dinotail/internal/pager"
	"github.com/dinotail/dinotail/internal/ring"
)

// Config holds the settings dinotail reads at startup.
type Config struct {
	APIBind        string
	BufferCapacity int
	WindowSize     int
	Refresh        time.Duration
	StatusPoll     time.Duration
	LogFile        string
	LogLevel       string
	MetricsAddr    string
	Filter         filter.Options
}

const (
	defaultConfigPath     = "~/.config/dinotail/config.toml"
	defaultLogFile        = "~/.local/state/dinotail/dinotail.log"
	defaultAPIBind        = "127.0.0.1:8553"
	defaultBufferCapacity = 1000
	defaultWindowSize     = 20
	defaultRefreshMS      = 100
	defaultStatusPollSecs = 5
	defaultLogLevel       = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:        defaultAPIBind,
		BufferCapacity: defaultBufferCapacity,
		WindowSize:     defaultWindowSize,
		Refresh:        defaultRefreshMS * time.Millisecond,
		StatusPoll:     defaultStatusPollSecs * time.Second,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
	}
}

// DefaultPath is the config file consulted when none is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// Load locates and parses the dinotail config, falling back to defaults when missing.
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

	var raw struct {
		APIBind           string         `toml:"api_bind"`
		BufferCapacity    *int           `toml:"buffer_capacity"`
		WindowSize        *int           `toml:"window_size"`
		RefreshMS         *int           `toml:"refresh_ms"`
		StatusPollSeconds *int           `toml:"status_poll_seconds"`
		LogFile           string         `toml:"log_file"`
		LogLevel          string         `toml:"log_level"`
		MetricsAddr       string         `toml:"metrics_addr"`
		Filter            filter.Options `toml:"filter"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBind); v != "" {
		cfg.APIBind = v
	}
	if raw.BufferCapacity != nil {
		cfg.BufferCapacity = *raw.BufferCapacity
	}
	if raw.WindowSize != nil {
		cfg.WindowSize = *raw.WindowSize
	}
	if raw.RefreshMS != nil {
		cfg.Refresh = time.Duration(*raw.RefreshMS) * time.Millisecond
	}
	if raw.StatusPollSeconds != nil {
		cfg.StatusPoll = time.Duration(*raw.StatusPollSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	cfg.Filter = raw.Filter

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the buffer, pager or logger cannot start with.
func (c Config) Validate() error {
	if c.BufferCapacity <= 0 {
		return fmt.Errorf("buffer_capacity: %w: got %d", ring.ErrInvalidCapacity, c.BufferCapacity)
	}
	if c.WindowSize <= 0 {
		return fmt.Errorf("window_size: %w: got %d", pager.ErrInvalidWindow, c.WindowSize)
	}
	if c.Refresh <= 0 {
		return fmt.Errorf("refresh_ms must be positive, got %v", c.Refresh)
	}
	if c.StatusPoll <= 0 {
		return fmt.Errorf("status_poll_seconds must be positive, got %v", c.StatusPoll)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
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

// ExpandPath resolves "~" and relative paths for callers outside the
// package, such as CLI flags.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}
