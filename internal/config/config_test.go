package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dinotail/dinotail/internal/pager"
	"github.com/dinotail/dinotail/internal/ring"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	if cfg.BufferCapacity != 1000 || cfg.WindowSize != 20 {
		t.Fatalf("capacity/window = %d/%d, want 1000/20", cfg.BufferCapacity, cfg.WindowSize)
	}
	if cfg.Refresh != 100*time.Millisecond || cfg.StatusPoll != 5*time.Second {
		t.Fatalf("refresh/poll = %v/%v, want 100ms/5s", cfg.Refresh, cfg.StatusPoll)
	}

	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("MetricsAddr = %q, want disabled", cfg.MetricsAddr)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_bind = "  10.0.0.5:9999  "
buffer_capacity = 5000
window_size = 40
refresh_ms = 250
status_poll_seconds = 10
log_file = "  ~/.dinotail/debug.log  "
log_level = "debug"
metrics_addr = " 127.0.0.1:9108 "

[filter]
qname = "example"
status = "blocked"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "10.0.0.5:9999" {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, "10.0.0.5:9999")
	}
	if cfg.BufferCapacity != 5000 || cfg.WindowSize != 40 {
		t.Fatalf("capacity/window = %d/%d, want 5000/40", cfg.BufferCapacity, cfg.WindowSize)
	}
	if cfg.Refresh != 250*time.Millisecond || cfg.StatusPoll != 10*time.Second {
		t.Fatalf("refresh/poll = %v/%v", cfg.Refresh, cfg.StatusPoll)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" || cfg.MetricsAddr != "127.0.0.1:9108" {
		t.Fatalf("level/metrics = %q/%q", cfg.LogLevel, cfg.MetricsAddr)
	}
	if cfg.Filter.QName != "example" || cfg.Filter.Status != "blocked" {
		t.Fatalf("Filter = %+v", cfg.Filter)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
api_bind = "   "
log_file = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name   string
		body   string
		target error
		substr string
	}{
		{"zero capacity", "buffer_capacity = 0", ring.ErrInvalidCapacity, "buffer_capacity"},
		{"negative window", "window_size = -2", pager.ErrInvalidWindow, "window_size"},
		{"zero refresh", "refresh_ms = 0", nil, "refresh_ms"},
		{"bad level", `log_level = "loud"`, nil, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Fatalf("Load error = %v, want %v", err, tt.target)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Fatalf("Load error = %q, want it to mention %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	_, err := Load(writeConfig(t, `api_bind = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestDefaultPath_UnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := DefaultPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("DefaultPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/dinotail/config.toml")) {
		t.Fatalf("DefaultPath = %q, want it to end with /dinotail/config.toml", got)
	}
}
