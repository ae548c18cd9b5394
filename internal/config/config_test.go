package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sketch2penpot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Import.FinalizeDelay != 500*time.Millisecond {
		t.Fatalf("FinalizeDelay = %v", cfg.Import.FinalizeDelay)
	}
	if cfg.Server.Addr != ":8080" || cfg.Preview.MaxSize != 2048 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Fatalf("Level() = %v", cfg.Level())
	}
}

func TestLoad_MergesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
import:
  full_gradients: true
server:
  read_timeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("Level() = %v, want debug", cfg.Level())
	}
	if !cfg.Import.FullGradients {
		t.Fatal("FullGradients = false")
	}
	if cfg.Import.FinalizeDelay != 500*time.Millisecond {
		t.Fatalf("FinalizeDelay = %v, want default", cfg.Import.FinalizeDelay)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("Server = %+v", cfg.Server)
	}
}

func TestLoad_ExplicitZeroDelay(t *testing.T) {
	cfg, err := Load(writeConfig(t, "import:\n  finalize_delay: 0s\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Import.FinalizeDelay != 0 {
		t.Fatalf("FinalizeDelay = %v, want 0", cfg.Import.FinalizeDelay)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Type != NotFound {
		t.Fatalf("Load() error = %v, want NotFound", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	_, err := Load(path)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Type != Invalid {
		t.Fatalf("Load() error = %v, want Invalid", err)
	}
	if cfgErr.File != path {
		t.Fatalf("File = %q, want %q", cfgErr.File, path)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		content string
		field   string
	}{
		{"log_level: trace", "log_level"},
		{"import:\n  finalize_delay: -1s", "import.finalize_delay"},
		{"server:\n  addr: \"  \"", "server.addr"},
		{"server:\n  read_timeout: -2s", "server.read_timeout"},
		{"preview:\n  max_size: 0", "preview.max_size"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Type != ValidationFailed {
				t.Fatalf("Load() error = %v, want ValidationFailed", err)
			}
			if cfgErr.Field != tt.field {
				t.Fatalf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("Error() = %q, want field name", err.Error())
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Addr = %q", cfg.Server.Addr)
	}

	if _, err := LoadOrDefault(""); err != nil {
		t.Fatalf("LoadOrDefault(\"\") error = %v", err)
	}

	if _, err := LoadOrDefault(writeConfig(t, "preview:\n  max_size: -3")); err == nil {
		t.Fatal("LoadOrDefault() should report validation errors")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
