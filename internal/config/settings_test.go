package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
	if cfg.SimulatorBudget() != 10*time.Second {
		t.Fatalf("unexpected simulator budget: %v", cfg.SimulatorBudget())
	}
	if cfg.ActionExpiry() != 24*time.Hour {
		t.Fatalf("unexpected action expiry: %v", cfg.ActionExpiry())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel())
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".copilot")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := []byte("[assistant]\nbase_url = \"https://assistant.example.com/\"\nrequest_timeout_seconds = 5\n\n[actions]\nexpiry_hours = 48\n")
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL() != "https://assistant.example.com" {
		t.Fatalf("unexpected base url: %q", cfg.BaseURL())
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
	if cfg.ActionExpiry() != 48*time.Hour {
		t.Fatalf("unexpected action expiry: %v", cfg.ActionExpiry())
	}
}

func TestZeroValuesFallBack(t *testing.T) {
	cfg := Config{}
	if cfg.BaseURL() == "" {
		t.Fatalf("expected default base url")
	}
	if cfg.RequestTimeout() <= 0 {
		t.Fatalf("expected positive request timeout")
	}
	if cfg.HistoryPageSize() <= 0 {
		t.Fatalf("expected positive history page size")
	}
}
