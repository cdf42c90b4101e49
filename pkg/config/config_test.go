// Copyright 2025 Certen Protocol

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if len(cfg.Calendars) != len(defaultCalendars) {
		t.Errorf("Calendars = %v, want defaults", cfg.Calendars)
	}
	if cfg.CalendarTimeout.Duration() != 30*time.Second {
		t.Errorf("CalendarTimeout = %v, want 30s", cfg.CalendarTimeout.Duration())
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to false")
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("OTS_CALENDARS", "https://one.example.com, https://two.example.com")
	t.Setenv("OTS_CALENDAR_TIMEOUT", "5s")
	t.Setenv("OTS_METRICS_ENABLED", "true")

	cfg := Load()
	if len(cfg.Calendars) != 2 || cfg.Calendars[0] != "https://one.example.com" {
		t.Errorf("Calendars = %v", cfg.Calendars)
	}
	if cfg.CalendarTimeout.Duration() != 5*time.Second {
		t.Errorf("CalendarTimeout = %v, want 5s", cfg.CalendarTimeout.Duration())
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true")
	}
}

func TestLoadFromFileExpandsEnvVars(t *testing.T) {
	t.Setenv("CALENDAR_TIMEOUT_OVERRIDE", "45s")

	dir := t.TempDir()
	path := filepath.Join(dir, "ots.yaml")
	contents := "calendar_timeout: \"${CALENDAR_TIMEOUT_OVERRIDE:-10s}\"\nlog_level: \"${OTS_TEST_LOG_LEVEL:-debug}\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.CalendarTimeout.Duration() != 45*time.Second {
		t.Errorf("CalendarTimeout = %v, want 45s", cfg.CalendarTimeout.Duration())
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug (substituted default)", cfg.LogLevel)
	}
}
