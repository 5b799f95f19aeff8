package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any env vars that would override defaults
	envVars := []string{
		"SERVICE_NAME", "ENV", "LOG_LEVEL", "RATES_PORT",
		"NATS_URL", "REDIS_ADDR", "REDIS_DB", "DATABASE_URL",
		"AWS_REGION", "FRED_BASE_URL", "DIVIDEND_BASE_URL",
		"EARLIEST_DATE", "REBUILD_ON_START", "REFRESH_INTERVAL",
	}
	for _, key := range envVars {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServiceName != "rates-adapter" {
		t.Errorf("expected ServiceName=rates-adapter, got %s", cfg.ServiceName)
	}
	if cfg.Env != "dev" {
		t.Errorf("expected Env=dev, got %s", cfg.Env)
	}
	if cfg.Port != 9040 {
		t.Errorf("expected Port=9040, got %d", cfg.Port)
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("expected NATSURL=nats://localhost:4222, got %s", cfg.NATSURL)
	}
	if cfg.FREDBaseURL != "https://fred.stlouisfed.org" {
		t.Errorf("expected FREDBaseURL=https://fred.stlouisfed.org, got %s", cfg.FREDBaseURL)
	}
	if !cfg.RebuildOnStart {
		t.Error("expected RebuildOnStart=true by default")
	}
	if cfg.RefreshInterval != 6*time.Hour {
		t.Errorf("expected RefreshInterval=6h, got %v", cfg.RefreshInterval)
	}
	want := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.EarliestDate.Equal(want) {
		t.Errorf("expected EarliestDate=%v, got %v", want, cfg.EarliestDate)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REBUILD_ON_START", "false")
	t.Setenv("EARLIEST_DATE", "2001-05-09")
	t.Setenv("REFRESH_INTERVAL", "30m")

	cfg := Load()

	if cfg.RebuildOnStart {
		t.Error("expected RebuildOnStart=false")
	}
	want := time.Date(2001, time.May, 9, 0, 0, 0, 0, time.UTC)
	if !cfg.EarliestDate.Equal(want) {
		t.Errorf("expected EarliestDate=%v, got %v", want, cfg.EarliestDate)
	}
	if cfg.RefreshInterval != 30*time.Minute {
		t.Errorf("expected RefreshInterval=30m, got %v", cfg.RefreshInterval)
	}
}
