package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIURL != "https://api.playsuper.club" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.FlagsAPIURL != "https://growthbook-api.playsuper.club" {
		t.Fatalf("FlagsAPIURL = %q", cfg.FlagsAPIURL)
	}
	if cfg.DrainInterval != 30*time.Second {
		t.Fatalf("DrainInterval = %v, want 30s", cfg.DrainInterval)
	}
	if cfg.MaxQueueBytes != 3*1024*1024 {
		t.Fatalf("MaxQueueBytes = %d", cfg.MaxQueueBytes)
	}
	if cfg.MaxQueueCount != 1024 {
		t.Fatalf("MaxQueueCount = %d", cfg.MaxQueueCount)
	}
	if cfg.EventBatchSize != 128 {
		t.Fatalf("EventBatchSize = %d", cfg.EventBatchSize)
	}
	if cfg.DataDir != ".playsuper" {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PLAYSUPER_API_URL", "https://staging.example.com")
	t.Setenv("PLAYSUPER_EVENT_BATCH_URL", "https://collector.example.com/batch")
	t.Setenv("PLAYSUPER_DRAIN_INTERVAL", "5s")
	t.Setenv("PLAYSUPER_MAX_QUEUE_COUNT", "16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.APIURL != "https://staging.example.com" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.EventBatchURL != "https://collector.example.com/batch" {
		t.Fatalf("EventBatchURL = %q", cfg.EventBatchURL)
	}
	if cfg.DrainInterval != 5*time.Second {
		t.Fatalf("DrainInterval = %v", cfg.DrainInterval)
	}
	if cfg.MaxQueueCount != 16 {
		t.Fatalf("MaxQueueCount = %d", cfg.MaxQueueCount)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero batch size", key: "PLAYSUPER_EVENT_BATCH_SIZE", value: "0"},
		{name: "negative queue count", key: "PLAYSUPER_MAX_QUEUE_COUNT", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatal("Load() should reject invalid configuration")
			}
		})
	}
}
