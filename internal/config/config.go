// Package config loads SDK configuration from environment variables and
// an optional .env file, with compiled-in defaults matching production.
// Priority: environment variables > .env file > defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable of the SDK.
type Config struct {
	APIURL         string // Rewards backend base URL
	FlagsAPIURL    string // Flags service base URL
	FlagsClientKey string // Client key for the flags document endpoint

	EventSingleURL string // Default single-event endpoint (flag-overridable)
	EventBatchURL  string // Default batch endpoint (flag-overridable)
	AnalyticsURL   string // Default analytics base URL (flag-overridable)

	DataDir string // Directory for the queue file and kv store

	DrainInterval  time.Duration // Periodic queue drain cadence
	MaxQueueBytes  int           // Queue byte ceiling
	MaxQueueCount  int           // Queue count ceiling
	EventBatchSize int           // Events per send batch
}

// Load reads configuration. The .env file is optional and silently
// ignored when absent.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		APIURL:         v.GetString("PLAYSUPER_API_URL"),
		FlagsAPIURL:    v.GetString("PLAYSUPER_FLAGS_API_URL"),
		FlagsClientKey: v.GetString("PLAYSUPER_FLAGS_CLIENT_KEY"),
		EventSingleURL: v.GetString("PLAYSUPER_EVENT_SINGLE_URL"),
		EventBatchURL:  v.GetString("PLAYSUPER_EVENT_BATCH_URL"),
		AnalyticsURL:   v.GetString("PLAYSUPER_ANALYTICS_URL"),
		DataDir:        v.GetString("PLAYSUPER_DATA_DIR"),
		DrainInterval:  v.GetDuration("PLAYSUPER_DRAIN_INTERVAL"),
		MaxQueueBytes:  v.GetInt("PLAYSUPER_MAX_QUEUE_BYTES"),
		MaxQueueCount:  v.GetInt("PLAYSUPER_MAX_QUEUE_COUNT"),
		EventBatchSize: v.GetInt("PLAYSUPER_EVENT_BATCH_SIZE"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PLAYSUPER_API_URL", "https://api.playsuper.club")
	v.SetDefault("PLAYSUPER_FLAGS_API_URL", "https://growthbook-api.playsuper.club")
	v.SetDefault("PLAYSUPER_FLAGS_CLIENT_KEY", "")
	v.SetDefault("PLAYSUPER_EVENT_SINGLE_URL",
		"https://7ecybbalvlg4pem67c4amx464i0fhpbx.lambda-url.ap-south-1.on.aws/sdk-event")
	v.SetDefault("PLAYSUPER_EVENT_BATCH_URL",
		"https://7ecybbalvlg4pem67c4amx464i0fhpbx.lambda-url.ap-south-1.on.aws/sdk-batch")
	v.SetDefault("PLAYSUPER_ANALYTICS_URL", "https://analytics.playsuper.club")
	v.SetDefault("PLAYSUPER_DATA_DIR", ".playsuper")
	v.SetDefault("PLAYSUPER_DRAIN_INTERVAL", "30s")
	v.SetDefault("PLAYSUPER_MAX_QUEUE_BYTES", 3*1024*1024)
	v.SetDefault("PLAYSUPER_MAX_QUEUE_COUNT", 1024)
	v.SetDefault("PLAYSUPER_EVENT_BATCH_SIZE", 128)
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("config: PLAYSUPER_API_URL must not be empty")
	}
	if c.FlagsAPIURL == "" {
		return fmt.Errorf("config: PLAYSUPER_FLAGS_API_URL must not be empty")
	}
	if c.EventBatchURL == "" {
		return fmt.Errorf("config: PLAYSUPER_EVENT_BATCH_URL must not be empty")
	}
	if c.MaxQueueBytes <= 0 || c.MaxQueueCount <= 0 || c.EventBatchSize <= 0 {
		return fmt.Errorf("config: queue ceilings and batch size must be positive")
	}
	return nil
}
