package commands

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/playsuper/sdk-go/internal/config"
)

// loadConfig reads the environment config and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagsURL != "" {
		cfg.FlagsAPIURL = flagsURL
	}
	if clientKey != "" {
		cfg.FlagsClientKey = clientKey
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
}
