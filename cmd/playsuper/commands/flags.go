package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/playsuper/sdk-go/internal/flags"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Fetch and display the remote flags document",
	RunE:  runFlags,
}

func init() {
	rootCmd.AddCommand(flagsCmd)
}

func runFlags(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.FlagsClientKey == "" {
		return fmt.Errorf("a flags client key is required (--client-key or PLAYSUPER_FLAGS_CLIENT_KEY)")
	}

	logger := newLogger()
	fetcher := flags.NewFetcher(cfg.FlagsAPIURL, cfg.FlagsClientKey, nil, logger)
	raw := fetcher.Fetch(cmd.Context())
	if raw == nil {
		return fmt.Errorf("failed to fetch flags document from %s", cfg.FlagsAPIURL)
	}

	doc := flags.NewParser(logger).Parse(raw)
	if doc == nil {
		return fmt.Errorf("flags document could not be parsed")
	}

	return printRows(buildRows(doc))
}
