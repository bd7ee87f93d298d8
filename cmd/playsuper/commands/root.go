package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagsURL  string
	clientKey string
	dataDir   string
	format    string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "playsuper",
	Short: "Debug CLI for the PlaySuper SDK",
	Long: `playsuper is a command-line companion to the PlaySuper Go SDK.

It lets you inspect the remote feature-flag document for a client key,
enqueue analytics events into the local durable queue, and force a
queue drain against the configured batch endpoint.

Examples:
  playsuper flags --client-key sdk-abc123
  playsuper track level_completed --prop level=12 --send
  playsuper drain`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagsURL, "flags-url", "", "Base URL of the flags service (default from env)")
	rootCmd.PersistentFlags().StringVar(&clientKey, "client-key", "", "Flags client key (default from env)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "SDK data directory (default from env)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
