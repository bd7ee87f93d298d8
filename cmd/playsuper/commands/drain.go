package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/playsuper/sdk-go/internal/events"
)

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Flush the local event queue to the batch endpoint",
	RunE:  runDrain,
}

func init() {
	rootCmd.AddCommand(drainCmd)
}

func runDrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	queue := events.NewQueue(events.QueueConfig{
		Path:      filepath.Join(cfg.DataDir, "playsuper_queue.json"),
		Endpoint:  func() string { return cfg.EventBatchURL },
		MaxBytes:  cfg.MaxQueueBytes,
		MaxCount:  cfg.MaxQueueCount,
		BatchSize: cfg.EventBatchSize,
		Logger:    logger,
	})

	before := queue.Len()
	if before == 0 {
		fmt.Println("queue is empty")
		return nil
	}

	queue.Drain(cmd.Context())
	fmt.Printf("drained %d of %d events (%d remaining)\n", before-queue.Len(), before, queue.Len())
	return queue.Close()
}
