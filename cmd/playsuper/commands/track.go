package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/playsuper/sdk-go/internal/events"
	"github.com/playsuper/sdk-go/internal/kv"
)

var (
	trackProps []string
	trackSend  bool
)

var trackCmd = &cobra.Command{
	Use:   "track <event-name>",
	Short: "Enqueue an analytics event into the local queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrack,
}

func init() {
	trackCmd.Flags().StringArrayVar(&trackProps, "prop", nil, "Event property as key=value (repeatable)")
	trackCmd.Flags().BoolVar(&trackSend, "send", false, "Drain the queue after enqueueing")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	extra := make(map[string]any, len(trackProps))
	for _, p := range trackProps {
		key, value, found := strings.Cut(p, "=")
		if !found || key == "" {
			return fmt.Errorf("invalid --prop %q, expected key=value", p)
		}
		extra[key] = value
	}

	store := kv.NewFileStore(filepath.Join(cfg.DataDir, "playsuper_kv.json"))
	deviceID, ok := store.Get(kv.KeyDeviceID)
	if !ok || deviceID == "" {
		deviceID = uuid.NewString()
		if err := store.Set(kv.KeyDeviceID, deviceID); err != nil {
			return err
		}
	}

	props := events.PropertyContext{DeviceID: deviceID}
	payload, err := props.BuildPayload(args[0], extra)
	if err != nil {
		return err
	}

	queue := events.NewQueue(events.QueueConfig{
		Path:      filepath.Join(cfg.DataDir, "playsuper_queue.json"),
		Endpoint:  func() string { return cfg.EventBatchURL },
		MaxBytes:  cfg.MaxQueueBytes,
		MaxCount:  cfg.MaxQueueCount,
		BatchSize: cfg.EventBatchSize,
		Logger:    logger,
	})
	queue.Enqueue(args[0], time.Now().Unix(), payload)

	if trackSend {
		queue.Drain(cmd.Context())
	}
	fmt.Printf("queued %q (%d pending)\n", args[0], queue.Len())
	return queue.Close()
}
