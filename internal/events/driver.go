package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDrainInterval is how often the driver checks for pending events.
const DefaultDrainInterval = 30 * time.Second

// Driver triggers queue drains: periodically from a ticker and on demand
// from app lifecycle hooks (resume, focus). It decouples event production
// from delivery; the queue itself never initiates a send. Every drain the
// driver starts runs under the driver's context, so Close can cancel and
// wait for all of them before the queue is torn down.
type Driver struct {
	queue    *Queue
	interval time.Duration
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	kicks  sync.WaitGroup
	closed int32
}

func NewDriver(queue *Queue, interval time.Duration, logger zerolog.Logger) *Driver {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Driver{
		queue:    queue,
		interval: interval,
		log:      logger.With().Str("component", "events.driver").Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the periodic drain loop.
func (d *Driver) Start() {
	d.done = make(chan struct{})
	go d.loop(d.ctx)
}

// NotifyResume should be called when the host application resumes from a
// paused state; it kicks a drain if anything is pending.
func (d *Driver) NotifyResume() {
	d.kick()
}

// NotifyFocus should be called when the host application regains focus.
func (d *Driver) NotifyFocus() {
	d.kick()
}

// Close stops the periodic loop, cancels any kicked drain in flight, and
// waits for both to exit. Safe to call multiple times and before Start.
func (d *Driver) Close() error {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return nil
	}
	d.cancel()
	if d.done != nil {
		<-d.done
	}
	d.kicks.Wait()
	return nil
}

func (d *Driver) loop(ctx context.Context) {
	defer close(d.done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.log.Debug().Msg("drain loop stopped")
			return
		case <-ticker.C:
			if d.queue.HasPending() {
				d.queue.Drain(ctx)
			}
		}
	}
}

func (d *Driver) kick() {
	if atomic.LoadInt32(&d.closed) == 1 {
		return
	}
	if !d.queue.HasPending() {
		return
	}
	// Drain is single-flight; a concurrent tick-driven drain makes this
	// a no-op. Running under d.ctx lets Close abort the send and wait,
	// so a kicked drain never touches the queue file after shutdown.
	d.kicks.Add(1)
	go func() {
		defer d.kicks.Done()
		d.queue.Drain(d.ctx)
	}()
}
