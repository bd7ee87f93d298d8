package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/playsuper/sdk-go/internal/telemetry"
)

// Default ceilings and pacing for the queue.
const (
	DefaultMaxBytes        = 3 * 1024 * 1024
	DefaultMaxCount        = 1024
	DefaultBatchSize       = 128
	defaultInterBatchDelay = 100 * time.Millisecond
)

// QueueConfig wires a Queue.
type QueueConfig struct {
	// Path of the durable queue file, owned exclusively by this queue.
	Path string
	// Endpoint resolves the batch endpoint per drain cycle; the flag
	// engine may override it at runtime.
	Endpoint func() string
	// Online reports network availability; nil means always online.
	Online func() bool

	MaxBytes        int
	MaxCount        int
	BatchSize       int
	InterBatchDelay time.Duration

	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Queue is a durable, size-bounded FIFO of pending analytics events.
// Enqueue may be called from any goroutine; Drain is single-flight. Every
// mutation is mirrored to the durable file so a crash loses at most the
// write in progress.
type Queue struct {
	store    *fileStore
	sender   *Sender
	endpoint func() string
	online   func() bool
	log      zerolog.Logger

	maxBytes        int
	maxCount        int
	batchSize       int
	interBatchDelay time.Duration

	now func() time.Time

	mu           sync.Mutex
	events       []Event
	isProcessing bool
	retryCount   int
	nextRetryAt  time.Time
	retryBackoff *backoff.ExponentialBackOff
}

// NewQueue builds a queue and loads any events persisted by a previous
// run. A corrupted durable file is quarantined and the queue starts
// empty.
func NewQueue(cfg QueueConfig) *Queue {
	logger := cfg.Logger.With().Str("component", "events.queue").Logger()
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = DefaultMaxCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.InterBatchDelay <= 0 {
		cfg.InterBatchDelay = defaultInterBatchDelay
	}
	if cfg.Online == nil {
		cfg.Online = func() bool { return true }
	}

	q := &Queue{
		store:           newFileStore(cfg.Path, logger),
		sender:          NewSender(cfg.HTTPClient, logger),
		endpoint:        cfg.Endpoint,
		online:          cfg.Online,
		log:             logger,
		maxBytes:        cfg.MaxBytes,
		maxCount:        cfg.MaxCount,
		batchSize:       cfg.BatchSize,
		interBatchDelay: cfg.InterBatchDelay,
		now:             time.Now,
		retryBackoff:    newRetryBackOff(),
	}
	q.events = q.store.load()
	telemetry.QueueDepth.Set(float64(len(q.events)))
	return q
}

// Enqueue appends one event, enforces both size ceilings by evicting
// oldest-first, and persists. It never triggers a send itself; delivery
// is driven externally, so enqueueing is safe with no network.
func (q *Queue) Enqueue(name string, timestamp int64, payloadJSON string) {
	q.mu.Lock()
	q.events = append(q.events, newEvent(name, timestamp, payloadJSON))

	for q.sizeBytesLocked() > q.maxBytes && len(q.events) > 0 {
		q.events = q.events[1:]
		telemetry.EventsDropped.WithLabelValues("evicted").Inc()
		q.log.Warn().Msg("queue exceeded byte ceiling, dropped oldest event")
	}
	for len(q.events) > q.maxCount {
		q.events = q.events[1:]
		telemetry.EventsDropped.WithLabelValues("evicted").Inc()
		q.log.Warn().Msg("queue exceeded count ceiling, dropped oldest event")
	}

	q.persistLocked()
	depth := len(q.events)
	q.mu.Unlock()

	telemetry.EventsEnqueued.Inc()
	telemetry.QueueDepth.Set(float64(depth))
	q.log.Debug().Str("event", name).Int("depth", depth).Msg("event queued")
}

// Drain attempts one delivery cycle: snapshot, batch, send, classify.
// It is a no-op while another drain runs, while the backoff window has
// not elapsed, when offline, or when the queue is empty. Batch N is
// always attempted before batch N+1; a transient failure stops the cycle
// and a permanent one does not.
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	if q.now().Before(q.nextRetryAt) {
		q.mu.Unlock()
		return
	}
	if q.isProcessing || len(q.events) == 0 {
		q.mu.Unlock()
		return
	}
	if !q.online() {
		q.mu.Unlock()
		q.log.Debug().Msg("offline, skipping drain")
		return
	}
	q.isProcessing = true
	snapshot := make([]Event, len(q.events))
	copy(snapshot, q.events)
	q.mu.Unlock()

	q.log.Info().Int("pending", len(snapshot)).Int("batch_size", q.batchSize).Msg("draining event queue")

	cycleFailed := false
	sent := 0

	for start := 0; start < len(snapshot); start += q.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + q.batchSize
		if end > len(snapshot) {
			end = len(snapshot)
		}
		batch := snapshot[start:end]

		payload := buildBatchPayload(batch, q.log)
		result := q.sender.Send(ctx, q.endpoint(), payload)

		switch result {
		case SendSuccess:
			q.removeBatch(batch)
			q.mu.Lock()
			q.retryCount = 0
			q.retryBackoff = newRetryBackOff()
			q.mu.Unlock()
			sent += len(batch)
		case SendPermanentFailure:
			// These can never succeed; drop them so later batches are
			// not starved behind a poison batch.
			q.log.Error().Int("events", len(batch)).Msg("removing permanently failed batch")
			telemetry.EventsDropped.WithLabelValues("permanent").Add(float64(len(batch)))
			q.removeBatch(batch)
		case SendTransientFailure:
			cycleFailed = true
		}
		if cycleFailed {
			break
		}

		// No pacing needed once the last batch is done.
		if end < len(snapshot) {
			select {
			case <-time.After(q.interBatchDelay):
			case <-ctx.Done():
			}
		}
	}

	q.mu.Lock()
	q.isProcessing = false
	if cycleFailed && len(q.events) > 0 {
		q.retryCount++
		delay := q.retryBackoff.NextBackOff()
		q.nextRetryAt = q.now().Add(delay)
		q.log.Warn().Int("retry", q.retryCount).Dur("backoff", delay).Msg("batch send failed, backing off")
	}
	remaining := len(q.events)
	q.mu.Unlock()

	telemetry.EventsSent.Add(float64(sent))
	telemetry.QueueDepth.Set(float64(remaining))
	if cycleFailed {
		telemetry.DrainCycles.WithLabelValues("failed").Inc()
	} else {
		telemetry.DrainCycles.WithLabelValues("ok").Inc()
	}
	q.log.Info().Int("sent", sent).Int("remaining", remaining).Msg("drain complete")
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// HasPending reports whether any events await delivery.
func (q *Queue) HasPending() bool {
	return q.Len() > 0
}

// Clear drops every queued event and deletes the durable file.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.events = nil
	q.store.remove()
	q.mu.Unlock()
	telemetry.QueueDepth.Set(0)
	q.log.Info().Msg("queue cleared")
}

// Close flushes the in-memory queue to storage, then clears in-memory
// state and resets the retry bookkeeping. Safe to call multiple times.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) > 0 {
		q.log.Info().Int("events", len(q.events)).Msg("closing with pending events, flushing to file")
		q.persistLocked()
	}
	q.events = nil
	q.isProcessing = false
	q.retryCount = 0
	q.nextRetryAt = time.Time{}
	q.retryBackoff = newRetryBackOff()
	return nil
}

// removeBatch deletes the batch's events from the live queue by insertId
// membership and persists. The live queue may have grown since the
// snapshot; only identity matters.
func (q *Queue) removeBatch(batch []Event) {
	ids := make(map[string]struct{}, len(batch))
	for _, ev := range batch {
		ids[ev.InsertID] = struct{}{}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.events[:0]
	for _, ev := range q.events {
		if _, gone := ids[ev.InsertID]; !gone {
			kept = append(kept, ev)
		}
	}
	q.events = kept
	q.persistLocked()
}

func (q *Queue) sizeBytesLocked() int {
	total := 0
	for _, ev := range q.events {
		total += ev.approxSize()
	}
	return total
}

func (q *Queue) persistLocked() {
	if err := q.store.save(q.events); err != nil {
		q.log.Error().Err(err).Msg("failed to persist queue")
	}
}

// newRetryBackOff reproduces the min(90s, 2^n)+jitter curve. A fresh
// instance replaces the old one after a successful batch.
func newRetryBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.RandomizationFactor = 0.25
	b.Multiplier = 2
	b.MaxInterval = 90 * time.Second
	return b
}
