// Package playsuper is the Go SDK for the PlaySuper rewards platform.
// It bundles remote feature-flag evaluation and a durable analytics
// event queue behind one explicitly constructed client; there is no
// ambient global state, so multiple instances and deterministic tests
// are both possible.
package playsuper

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/playsuper/sdk-go/internal/config"
	"github.com/playsuper/sdk-go/internal/events"
	"github.com/playsuper/sdk-go/internal/flags"
	"github.com/playsuper/sdk-go/internal/identity"
	"github.com/playsuper/sdk-go/internal/kv"
	"github.com/playsuper/sdk-go/internal/telemetry"
)

const queueFileName = "playsuper_queue.json"
const kvFileName = "playsuper_kv.json"

// SDK is the top-level client. Construct with New, start with Init, and
// Close on shutdown.
type SDK struct {
	cfg    *config.Config
	log    zerolog.Logger
	client *http.Client

	kv       kv.Store
	identity *identity.Client
	flags    *flags.Service
	queue    *events.Queue
	driver   *events.Driver

	propsMu sync.Mutex
	props   events.PropertyContext

	closed int32
}

// New builds an SDK instance for the given API key. Configuration comes
// from the environment (see internal/config) unless overridden by
// options. New does not touch the network; call Init for that.
func New(apiKey string, opts ...Option) (*SDK, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("playsuper: api key must not be empty")
	}
	telemetry.Init()

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	o.apply(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("playsuper: failed to create data dir: %w", err)
	}

	logger := o.logger.With().Str("sdk", "playsuper").Logger()
	store := o.kvStore
	if store == nil {
		store = kv.NewFileStore(filepath.Join(cfg.DataDir, kvFileName))
	}

	s := &SDK{
		cfg:    cfg,
		log:    logger,
		client: o.httpClient,
		kv:     store,
	}
	s.props = events.PropertyContext{DeviceID: s.deviceID()}

	s.identity = identity.NewClient(cfg.APIURL, apiKey, s.client, logger)
	s.flags = flags.NewService(flags.Config{
		BaseURL:    cfg.FlagsAPIURL,
		HTTPClient: s.client,
		Resolve:    s.resolveIdentity,
		Defaults: flags.Defaults{
			EventSingleURL: cfg.EventSingleURL,
			EventBatchURL:  cfg.EventBatchURL,
			AnalyticsURL:   cfg.AnalyticsURL,
		},
		Logger: logger,
	})
	s.queue = events.NewQueue(events.QueueConfig{
		Path:       filepath.Join(cfg.DataDir, queueFileName),
		Endpoint:   s.flags.EventBatchURL,
		MaxBytes:   cfg.MaxQueueBytes,
		MaxCount:   cfg.MaxQueueCount,
		BatchSize:  cfg.EventBatchSize,
		HTTPClient: s.client,
		Logger:     logger,
	})
	s.driver = events.NewDriver(s.queue, cfg.DrainInterval, logger)

	return s, nil
}

// Init brings the SDK online: resolves the game identity, performs the
// first flags fetch, starts the background refresh and drain loops,
// replays a pending close event from the previous run, and reports the
// game-opened event. Init never fails on backend unavailability, only on
// local misuse.
func (s *SDK) Init(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return fmt.Errorf("playsuper: sdk is closed")
	}

	s.flags.Initialize(ctx, s.cfg.FlagsClientKey)
	s.driver.Start()

	s.replayPendingClose()
	if err := s.Track(events.EventGameOpened, nil); err != nil {
		s.log.Warn().Err(err).Msg("failed to report game-opened event")
	}
	return nil
}

// Track enqueues one analytics event. Delivery is asynchronous and
// survives process restarts; under total backend unavailability events
// accumulate in the bounded local queue.
func (s *SDK) Track(name string, properties map[string]any) error {
	s.propsMu.Lock()
	props := s.props
	s.propsMu.Unlock()

	payload, err := props.BuildPayload(name, properties)
	if err != nil {
		return fmt.Errorf("playsuper: failed to build event payload: %w", err)
	}
	s.queue.Enqueue(name, time.Now().Unix(), payload)
	return nil
}

// SetPlayerID attaches an authenticated player id to subsequent events.
func (s *SDK) SetPlayerID(playerID string) {
	s.propsMu.Lock()
	s.props.PlayerID = playerID
	s.propsMu.Unlock()
}

// SetAdvertisingID attaches a platform advertising identifier and its
// source to subsequent events, honoring the sdk_enable_ad_id flag.
func (s *SDK) SetAdvertisingID(adID, source string) {
	if !s.flags.AdIDEnabled() {
		s.log.Debug().Msg("advertising id collection disabled by flag")
		return
	}
	s.propsMu.Lock()
	s.props.AdID = adID
	s.props.AdIDSource = source
	s.propsMu.Unlock()
}

// OnResume should be called when the host application resumes; it kicks
// a queue drain.
func (s *SDK) OnResume() { s.driver.NotifyResume() }

// OnFocus should be called when the host application regains focus.
func (s *SDK) OnFocus() { s.driver.NotifyFocus() }

// Drain forces one delivery cycle now, subject to the queue's
// single-flight and backoff gates.
func (s *SDK) Drain(ctx context.Context) { s.queue.Drain(ctx) }

// GetStringFlag resolves a remotely configured string value.
func (s *SDK) GetStringFlag(key, def string) string { return s.flags.GetString(key, def) }

// GetBoolFlag resolves a remotely configured boolean value.
func (s *SDK) GetBoolFlag(key string, def bool) bool { return s.flags.GetBool(key, def) }

// GetNumberFlag resolves a remotely configured numeric value.
func (s *SDK) GetNumberFlag(key string, def float64) float64 { return s.flags.GetNumber(key, def) }

// GetJSONFlag resolves a remotely configured JSON document.
func (s *SDK) GetJSONFlag(key, def string) string { return s.flags.GetJSON(key, def) }

// ForceRefreshFlags clears the flag cache and fetches fresh values.
func (s *SDK) ForceRefreshFlags(ctx context.Context) { s.flags.ForceRefresh(ctx) }

// Close records the close timestamp for next-start replay, stops the
// background loops, and flushes the queue to disk. Idempotent.
func (s *SDK) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}

	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.kv.Set(kv.KeyLastCloseTimestamp, now); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist close timestamp")
	}
	if err := s.kv.Set(kv.KeyLastCloseDone, "false"); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist close-pending flag")
	}

	if err := s.driver.Close(); err != nil {
		return err
	}
	if err := s.flags.Close(); err != nil {
		return err
	}
	return s.queue.Close()
}

// deviceID returns the stored device identifier, generating and
// persisting one on first run.
func (s *SDK) deviceID() string {
	if id, ok := s.kv.Get(kv.KeyDeviceID); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	if err := s.kv.Set(kv.KeyDeviceID, id); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist device id")
	}
	return id
}

// resolveIdentity fetches the game record, fills the event property
// context, and returns the targeting snapshot for the flag engine.
func (s *SDK) resolveIdentity(ctx context.Context) (*flags.Attributes, error) {
	game, err := s.identity.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	attrs := identity.Attributes(game)

	s.propsMu.Lock()
	s.props.GameID = attrs.GameID
	s.props.GameName = attrs.GameName
	s.props.StudioID = attrs.StudioID
	s.props.OrganizationID = attrs.OrganizationID
	s.props.OrganizationHandle = attrs.OrganizationHandle
	s.props.Platform = attrs.Platform
	if game.Studio != nil && game.Studio.Organization != nil {
		s.props.OrganizationName = game.Studio.Organization.Name
	}
	s.propsMu.Unlock()

	return attrs, nil
}

// replayPendingClose reports the previous run's game-closed event if it
// was recorded but never delivered.
func (s *SDK) replayPendingClose() {
	done, _ := s.kv.Get(kv.KeyLastCloseDone)
	if done != "false" {
		return
	}
	raw, ok := s.kv.Get(kv.KeyLastCloseTimestamp)
	if !ok {
		return
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return
	}

	s.propsMu.Lock()
	props := s.props
	s.propsMu.Unlock()
	payload, err := props.BuildPayload(events.EventGameClosed, map[string]any{
		"closed_at": ts,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to build close-replay payload")
		return
	}
	s.queue.Enqueue(events.EventGameClosed, ts, payload)
	if err := s.kv.Set(kv.KeyLastCloseDone, "true"); err != nil {
		s.log.Warn().Err(err).Msg("failed to mark close event replayed")
	}
	s.log.Info().Int64("closed_at", ts).Msg("replayed pending close event")
}
