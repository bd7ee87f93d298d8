package flags

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/playsuper/sdk-go/internal/telemetry"
)

// ResolveFunc looks up the game identity and returns the attribute
// snapshot used for rule targeting. It may fail; the service then runs
// without context and non-empty conditions never match.
type ResolveFunc func(ctx context.Context) (*Attributes, error)

// Defaults are the compiled-in values returned by the convenience getters
// when the remote document does not override them.
type Defaults struct {
	EventSingleURL string
	EventBatchURL  string
	AnalyticsURL   string
}

// Config wires a Service.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Resolve    ResolveFunc
	Defaults   Defaults
	Logger     zerolog.Logger
}

// Service is the facade over the flag lifecycle: fetch, parse, cache,
// evaluate, background refresh. One instance per process, owned by the
// SDK composition point.
type Service struct {
	baseURL  string
	client   *http.Client
	resolve  ResolveFunc
	defaults Defaults
	log      zerolog.Logger

	cache  *Cache
	parser *Parser

	// refreshEvery is refreshInterval in production; tests shorten it.
	refreshEvery time.Duration

	mu          sync.Mutex
	fetcher     *Fetcher
	evaluator   *Evaluator
	initialized bool
	cancelLoop  context.CancelFunc
	loopDone    chan struct{}

	// doc is replaced wholesale on each successful refresh. Readers may
	// observe the pre- or post-refresh document, never a partial one.
	doc atomic.Pointer[Document]
}

func NewService(cfg Config) *Service {
	logger := cfg.Logger.With().Str("component", "flags").Logger()
	return &Service{
		baseURL:      cfg.BaseURL,
		client:       cfg.HTTPClient,
		resolve:      cfg.Resolve,
		defaults:     cfg.Defaults,
		log:          logger,
		cache:        NewCache(),
		parser:       NewParser(logger),
		refreshEvery: refreshInterval,
	}
}

// Initialize resolves the context attributes, performs one synchronous
// fetch-parse-store pass, then starts the background refresh loop. It
// completes once the first fetch attempt has run regardless of outcome,
// and never fails: an unreachable identity or flags backend just means
// defaults until the next cycle. Re-initializing cancels and replaces any
// prior background loop.
func (s *Service) Initialize(ctx context.Context, clientKey string) {
	s.stopLoop()

	var attrs *Attributes
	if s.resolve != nil {
		var err error
		attrs, err = s.resolve(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("game identity lookup failed, evaluating without context")
			attrs = nil
		}
	}

	s.mu.Lock()
	s.evaluator = NewEvaluator(attrs, s.log)
	s.fetcher = NewFetcher(s.baseURL, clientKey, s.client, s.log)
	s.initialized = true
	s.mu.Unlock()

	if attrs != nil {
		s.log.Info().
			Str("game_id", attrs.GameID).
			Str("studio_id", attrs.StudioID).
			Msg("initialized with targeting context")
	}

	s.refreshOnce(ctx)

	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.mu.Lock()
	s.cancelLoop = cancel
	s.loopDone = done
	s.mu.Unlock()
	go s.refreshLoop(loopCtx, done)
}

// GetString resolves a string flag.
//
// Known quirk, preserved on purpose: a valid cached value that happens to
// equal the caller default is treated as a miss and re-resolved, and a
// typed parse failure of a cached value sticks as the default until the
// entry expires or the cache is cleared.
func (s *Service) GetString(key, def string) string {
	if raw, ok := s.cache.Get(key); ok && raw != def {
		telemetry.FlagCacheHits.Inc()
		return raw
	}
	telemetry.FlagCacheMisses.Inc()

	ev, doc := s.snapshot()
	if ev == nil || doc == nil {
		s.cache.Put(key, def)
		return def
	}
	raw, ok := ev.Resolve(doc.Definition(key), func(string) bool { return true })
	if !ok {
		s.cache.Put(key, def)
		return def
	}
	s.cache.Put(key, raw)
	return raw
}

// GetBool resolves a boolean flag. See GetString for cache semantics.
func (s *Service) GetBool(key string, def bool) bool {
	if raw, ok := s.cache.Get(key); ok {
		if v, err := strconv.ParseBool(raw); err == nil && v != def {
			telemetry.FlagCacheHits.Inc()
			return v
		}
	}
	telemetry.FlagCacheMisses.Inc()

	ev, doc := s.snapshot()
	if ev == nil || doc == nil {
		s.cache.Put(key, strconv.FormatBool(def))
		return def
	}
	raw, ok := ev.Resolve(doc.Definition(key), func(v string) bool {
		_, err := strconv.ParseBool(v)
		return err == nil
	})
	if !ok {
		s.cache.Put(key, strconv.FormatBool(def))
		return def
	}
	v, _ := strconv.ParseBool(raw)
	s.cache.Put(key, strconv.FormatBool(v))
	return v
}

// GetNumber resolves a numeric flag. See GetString for cache semantics.
func (s *Service) GetNumber(key string, def float64) float64 {
	if raw, ok := s.cache.Get(key); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v != def {
			telemetry.FlagCacheHits.Inc()
			return v
		}
	}
	telemetry.FlagCacheMisses.Inc()

	ev, doc := s.snapshot()
	if ev == nil || doc == nil {
		s.cache.Put(key, formatNumber(def))
		return def
	}
	raw, ok := ev.Resolve(doc.Definition(key), func(v string) bool {
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	})
	if !ok {
		s.cache.Put(key, formatNumber(def))
		return def
	}
	v, _ := strconv.ParseFloat(raw, 64)
	s.cache.Put(key, formatNumber(v))
	return v
}

// GetJSON resolves a flag expected to carry a JSON payload. The resolved
// string must itself be syntactically valid JSON; otherwise the caller
// default is returned.
func (s *Service) GetJSON(key, def string) string {
	v := s.GetString(key, def)
	if !json.Valid([]byte(v)) {
		s.log.Warn().Str("key", key).Msg("flag value is not valid JSON, returning default")
		return def
	}
	return v
}

// Convenience getters for the SDK's own flags.

func (s *Service) EventSingleURL() string {
	return s.GetString(KeyEventSingleURL, s.defaults.EventSingleURL)
}

func (s *Service) EventBatchURL() string {
	return s.GetString(KeyEventBatchURL, s.defaults.EventBatchURL)
}

func (s *Service) AdIDEnabled() bool {
	return s.GetBool(KeyEnableAdID, true)
}

func (s *Service) AnalyticsURL() string {
	return s.GetString(KeyAnalyticsURL, s.defaults.AnalyticsURL)
}

// ForceRefresh clears the cache and performs one synchronous
// fetch-parse-store cycle.
func (s *Service) ForceRefresh(ctx context.Context) {
	s.cache.Clear()
	s.log.Info().Msg("cache cleared, fetching fresh flag values")
	s.refreshOnce(ctx)
}

// ClearCache drops every cached value.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// LogState dumps the cache and current flag values for diagnostics.
func (s *Service) LogState() {
	s.log.Info().Int("entries", s.cache.Len()).Msg("flag cache state")
	for key, value := range s.cache.Snapshot() {
		s.log.Info().Str("key", key).Str("value", value).Msg("cached flag")
	}
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if initialized {
		s.log.Info().
			Str(KeyEventSingleURL, s.EventSingleURL()).
			Str(KeyEventBatchURL, s.EventBatchURL()).
			Bool(KeyEnableAdID, s.AdIDEnabled()).
			Str(KeyAnalyticsURL, s.AnalyticsURL()).
			Msg("current flag values")
	}
}

// Close cancels the background refresh loop. Safe to call multiple times
// and before Initialize.
func (s *Service) Close() error {
	s.stopLoop()
	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()
	return nil
}

func (s *Service) stopLoop() {
	s.mu.Lock()
	cancel, done := s.cancelLoop, s.loopDone
	s.cancelLoop, s.loopDone = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Service) snapshot() (*Evaluator, *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil, nil
	}
	return s.evaluator, s.doc.Load()
}

// refreshOnce runs one fetch-parse-store cycle. Any failure leaves the
// current document in effect; nothing propagates to the caller.
func (s *Service) refreshOnce(ctx context.Context) {
	s.mu.Lock()
	fetcher := s.fetcher
	s.mu.Unlock()
	if fetcher == nil {
		return
	}

	raw := fetcher.Fetch(ctx)
	if raw == nil {
		telemetry.FlagRefreshes.WithLabelValues("fetch_error").Inc()
		return
	}
	doc := s.parser.Parse(raw)
	if doc == nil {
		telemetry.FlagRefreshes.WithLabelValues("parse_error").Inc()
		return
	}

	s.doc.Store(doc)
	s.cache.MarkRefreshed()
	telemetry.FlagRefreshes.WithLabelValues("ok").Inc()
	s.log.Info().Int("features", len(doc.Features)).Msg("refreshed flags document")
}

func (s *Service) refreshLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("background refresh stopped")
			return
		case <-ticker.C:
			if s.cache.ShouldRefresh() {
				s.refreshOnce(ctx)
			}
		}
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
