package playsuper

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/playsuper/sdk-go/internal/config"
	"github.com/playsuper/sdk-go/internal/kv"
)

// Option customizes SDK construction.
type Option func(*options)

type options struct {
	logger     zerolog.Logger
	httpClient *http.Client
	kvStore    kv.Store

	dataDir        string
	apiURL         string
	flagsAPIURL    string
	flagsClientKey string
	drainInterval  time.Duration
}

func defaultOptions() *options {
	return &options{
		logger:     zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.InfoLevel),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apply overlays option values onto the environment-derived config.
func (o *options) apply(cfg *config.Config) {
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.flagsAPIURL != "" {
		cfg.FlagsAPIURL = o.flagsAPIURL
	}
	if o.flagsClientKey != "" {
		cfg.FlagsClientKey = o.flagsClientKey
	}
	if o.drainInterval > 0 {
		cfg.DrainInterval = o.drainInterval
	}
}

// WithLogger replaces the default console logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDebugLogging lowers the default logger to debug level.
func WithDebugLogging() Option {
	return func(o *options) { o.logger = o.logger.Level(zerolog.DebugLevel) }
}

// WithHTTPClient replaces the HTTP client used for every backend call.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithDataDir sets the directory for the queue file and kv store.
func WithDataDir(dir string) Option {
	return func(o *options) { o.dataDir = dir }
}

// WithAPIURL overrides the rewards backend base URL.
func WithAPIURL(url string) Option {
	return func(o *options) { o.apiURL = url }
}

// WithFlagsAPIURL overrides the flags service base URL.
func WithFlagsAPIURL(url string) Option {
	return func(o *options) { o.flagsAPIURL = url }
}

// WithFlagsClientKey sets the client key for the flags document endpoint.
func WithFlagsClientKey(key string) Option {
	return func(o *options) { o.flagsClientKey = key }
}

// WithDrainInterval overrides the periodic queue drain cadence.
func WithDrainInterval(interval time.Duration) Option {
	return func(o *options) { o.drainInterval = interval }
}
