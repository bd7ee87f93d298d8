package flags

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Fetcher retrieves the raw flags document for one client key. A failed
// fetch returns nil; the caller keeps its current document and tries
// again next cycle.
type Fetcher struct {
	baseURL   string
	clientKey string
	client    *http.Client
	log       zerolog.Logger
}

func NewFetcher(baseURL, clientKey string, client *http.Client, logger zerolog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		baseURL:   baseURL,
		clientKey: clientKey,
		client:    client,
		log:       logger.With().Str("component", "flags.fetcher").Logger(),
	}
}

// Fetch issues one GET to {base}/api/features/{clientKey} with a 10s
// budget. Any transport error or non-2xx status yields nil.
func (f *Fetcher) Fetch(ctx context.Context) []byte {
	if f.clientKey == "" {
		f.log.Warn().Msg("client key is empty, skipping flags fetch")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/features/%s", f.baseURL, f.clientKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.log.Error().Err(err).Msg("failed to build flags request")
		return nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn().Err(err).Msg("failed to fetch flags")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.log.Warn().Int("status", resp.StatusCode).Msg("flags fetch returned non-success status")
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.Warn().Err(err).Msg("failed to read flags response")
		return nil
	}
	f.log.Debug().Int("bytes", len(body)).Msg("fetched flags document")
	return body
}
