package events

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// sendBudget is the total wall-clock allowance for one batch send. The
// request is aborted once it elapses and the batch counts as a transient
// failure.
const sendBudget = 35 * time.Second

// SendResult classifies one batch delivery attempt.
type SendResult int

const (
	// SendSuccess: any 2xx. The batch is removed from the queue.
	SendSuccess SendResult = iota
	// SendTransientFailure: 5xx, timeout, or transport error. The batch
	// stays queued and the cycle backs off.
	SendTransientFailure
	// SendPermanentFailure: 4xx. The batch can never succeed and is
	// removed.
	SendPermanentFailure
)

func (r SendResult) String() string {
	switch r {
	case SendSuccess:
		return "success"
	case SendPermanentFailure:
		return "permanent_failure"
	default:
		return "transient_failure"
	}
}

// Sender posts serialized batches to the analytics endpoint.
type Sender struct {
	client *http.Client
	log    zerolog.Logger
}

func NewSender(client *http.Client, logger zerolog.Logger) *Sender {
	if client == nil {
		client = &http.Client{}
	}
	return &Sender{client: client, log: logger.With().Str("component", "events.sender").Logger()}
}

// Send posts one batch payload and classifies the outcome. It never
// returns an error: every failure mode maps onto a SendResult.
func (s *Sender) Send(ctx context.Context, endpoint string, payload []byte) SendResult {
	ctx, cancel := context.WithTimeout(ctx, sendBudget)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		s.log.Error().Err(err).Str("endpoint", endpoint).Msg("failed to build batch request")
		return SendTransientFailure
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn().Err(err).Msg("batch send failed")
		return SendTransientFailure
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		s.log.Debug().Int("status", resp.StatusCode).Msg("batch sent")
		return SendSuccess
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		s.log.Error().Int("status", resp.StatusCode).Str("response", string(body)).Msg("batch rejected permanently")
		return SendPermanentFailure
	default:
		s.log.Warn().Int("status", resp.StatusCode).Str("response", string(body)).Msg("batch send failed transiently")
		return SendTransientFailure
	}
}

// buildBatchPayload assembles the JSON array body from pre-serialized
// event payloads. Events whose payload is not syntactically a JSON object
// are skipped individually; they do not fail the batch.
func buildBatchPayload(batch []Event, log zerolog.Logger) []byte {
	parts := make([]string, 0, len(batch))
	for _, ev := range batch {
		p := strings.TrimSpace(ev.PayloadJSON)
		if p == "" || !strings.HasPrefix(p, "{") || !strings.HasSuffix(p, "}") || !isValidJSON(p) {
			log.Warn().Str("event", ev.EventName).Msg("invalid JSON payload, skipping event")
			continue
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return []byte("[]")
	}
	return []byte("[" + strings.Join(parts, ",") + "]")
}

func isValidJSON(s string) bool {
	return json.Valid([]byte(s))
}
