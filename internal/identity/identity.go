// Package identity fetches the game identity record and converts it into
// the immutable attribute snapshot the flag engine targets against.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/playsuper/sdk-go/internal/flags"
)

// Game is the backend's game identity record.
type Game struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	StudioID string   `json:"studioId"`
	Platform []string `json:"platform"`
	Studio   *Studio  `json:"studio"`
}

type Studio struct {
	ID             string        `json:"id"`
	OrganizationID string        `json:"organizationId"`
	Organization   *Organization `json:"organization"`
}

type Organization struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

type gameResponse struct {
	Data       *Game  `json:"data"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Client looks up the game identity for an API key.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

func NewClient(baseURL, apiKey string, client *http.Client, logger zerolog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
		log:     logger.With().Str("component", "identity").Logger(),
	}
}

// Fetch retrieves the game record for the configured API key.
func (c *Client) Fetch(ctx context.Context) (*Game, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("api key is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/player/game", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("identity lookup failed (status %d): %s", resp.StatusCode, string(body))
	}

	var wrapped gameResponse
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if wrapped.Data == nil {
		return nil, fmt.Errorf("identity response has no game record")
	}
	return wrapped.Data, nil
}

// Resolve fetches the game record and flattens it into the flag engine's
// attribute snapshot. Platforms are comma-joined.
func (c *Client) Resolve(ctx context.Context) (*flags.Attributes, error) {
	game, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Attributes(game), nil
}

// Attributes converts a game record into the targeting snapshot.
func Attributes(game *Game) *flags.Attributes {
	if game == nil {
		return nil
	}
	attrs := &flags.Attributes{
		GameID:   game.ID,
		GameName: game.Name,
		StudioID: game.StudioID,
		Platform: strings.Join(game.Platform, ","),
	}
	if game.Studio != nil {
		attrs.OrganizationID = game.Studio.OrganizationID
		if game.Studio.Organization != nil {
			attrs.OrganizationHandle = game.Studio.Organization.Handle
		}
	}
	return attrs
}
