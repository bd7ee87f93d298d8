package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

const gameRecord = `{
	"statusCode": 200,
	"data": {
		"id": "game-1",
		"name": "Acme",
		"studioId": "studio-1",
		"platform": ["android", "ios"],
		"studio": {
			"id": "studio-1",
			"organizationId": "org-1",
			"organization": {"handle": "acme-games", "name": "Acme Games"}
		}
	}
}`

func TestFetch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotKey, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("x-api-key")
			gotPath = r.URL.Path
			w.Write([]byte(gameRecord))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "api-key-1", srv.Client(), zerolog.Nop())
		game, err := c.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch() error: %v", err)
		}
		if gotPath != "/player/game" {
			t.Fatalf("request path = %q, want /player/game", gotPath)
		}
		if gotKey != "api-key-1" {
			t.Fatalf("x-api-key = %q", gotKey)
		}
		if game.ID != "game-1" || game.Name != "Acme" {
			t.Fatalf("game = %+v", game)
		}
	})

	t.Run("empty api key", func(t *testing.T) {
		c := NewClient("http://unused.invalid", "", nil, zerolog.Nop())
		if _, err := c.Fetch(context.Background()); err == nil {
			t.Fatal("expected error without an api key")
		}
	})

	t.Run("non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "api-key-1", srv.Client(), zerolog.Nop())
		if _, err := c.Fetch(context.Background()); err == nil {
			t.Fatal("expected error on 401")
		}
	})

	t.Run("missing data", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"statusCode": 200, "message": "ok"}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "api-key-1", srv.Client(), zerolog.Nop())
		if _, err := c.Fetch(context.Background()); err == nil {
			t.Fatal("expected error with no game record")
		}
	})
}

func TestAttributes(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		game := &Game{
			ID:       "game-1",
			Name:     "Acme",
			StudioID: "studio-1",
			Platform: []string{"android", "ios"},
			Studio: &Studio{
				ID:             "studio-1",
				OrganizationID: "org-1",
				Organization:   &Organization{Handle: "acme-games"},
			},
		}

		attrs := Attributes(game)
		if attrs.GameID != "game-1" || attrs.GameName != "Acme" || attrs.StudioID != "studio-1" {
			t.Fatalf("attrs = %+v", attrs)
		}
		if attrs.Platform != "android,ios" {
			t.Fatalf("Platform = %q, want comma-joined", attrs.Platform)
		}
		if attrs.OrganizationID != "org-1" || attrs.OrganizationHandle != "acme-games" {
			t.Fatalf("organization fields = %q/%q", attrs.OrganizationID, attrs.OrganizationHandle)
		}
	})

	t.Run("sparse record", func(t *testing.T) {
		attrs := Attributes(&Game{ID: "game-1"})
		if attrs.OrganizationID != "" || attrs.Platform != "" {
			t.Fatalf("attrs = %+v, want empty optional fields", attrs)
		}
	})

	t.Run("nil record", func(t *testing.T) {
		if Attributes(nil) != nil {
			t.Fatal("nil game should yield nil attributes")
		}
	})
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(gameRecord))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "api-key-1", srv.Client(), zerolog.Nop())
	attrs, err := c.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if attrs.GameName != "Acme" || attrs.OrganizationHandle != "acme-games" {
		t.Fatalf("attrs = %+v", attrs)
	}
}
