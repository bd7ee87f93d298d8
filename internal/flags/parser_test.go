package flags

import (
	"testing"

	"github.com/rs/zerolog"
)

const sampleDocument = `{
	"status": 200,
	"features": {
		"sdk_enable_ad_id": {
			"defaultValue": "false",
			"rules": [
				{"id": "r1", "force": "true", "condition": {"gamename": {"value": "Acme"}}},
				{"id": "r2", "force": "true", "condition": {"platform": {"in": ["android", "ios"]}}}
			]
		},
		"sdk_event_batch_url": {
			"defaultValue": "https://collector.example.com/batch"
		},
		"sdk_request_timeout_seconds": {
			"defaultValue": "30",
			"rules": [
				{"id": "r1", "force": "10", "condition": {"gameid": {"gt": "100", "lt": "200"}}}
			]
		}
	}
}`

func TestParse(t *testing.T) {
	p := NewParser(zerolog.Nop())

	t.Run("empty input", func(t *testing.T) {
		if doc := p.Parse(nil); doc != nil {
			t.Fatal("expected nil document for empty input")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if doc := p.Parse([]byte(`{"features":`)); doc != nil {
			t.Fatal("expected nil document for malformed input")
		}
	})

	t.Run("missing features object", func(t *testing.T) {
		if doc := p.Parse([]byte(`{"status": 200}`)); doc != nil {
			t.Fatal("expected nil document without features")
		}
	})

	t.Run("full document", func(t *testing.T) {
		doc := p.Parse([]byte(sampleDocument))
		if doc == nil {
			t.Fatal("expected parsed document")
		}
		if got := len(doc.Features); got != 3 {
			t.Fatalf("parsed %d features, want 3", got)
		}

		def := doc.Definition(KeyEnableAdID)
		if def == nil {
			t.Fatalf("missing %s definition", KeyEnableAdID)
		}
		if def.DefaultValue != "false" {
			t.Fatalf("DefaultValue = %q, want \"false\"", def.DefaultValue)
		}
		if len(def.Rules) != 2 {
			t.Fatalf("parsed %d rules, want 2", len(def.Rules))
		}
		if def.Rules[0].ID != "r1" || def.Rules[1].ID != "r2" {
			t.Fatalf("rule order not preserved: %q, %q", def.Rules[0].ID, def.Rules[1].ID)
		}
		if got := def.Rules[0].Condition["gamename"].Value; got != "Acme" {
			t.Fatalf("gamename value = %q, want \"Acme\"", got)
		}
		if got := def.Rules[1].Condition["platform"].In; len(got) != 2 {
			t.Fatalf("platform in = %v, want two members", got)
		}
	})

	t.Run("numeric comparators survive as strings", func(t *testing.T) {
		doc := p.Parse([]byte(sampleDocument))
		op := doc.Definition(KeyRequestTimeoutSeconds).Rules[0].Condition["gameid"]
		if op.Gt != "100" || op.Lt != "200" {
			t.Fatalf("comparators = gt %q lt %q, want 100/200", op.Gt, op.Lt)
		}
	})

	t.Run("unknown features are dropped", func(t *testing.T) {
		doc := p.Parse([]byte(`{"features": {"sdk_mystery": {"defaultValue": "x"}, "sdk_config": {"defaultValue": "{}"}}}`))
		if doc == nil {
			t.Fatal("expected parsed document")
		}
		if _, ok := doc.Features["sdk_mystery"]; ok {
			t.Fatal("unrecognized feature should be dropped")
		}
		if doc.Definition(KeyConfig) == nil {
			t.Fatal("recognized feature should survive")
		}
	})

	t.Run("rule without condition parses as nil condition", func(t *testing.T) {
		doc := p.Parse([]byte(`{"features": {"sdk_config": {"defaultValue": "{}", "rules": [{"id": "r1", "force": "{\"a\":1}"}]}}}`))
		if doc == nil {
			t.Fatal("expected parsed document")
		}
		if cond := doc.Definition(KeyConfig).Rules[0].Condition; cond != nil {
			t.Fatalf("condition = %v, want nil", cond)
		}
	})
}
