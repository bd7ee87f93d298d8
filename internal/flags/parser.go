package flags

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// Wire shapes of the remote flags document. The feature set and the
// condition attribute set are fixed allowlists, not schema-driven: keys
// outside them never reach the evaluator.

type wireDocument struct {
	Features *wireFeatures `json:"features"`
	Status   int           `json:"status"`
}

type wireFeatures struct {
	EventSingleURL        *wireFeature `json:"sdk_event_single_url"`
	EventBatchURL         *wireFeature `json:"sdk_event_batch_url"`
	EnableAdID            *wireFeature `json:"sdk_enable_ad_id"`
	RequestTimeoutSeconds *wireFeature `json:"sdk_request_timeout_seconds"`
	Config                *wireFeature `json:"sdk_config"`
	AnalyticsURL          *wireFeature `json:"sdk_ps_analytics_url"`
}

type wireFeature struct {
	DefaultValue string     `json:"defaultValue"`
	Rules        []wireRule `json:"rules"`
}

type wireRule struct {
	ID        string         `json:"id"`
	Force     string         `json:"force"`
	Condition *wireCondition `json:"condition"`
}

type wireCondition struct {
	GameName           *wireOperator `json:"gamename"`
	GameID             *wireOperator `json:"gameid"`
	StudioID           *wireOperator `json:"studioid"`
	Platform           *wireOperator `json:"platform"`
	OrganizationID     *wireOperator `json:"organizationid"`
	OrganizationHandle *wireOperator `json:"organizationhandle"`
}

type wireOperator struct {
	Value  string   `json:"value"`
	In     []string `json:"in"`
	Ne     string   `json:"ne"`
	Gt     string   `json:"gt"`
	Lt     string   `json:"lt"`
	Gte    string   `json:"gte"`
	Lte    string   `json:"lte"`
	Exists string   `json:"exists"`
}

// Parser turns a raw remote document into a Document. Parse never fails
// loudly: malformed input yields nil plus a diagnostic log line, and the
// caller keeps whatever document it already has.
type Parser struct {
	log zerolog.Logger
}

func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{log: logger.With().Str("component", "flags.parser").Logger()}
}

// Parse decodes raw into a Document. Returns nil on empty input, a JSON
// syntax error, or a missing top-level features object. Rule order in the
// output equals rule order in the input; first-match resolution depends
// on it.
func (p *Parser) Parse(raw []byte) *Document {
	if len(raw) == 0 {
		p.log.Warn().Msg("cannot parse empty flags document")
		return nil
	}

	var wire wireDocument
	if err := json.Unmarshal(raw, &wire); err != nil {
		p.log.Error().Err(err).Msg("failed to parse flags document")
		return nil
	}
	if wire.Features == nil {
		p.log.Warn().Msg("flags document has no features object")
		return nil
	}

	doc := &Document{Features: make(map[string]*Definition)}
	add := func(key string, f *wireFeature) {
		if f != nil {
			doc.Features[key] = parseFeature(f)
		}
	}
	add(KeyEventSingleURL, wire.Features.EventSingleURL)
	add(KeyEventBatchURL, wire.Features.EventBatchURL)
	add(KeyEnableAdID, wire.Features.EnableAdID)
	add(KeyRequestTimeoutSeconds, wire.Features.RequestTimeoutSeconds)
	add(KeyConfig, wire.Features.Config)
	add(KeyAnalyticsURL, wire.Features.AnalyticsURL)

	return doc
}

func parseFeature(f *wireFeature) *Definition {
	def := &Definition{DefaultValue: f.DefaultValue}
	for _, r := range f.Rules {
		def.Rules = append(def.Rules, Rule{
			ID:         r.ID,
			ForceValue: r.Force,
			Condition:  parseCondition(r.Condition),
		})
	}
	return def
}

func parseCondition(c *wireCondition) Condition {
	if c == nil {
		return nil
	}
	cond := Condition{}
	addAttr := func(name string, op *wireOperator) {
		if op != nil {
			cond[name] = Operator{
				Value:  op.Value,
				In:     op.In,
				Ne:     op.Ne,
				Gt:     op.Gt,
				Lt:     op.Lt,
				Gte:    op.Gte,
				Lte:    op.Lte,
				Exists: op.Exists,
			}
		}
	}
	addAttr("gamename", c.GameName)
	addAttr("gameid", c.GameID)
	addAttr("studioid", c.StudioID)
	addAttr("platform", c.Platform)
	addAttr("organizationid", c.OrganizationID)
	addAttr("organizationhandle", c.OrganizationHandle)
	return cond
}
