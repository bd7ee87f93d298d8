package flags

import "time"

// Feature keys served by the remote flags document. The parser only
// recognizes these; anything else in the document is ignored.
const (
	KeyEventSingleURL        = "sdk_event_single_url"
	KeyEventBatchURL         = "sdk_event_batch_url"
	KeyEnableAdID            = "sdk_enable_ad_id"
	KeyRequestTimeoutSeconds = "sdk_request_timeout_seconds"
	KeyConfig                = "sdk_config"
	KeyAnalyticsURL          = "sdk_ps_analytics_url"
)

const (
	// valueTTL is how long a resolved value stays valid in the cache.
	valueTTL = 5 * time.Minute

	// refreshInterval is how often the background loop re-fetches the document.
	refreshInterval = 300 * time.Second

	// fetchTimeout bounds a single document fetch.
	fetchTimeout = 10 * time.Second
)

// Operator is one condition entry. Well-formed documents populate a single
// field, but the evaluator tolerates any combination (see matchOperator).
// All values are strings on the wire; numeric comparators are coerced at
// evaluation time.
type Operator struct {
	Value  string
	In     []string
	Ne     string
	Gt     string
	Lt     string
	Gte    string
	Lte    string
	Exists string
}

// Condition maps attribute names to operators. Every attribute must match
// for the condition to match. A nil Condition on a rule means the rule is
// skipped; an empty Condition matches vacuously.
type Condition map[string]Operator

// Rule is an (id, force value, condition) triple. Rules are evaluated in
// document order; the first match with a non-empty force value wins.
type Rule struct {
	ID         string
	ForceValue string
	Condition  Condition
}

// Definition is one flag: a default value plus an ordered rule list.
// Definitions are immutable once parsed; refreshes replace the whole
// document, never mutate it.
type Definition struct {
	DefaultValue string
	Rules        []Rule
}

// Document is the parsed form of one remote fetch.
type Document struct {
	Features map[string]*Definition
}

// Definition returns the flag definition for key, or nil.
func (d *Document) Definition(key string) *Definition {
	if d == nil {
		return nil
	}
	return d.Features[key]
}

// Attributes is the immutable context snapshot rules are matched against.
// It is resolved once per service instance from the game identity record.
type Attributes struct {
	GameID             string
	StudioID           string
	GameName           string
	OrganizationID     string
	OrganizationHandle string
	// Platform is comma-joined when the game targets several platforms.
	Platform string
}
