package flags

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// attributeGetters maps condition attribute names (case-insensitive, both
// snake_case and joined spellings accepted) to their value in the context
// snapshot. A name missing from this table fails the whole condition.
var attributeGetters = map[string]func(*Attributes) string{
	"game_id":              func(a *Attributes) string { return a.GameID },
	"gameid":               func(a *Attributes) string { return a.GameID },
	"studio_id":            func(a *Attributes) string { return a.StudioID },
	"studioid":             func(a *Attributes) string { return a.StudioID },
	"game_name":            func(a *Attributes) string { return a.GameName },
	"gamename":             func(a *Attributes) string { return a.GameName },
	"organization_id":      func(a *Attributes) string { return a.OrganizationID },
	"organizationid":       func(a *Attributes) string { return a.OrganizationID },
	"studioorganizationid": func(a *Attributes) string { return a.OrganizationID },
	"organizationhandle":   func(a *Attributes) string { return a.OrganizationHandle },
	"platform":             func(a *Attributes) string { return a.Platform },
}

// Evaluator matches rule conditions against a fixed attribute snapshot.
type Evaluator struct {
	attrs *Attributes
	log   zerolog.Logger
}

// NewEvaluator creates an evaluator for the given snapshot. attrs may be
// nil (identity lookup failed); every non-empty condition then fails.
func NewEvaluator(attrs *Attributes, logger zerolog.Logger) *Evaluator {
	return &Evaluator{attrs: attrs, log: logger.With().Str("component", "flags.evaluator").Logger()}
}

// Resolve walks def's rules in order and returns the raw value of the
// first rule whose condition matches, whose force value is non-empty, and
// whose force value is accepted by accepts (a typed-parse probe). If no
// rule produces a value it falls back to the definition default, subject
// to the same accepts check. ok is false when neither yields a value.
func (e *Evaluator) Resolve(def *Definition, accepts func(string) bool) (value string, ok bool) {
	if def == nil {
		return "", false
	}
	for _, rule := range def.Rules {
		if rule.Condition == nil {
			continue
		}
		if !e.Matches(rule.Condition) {
			continue
		}
		if rule.ForceValue == "" {
			e.log.Debug().Str("rule", rule.ID).Msg("rule matched but has no force value")
			continue
		}
		if !accepts(rule.ForceValue) {
			e.log.Warn().Str("rule", rule.ID).Str("value", rule.ForceValue).Msg("rule force value failed to parse, trying next rule")
			continue
		}
		return rule.ForceValue, true
	}
	if def.DefaultValue == "" {
		return "", false
	}
	if !accepts(def.DefaultValue) {
		e.log.Warn().Str("value", def.DefaultValue).Msg("definition default failed to parse")
		return "", false
	}
	return def.DefaultValue, true
}

// Matches reports whether every attribute in cond matches the snapshot
// (AND semantics). An empty condition matches vacuously; a nil snapshot
// or an unknown attribute name fails the whole condition.
func (e *Evaluator) Matches(cond Condition) bool {
	if len(cond) == 0 {
		return true
	}
	if e.attrs == nil {
		e.log.Warn().Msg("no context attributes available for condition evaluation")
		return false
	}
	for name, op := range cond {
		getter, known := attributeGetters[strings.ToLower(name)]
		if !known {
			e.log.Warn().Str("attribute", name).Msg("unknown condition attribute")
			return false
		}
		if !matchOperator(op, getter(e.attrs)) {
			return false
		}
	}
	return true
}

// matchOperator applies one operator spec to the actual attribute value.
//
// Precedence is a pinned contract: a populated Value wins outright, then
// a non-empty In list; otherwise the numeric comparators apply together
// when the actual value is numeric, else Ne applies, and a failing check
// short-circuits false. Only when those checks passed (or were absent)
// does a populated Exists replace the result with the existence
// comparison, mirroring the remote service's behavior.
func matchOperator(op Operator, actual string) bool {
	if op.Value != "" {
		return strings.EqualFold(actual, op.Value)
	}

	if len(op.In) > 0 {
		for _, candidate := range op.In {
			if strings.EqualFold(actual, candidate) {
				return true
			}
		}
		return false
	}

	if actualNum, err := strconv.ParseFloat(actual, 64); err == nil {
		if !matchNumeric(op, actualNum) {
			return false
		}
	} else if op.Ne != "" && strings.EqualFold(actual, op.Ne) {
		return false
	}

	if op.Exists != "" {
		shouldExist := strings.EqualFold(op.Exists, "true")
		return (actual != "") == shouldExist
	}
	return true
}

// matchNumeric applies every populated numeric comparator; all must hold.
// A comparator whose bound fails to parse is ignored.
func matchNumeric(op Operator, actual float64) bool {
	if op.Gt != "" {
		if bound, err := strconv.ParseFloat(op.Gt, 64); err == nil && !(actual > bound) {
			return false
		}
	}
	if op.Lt != "" {
		if bound, err := strconv.ParseFloat(op.Lt, 64); err == nil && !(actual < bound) {
			return false
		}
	}
	if op.Gte != "" {
		if bound, err := strconv.ParseFloat(op.Gte, 64); err == nil && !(actual >= bound) {
			return false
		}
	}
	if op.Lte != "" {
		if bound, err := strconv.ParseFloat(op.Lte, 64); err == nil && !(actual <= bound) {
			return false
		}
	}
	return true
}
