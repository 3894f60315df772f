package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Bounds on shopper quantities and expression coefficients. Resolved quantities above
// MaxQuantity are rejected rather than truncated.
const (
	MaxQuantity    = 100000
	MaxCoefficient = 1000
)

// QuantityMode selects how a product choice's cart quantity is derived
type QuantityMode string

const (
	QuantityModeNone       QuantityMode = "none"
	QuantityModeFixed      QuantityMode = "fixed"
	QuantityModeExpression QuantityMode = "expression"
)

// IsValid reports whether the mode is a known token
func (m QuantityMode) IsValid() bool {
	switch m {
	case QuantityModeNone, QuantityModeFixed, QuantityModeExpression:
		return true
	}
	return false
}

// RoundingMode is applied to the computed value of an expression rule
type RoundingMode string

const (
	RoundingNone  RoundingMode = "none"
	RoundingFloor RoundingMode = "floor"
	RoundingCeil  RoundingMode = "ceil"
	RoundingRound RoundingMode = "round"
)

// IsValid reports whether the rounding mode is a known token
func (r RoundingMode) IsValid() bool {
	switch r {
	case RoundingNone, RoundingFloor, RoundingCeil, RoundingRound:
		return true
	}
	return false
}

// QuantitySource is one term of an expression rule: coeff times the quantity chosen in step
type QuantitySource struct {
	Step  int64   `json:"step"`
	Coeff float64 `json:"coeff"`
}

// QuantityRuleMap is the raw shape of a quantity rule on the wire and in storage
type QuantityRuleMap struct {
	Mode    string           `json:"mode"`
	Locked  bool             `json:"locked"`
	Sources []QuantitySource `json:"sources"`
	Offset  int              `json:"offset"`
	Min     *int             `json:"min"`
	Max     *int             `json:"max"`
	Round   string           `json:"round"`
}

// QuantityRule is an immutable value object. Build it with NewQuantityRule for anything
// that will be written; LegacyQuantityRule only exists to read stored data.
type QuantityRule struct {
	mode    QuantityMode
	locked  bool
	sources []QuantitySource
	offset  int
	min     *int
	max     *int
	round   RoundingMode
}

// NoQuantityRule is the rule of a choice that does not derive its quantity
func NoQuantityRule() QuantityRule {
	return QuantityRule{mode: QuantityModeNone, locked: true, round: RoundingNone}
}

// NewQuantityRule strictly builds a rule from its raw map.
// Mode-table consistency (locked/offset/min/max per mode) is checked by the configurator validator.
func NewQuantityRule(raw QuantityRuleMap) (QuantityRule, error) {
	mode := QuantityMode(strings.TrimSpace(raw.Mode))
	if !mode.IsValid() {
		return QuantityRule{}, NewConstraintError(ChoiceInvalidQuantityRuleMode,
			fmt.Sprintf("unknown quantity mode %q", raw.Mode), "quantityRule", "mode")
	}

	round := RoundingMode(strings.TrimSpace(raw.Round))
	if round == "" {
		round = RoundingNone
	}
	if !round.IsValid() {
		return QuantityRule{}, NewConstraintError(ChoiceInvalidQuantityRuleRound,
			fmt.Sprintf("unknown rounding mode %q", raw.Round), "quantityRule", "round")
	}

	for i, src := range raw.Sources {
		if src.Coeff <= 0 {
			return QuantityRule{}, NewConstraintError(ChoiceInvalidQuantityRuleSources,
				"coefficient must be greater than 0", "quantityRule", "sources", strconv.Itoa(i), "coeff")
		}
		if src.Coeff > MaxCoefficient {
			return QuantityRule{}, NewConstraintError(ChoiceInvalidQuantityRuleSources,
				fmt.Sprintf("coefficient must be at most %d", MaxCoefficient), "quantityRule", "sources", strconv.Itoa(i), "coeff")
		}
	}

	if raw.Min != nil && raw.Max != nil && *raw.Min > *raw.Max {
		return QuantityRule{}, NewConstraintError(ChoiceInvalidQuantityRuleMin,
			"min must be less than or equal to max", "quantityRule", "min")
	}

	return newQuantityRule(mode, raw.Locked, raw.Sources, raw.Offset, raw.Min, raw.Max, round), nil
}

func newQuantityRule(mode QuantityMode, locked bool, sources []QuantitySource, offset int, min, max *int, round RoundingMode) QuantityRule {
	return QuantityRule{
		mode:    mode,
		locked:  locked,
		sources: cloneSources(sources),
		offset:  offset,
		min:     cloneIntPtr(min),
		max:     cloneIntPtr(max),
		round:   round,
	}
}

// Value returns the raw map of the rule; NewQuantityRule(r.Value()) equals r
func (r QuantityRule) Value() QuantityRuleMap {
	mode := r.mode
	if mode == "" {
		mode = QuantityModeNone
	}
	round := r.round
	if round == "" {
		round = RoundingNone
	}
	return QuantityRuleMap{
		Mode:    string(mode),
		Locked:  r.locked,
		Sources: cloneSources(r.sources),
		Offset:  r.offset,
		Min:     cloneIntPtr(r.min),
		Max:     cloneIntPtr(r.max),
		Round:   string(round),
	}
}

func (r QuantityRule) Mode() QuantityMode {
	if r.mode == "" {
		return QuantityModeNone
	}
	return r.mode
}

func (r QuantityRule) Locked() bool { return r.locked }

func (r QuantityRule) Offset() int { return r.offset }

func (r QuantityRule) Sources() []QuantitySource { return cloneSources(r.sources) }

func (r QuantityRule) Min() *int { return cloneIntPtr(r.min) }

func (r QuantityRule) Max() *int { return cloneIntPtr(r.max) }

func (r QuantityRule) Round() RoundingMode {
	if r.round == "" {
		return RoundingNone
	}
	return r.round
}

// Equal compares two rules by value
func (r QuantityRule) Equal(other QuantityRule) bool {
	if r.Mode() != other.Mode() || r.locked != other.locked || r.offset != other.offset || r.Round() != other.Round() {
		return false
	}
	if !equalIntPtr(r.min, other.min) || !equalIntPtr(r.max, other.max) {
		return false
	}
	if len(r.sources) != len(other.sources) {
		return false
	}
	for i := range r.sources {
		if r.sources[i] != other.sources[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the rule as its raw map
func (r QuantityRule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

// LegacyQuantityRule leniently rebuilds a rule from stored JSON. Unknown tokens fall back to
// "none", malformed sources are dropped and an inverted min/max pair is discarded.
// Never use it to build a rule that will be written back.
func LegacyQuantityRule(stored []byte) QuantityRule {
	if len(stored) == 0 {
		return NoQuantityRule()
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(stored, &raw); err != nil || raw == nil {
		return NoQuantityRule()
	}
	m := MigrateLegacyQuantityRule(raw)

	mode := QuantityMode(m.Mode)
	if !mode.IsValid() {
		mode = QuantityModeNone
	}
	round := RoundingMode(m.Round)
	if !round.IsValid() {
		round = RoundingNone
	}
	sources := make([]QuantitySource, 0, len(m.Sources))
	for _, src := range m.Sources {
		if src.Step > 0 && src.Coeff > 0 {
			sources = append(sources, src)
		}
	}
	min, max := m.Min, m.Max
	if min != nil && max != nil && *min > *max {
		min, max = nil, nil
	}
	return newQuantityRule(mode, m.Locked, sources, m.Offset, min, max, round)
}

// MigrateLegacyQuantityRule maps older stored shapes onto the canonical raw map.
// It accepts the historical keys "coef", "coefficient", "source_step", "id_step" and "rounding",
// stringly typed numbers and booleans, and treats non-positive bounds as unset.
func MigrateLegacyQuantityRule(raw map[string]interface{}) QuantityRuleMap {
	out := QuantityRuleMap{
		Mode:    strings.ToLower(strings.TrimSpace(asString(raw["mode"]))),
		Locked:  asBool(raw["locked"]),
		Sources: []QuantitySource{},
		Round:   strings.ToLower(strings.TrimSpace(asString(firstPresent(raw, "round", "rounding")))),
	}
	if out.Mode == "" {
		out.Mode = string(QuantityModeNone)
	}
	if out.Round == "" {
		out.Round = string(RoundingNone)
	}
	if offset, ok := asFloat(raw["offset"]); ok {
		out.Offset = int(offset)
	}
	if min, ok := asFloat(raw["min"]); ok && min > 0 {
		v := int(min)
		out.Min = &v
	}
	if max, ok := asFloat(raw["max"]); ok && max > 0 {
		v := int(max)
		out.Max = &v
	}

	if list, ok := raw["sources"].([]interface{}); ok {
		for _, entry := range list {
			src, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			step, okStep := asFloat(firstPresent(src, "step", "source_step", "id_step"))
			coeff, okCoeff := asFloat(firstPresent(src, "coeff", "coef", "coefficient"))
			if !okStep || !okCoeff {
				continue
			}
			out.Sources = append(out.Sources, QuantitySource{Step: int64(step), Coeff: coeff})
		}
	}
	return out
}

func firstPresent(m map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	}
	return false
}

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func cloneSources(in []QuantitySource) []QuantitySource {
	out := make([]QuantitySource, len(in))
	copy(out, in)
	return out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
