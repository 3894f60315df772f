package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewQuantityRule_Valid(t *testing.T) {
	rule, err := domain.NewQuantityRule(domain.QuantityRuleMap{
		Mode:    "expression",
		Locked:  true,
		Sources: []domain.QuantitySource{{Step: 4, Coeff: 1.45}},
		Offset:  1,
		Round:   "floor",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QuantityModeExpression, rule.Mode())
	assert.True(t, rule.Locked())
	assert.Equal(t, 1, rule.Offset())
	assert.Equal(t, domain.RoundingFloor, rule.Round())
	assert.Equal(t, []domain.QuantitySource{{Step: 4, Coeff: 1.45}}, rule.Sources())
	assert.Nil(t, rule.Min())
	assert.Nil(t, rule.Max())
}

func TestNewQuantityRule_EmptyRoundDefaultsToNone(t *testing.T) {
	rule, err := domain.NewQuantityRule(domain.QuantityRuleMap{Mode: "fixed", Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.RoundingNone, rule.Round())
}

func TestNewQuantityRule_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.QuantityRuleMap
		kind domain.ConstraintKind
		path []string
	}{
		{
			name: "unknown mode",
			raw:  domain.QuantityRuleMap{Mode: "linear"},
			kind: domain.ChoiceInvalidQuantityRuleMode,
			path: []string{"quantityRule", "mode"},
		},
		{
			name: "unknown rounding",
			raw:  domain.QuantityRuleMap{Mode: "expression", Round: "banker"},
			kind: domain.ChoiceInvalidQuantityRuleRound,
			path: []string{"quantityRule", "round"},
		},
		{
			name: "zero coefficient",
			raw: domain.QuantityRuleMap{
				Mode:    "expression",
				Sources: []domain.QuantitySource{{Step: 1, Coeff: 1}, {Step: 2, Coeff: 0}},
			},
			kind: domain.ChoiceInvalidQuantityRuleSources,
			path: []string{"quantityRule", "sources", "1", "coeff"},
		},
		{
			name: "coefficient above bound",
			raw: domain.QuantityRuleMap{
				Mode:    "expression",
				Sources: []domain.QuantitySource{{Step: 1, Coeff: 1e308}},
			},
			kind: domain.ChoiceInvalidQuantityRuleSources,
			path: []string{"quantityRule", "sources", "0", "coeff"},
		},
		{
			name: "min above max",
			raw:  domain.QuantityRuleMap{Mode: "fixed", Min: intPtr(5), Max: intPtr(2)},
			kind: domain.ChoiceInvalidQuantityRuleMin,
			path: []string{"quantityRule", "min"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewQuantityRule(tt.raw)
			require.Error(t, err)

			var ce *domain.ConstraintError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.path, ce.Path)
		})
	}
}

func TestQuantityRule_ValueRoundTrip(t *testing.T) {
	raw := domain.QuantityRuleMap{
		Mode:   "fixed",
		Locked: false,
		Offset: 3,
		Min:    intPtr(1),
		Max:    intPtr(10),
	}
	rule, err := domain.NewQuantityRule(raw)
	require.NoError(t, err)

	again, err := domain.NewQuantityRule(rule.Value())
	require.NoError(t, err)
	assert.True(t, rule.Equal(again))
	assert.Equal(t, "none", rule.Value().Round)
	assert.Equal(t, []domain.QuantitySource{}, rule.Value().Sources)
}

func TestQuantityRule_AccessorsReturnCopies(t *testing.T) {
	rule, err := domain.NewQuantityRule(domain.QuantityRuleMap{
		Mode:    "expression",
		Locked:  true,
		Sources: []domain.QuantitySource{{Step: 1, Coeff: 2}},
		Max:     nil,
	})
	require.NoError(t, err)

	sources := rule.Sources()
	sources[0].Coeff = 99
	assert.Equal(t, 2.0, rule.Sources()[0].Coeff)
}

func TestQuantityRule_MarshalJSON(t *testing.T) {
	rule, err := domain.NewQuantityRule(domain.QuantityRuleMap{Mode: "fixed", Locked: true, Offset: 2})
	require.NoError(t, err)

	data, err := json.Marshal(rule)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"fixed","locked":true,"sources":[],"offset":2,"min":null,"max":null,"round":"none"}`, string(data))
}

func TestNoQuantityRule(t *testing.T) {
	rule := domain.NoQuantityRule()
	assert.Equal(t, domain.QuantityModeNone, rule.Mode())
	assert.True(t, rule.Locked())
	assert.Equal(t, 0, rule.Offset())
}

func TestLegacyQuantityRule(t *testing.T) {
	t.Run("empty or unreadable data governs nothing", func(t *testing.T) {
		assert.True(t, domain.LegacyQuantityRule(nil).Equal(domain.NoQuantityRule()))
		assert.True(t, domain.LegacyQuantityRule([]byte("not json")).Equal(domain.NoQuantityRule()))
		assert.True(t, domain.LegacyQuantityRule([]byte("null")).Equal(domain.NoQuantityRule()))
	})

	t.Run("historical keys and stringly typed values", func(t *testing.T) {
		stored := []byte(`{
			"mode": "Expression",
			"locked": "true",
			"offset": "2",
			"rounding": "CEIL",
			"sources": [
				{"source_step": "7", "coef": "0.5"},
				{"id_step": 8, "coefficient": 2},
				{"step": 9}
			]
		}`)
		rule := domain.LegacyQuantityRule(stored)

		assert.Equal(t, domain.QuantityModeExpression, rule.Mode())
		assert.True(t, rule.Locked())
		assert.Equal(t, 2, rule.Offset())
		assert.Equal(t, domain.RoundingCeil, rule.Round())
		assert.Equal(t, []domain.QuantitySource{{Step: 7, Coeff: 0.5}, {Step: 8, Coeff: 2}}, rule.Sources())
	})

	t.Run("unknown tokens fall back to none", func(t *testing.T) {
		rule := domain.LegacyQuantityRule([]byte(`{"mode":"weird","round":"sideways","locked":1}`))
		assert.Equal(t, domain.QuantityModeNone, rule.Mode())
		assert.Equal(t, domain.RoundingNone, rule.Round())
		assert.True(t, rule.Locked())
	})

	t.Run("non-positive bounds are unset and inverted bounds are dropped", func(t *testing.T) {
		rule := domain.LegacyQuantityRule([]byte(`{"mode":"fixed","min":0,"max":-1}`))
		assert.Nil(t, rule.Min())
		assert.Nil(t, rule.Max())

		rule = domain.LegacyQuantityRule([]byte(`{"mode":"fixed","min":8,"max":3}`))
		assert.Nil(t, rule.Min())
		assert.Nil(t, rule.Max())

		rule = domain.LegacyQuantityRule([]byte(`{"mode":"fixed","min":2,"max":3}`))
		require.NotNil(t, rule.Min())
		require.NotNil(t, rule.Max())
		assert.Equal(t, 2, *rule.Min())
		assert.Equal(t, 3, *rule.Max())
	})

	t.Run("malformed sources are dropped", func(t *testing.T) {
		rule := domain.LegacyQuantityRule([]byte(`{"mode":"expression","locked":true,"sources":[{"step":0,"coeff":1},{"step":3,"coeff":-2},"x",{"step":4,"coeff":1}]}`))
		assert.Equal(t, []domain.QuantitySource{{Step: 4, Coeff: 1}}, rule.Sources())
	})
}

func TestMigrateLegacyQuantityRule_Defaults(t *testing.T) {
	m := domain.MigrateLegacyQuantityRule(map[string]interface{}{})
	assert.Equal(t, "none", m.Mode)
	assert.Equal(t, "none", m.Round)
	assert.False(t, m.Locked)
	assert.Empty(t, m.Sources)
	assert.NotNil(t, m.Sources)
}
