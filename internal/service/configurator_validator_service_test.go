package service_test

import (
	"errors"
	"testing"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConfiguratorDTO is a valid graph of new records: a frame step and a finish step
func newConfiguratorDTO() *domain.ConfiguratorDTO {
	bounded := fixedRule(1, false)
	bounded.Min = intPtr(1)
	bounded.Max = intPtr(5)

	return &domain.ConfiguratorDTO{
		Name:              "Bike builder",
		Active:            true,
		ReductionSettings: amount,
		Steps: []domain.StepDTO{
			{
				ID: domain.VirtualID(1), Label: "Frame", Position: 0, Active: true, ReductionSettings: amount,
				ProductChoices: []domain.ProductChoiceDTO{
					{ID: domain.VirtualID(2), Label: "Steel", ProductID: int64Ptr(100), IsDefault: true, Active: true, ReductionSettings: amount, QuantityRule: fixedRule(1, true)},
					{ID: domain.VirtualID(3), Label: "Carbon", ProductID: int64Ptr(101), Active: true, ReductionSettings: amount, QuantityRule: bounded},
				},
			},
			{
				ID: domain.VirtualID(4), Label: "Finish", Position: 1, Active: true, ReductionSettings: amount,
				ProductChoices: []domain.ProductChoiceDTO{
					{ID: domain.VirtualID(5), Label: "Raw", Active: true, ReductionSettings: amount, QuantityRule: noneRule()},
				},
			},
		},
	}
}

// persistedConfiguratorDTO is newConfiguratorDTO as it reads back once stored:
// steps 1 and 2, choices 10 and 11 in step 1, choice 20 in step 2
func persistedConfiguratorDTO() *domain.ConfiguratorDTO {
	dto := newConfiguratorDTO()
	dto.ID = int64Ptr(7)
	dto.Steps[0].ID = domain.PersistedID(1)
	dto.Steps[0].ProductChoices[0].ID = domain.PersistedID(10)
	dto.Steps[0].ProductChoices[1].ID = domain.PersistedID(11)
	dto.Steps[1].ID = domain.PersistedID(2)
	dto.Steps[1].ProductChoices[0].ID = domain.PersistedID(20)
	return dto
}

func requireConstraint(t *testing.T, err error, kind domain.ConstraintKind, path ...string) {
	t.Helper()
	require.Error(t, err)

	var ce *domain.ConstraintError
	require.True(t, errors.As(err, &ce), "expected a constraint error, got %v", err)
	assert.Equal(t, kind.String(), ce.Kind.String())
	if path != nil {
		assert.Equal(t, path, ce.Path)
	}
}

func TestConfiguratorValidator_Valid(t *testing.T) {
	v := service.NewConfiguratorValidatorService()

	assert.NoError(t, v.Validate(newConfiguratorDTO()))
	assert.NoError(t, v.Validate(persistedConfiguratorDTO()))
}

func TestConfiguratorValidator_Configurator(t *testing.T) {
	v := service.NewConfiguratorValidatorService()

	t.Run("empty name", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Name = "  "
		requireConstraint(t, v.Validate(dto), domain.ConfiguratorInvalidName, "name")
	})

	t.Run("no steps", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps = nil
		requireConstraint(t, v.Validate(dto), domain.ConfiguratorInvalidSteps, "steps")
	})

	t.Run("empty reduction type", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.ReductionType = ""
		requireConstraint(t, v.Validate(dto), domain.ConfiguratorInvalidReductionType, "reductionType")
	})

	t.Run("negative reduction", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Reduction = -1
		requireConstraint(t, v.Validate(dto), domain.ConfiguratorInvalidReduction, "reduction")
	})
}

func TestConfiguratorValidator_Positions(t *testing.T) {
	v := service.NewConfiguratorValidatorService()

	t.Run("gap", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[1].Position = 2
		requireConstraint(t, v.Validate(dto), domain.StepInvalidPosition, "steps", "Finish", "position")
	})

	t.Run("duplicate", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[1].Position = 0
		requireConstraint(t, v.Validate(dto), domain.StepInvalidPosition)
	})

	t.Run("steps may be submitted out of order", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].Position, dto.Steps[1].Position = 1, 0
		assert.NoError(t, v.Validate(dto))
	})
}

func TestConfiguratorValidator_Steps(t *testing.T) {
	v := service.NewConfiguratorValidatorService()

	t.Run("empty label", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[1].Label = ""
		requireConstraint(t, v.Validate(dto), domain.StepInvalidLabel, "steps", "#1", "label")
	})

	t.Run("no choices", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[1].ProductChoices = nil
		requireConstraint(t, v.Validate(dto), domain.StepInvalidProductChoices, "steps", "Finish", "productChoices")
	})

	t.Run("two defaults", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ProductChoices[1].IsDefault = true
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidIsDefault, "steps", "Frame", "productChoices")
	})

	t.Run("percentage above 100", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ReductionSettings = percent(120)
		requireConstraint(t, v.Validate(dto), domain.StepInvalidReduction, "steps", "Frame", "reduction")
	})
}

func TestConfiguratorValidator_Choices(t *testing.T) {
	v := service.NewConfiguratorValidatorService()

	t.Run("empty label", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ProductChoices[1].Label = ""
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidLabel, "steps", "Frame", "productChoices", "#1", "label")
	})

	t.Run("invalid product", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ProductChoices[0].ProductID = int64Ptr(0)
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidProduct, "steps", "Frame", "productChoices", "Steel", "productId")
	})

	t.Run("invalid reduction type", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ProductChoices[0].ReductionType = "fixed"
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidReductionType, "steps", "Frame", "productChoices", "Steel", "reductionType")
	})

	t.Run("missing quantity rule", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ProductChoices[0].QuantityRule = nil
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidQuantityRule, "steps", "Frame", "productChoices", "Steel", "quantityRule")
	})

	t.Run("unknown mode", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ProductChoices[0].QuantityRule = &domain.QuantityRuleMap{Mode: "auto"}
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidQuantityRuleMode, "steps", "Frame", "productChoices", "Steel", "quantityRule", "mode")
	})

	t.Run("product with mode none", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ProductChoices[0].QuantityRule = noneRule()
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidQuantityRuleMode, "steps", "Frame", "productChoices", "Steel", "quantityRule", "mode")
	})
}

func TestConfiguratorValidator_ModeTable(t *testing.T) {
	withBounds := func(rule *domain.QuantityRuleMap, min, max *int) *domain.QuantityRuleMap {
		rule.Min, rule.Max = min, max
		return rule
	}
	unlockedNone := noneRule()
	unlockedNone.Locked = false
	noneOffset := noneRule()
	noneOffset.Offset = 2
	fixedRounded := fixedRule(1, true)
	fixedRounded.Round = "floor"
	fixedSources := fixedRule(1, true)
	fixedSources.Sources = []domain.QuantitySource{{Step: 1, Coeff: 1}}
	unlockedExpression := expressionRule(0, "none", domain.QuantitySource{Step: 1, Coeff: 1})
	unlockedExpression.Locked = false

	tests := []struct {
		name  string
		rule  *domain.QuantityRuleMap
		kind  domain.ConstraintKind
		field string
	}{
		{"none unlocked", unlockedNone, domain.ChoiceInvalidQuantityRuleLocked, "locked"},
		{"none with offset", noneOffset, domain.ChoiceInvalidQuantityRuleOffset, "offset"},
		{"none with min", withBounds(noneRule(), intPtr(1), nil), domain.ChoiceInvalidQuantityRuleMin, "min"},
		{"none with max", withBounds(noneRule(), nil, intPtr(3)), domain.ChoiceInvalidQuantityRuleMax, "max"},
		{"fixed locked at zero", fixedRule(0, true), domain.ChoiceInvalidQuantityRuleOffset, "offset"},
		{"fixed locked with min", withBounds(fixedRule(1, true), intPtr(1), nil), domain.ChoiceInvalidQuantityRuleMin, "min"},
		{"fixed locked with max", withBounds(fixedRule(1, true), nil, intPtr(4)), domain.ChoiceInvalidQuantityRuleMax, "max"},
		{"fixed min below one", withBounds(fixedRule(1, false), intPtr(0), nil), domain.ChoiceInvalidQuantityRuleMin, "min"},
		{"fixed max below one", withBounds(fixedRule(1, false), nil, intPtr(0)), domain.ChoiceInvalidQuantityRuleMax, "max"},
		{"fixed with sources", fixedSources, domain.ChoiceInvalidQuantityRuleSources, "sources"},
		{"fixed with rounding", fixedRounded, domain.ChoiceInvalidQuantityRuleRound, "round"},
		{"expression unlocked", unlockedExpression, domain.ChoiceInvalidQuantityRuleLocked, "locked"},
		{"expression with min", withBounds(expressionRule(0, "none", domain.QuantitySource{Step: 1, Coeff: 1}), intPtr(1), nil), domain.ChoiceInvalidQuantityRuleMin, "min"},
		{"expression with max", withBounds(expressionRule(0, "none", domain.QuantitySource{Step: 1, Coeff: 1}), nil, intPtr(9)), domain.ChoiceInvalidQuantityRuleMax, "max"},
		{"expression without sources", expressionRule(0, "floor"), domain.ChoiceInvalidQuantityRuleSources, "sources"},
	}

	v := service.NewConfiguratorValidatorService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := persistedConfiguratorDTO()
			// the finish choice has no product, so every mode is allowed on it
			dto.Steps[1].ProductChoices[0].QuantityRule = tt.rule
			requireConstraint(t, v.Validate(dto), tt.kind,
				"steps", "Finish", "productChoices", "Raw", "quantityRule", tt.field)
		})
	}
}

func TestConfiguratorValidator_Sources(t *testing.T) {
	v := service.NewConfiguratorValidatorService()

	t.Run("earlier persisted step", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].QuantityRule = expressionRule(0, "ceil", domain.QuantitySource{Step: 1, Coeff: 1.5})
		assert.NoError(t, v.Validate(dto))
	})

	t.Run("virtual step cannot be referenced", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].QuantityRule = expressionRule(0, "none", domain.QuantitySource{Step: 1, Coeff: 1})
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidQuantityRuleSources,
			"steps", "Finish", "productChoices", "Raw", "quantityRule", "sources", "0", "step")
	})

	t.Run("later step", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[0].ProductChoices[1].QuantityRule = expressionRule(0, "none", domain.QuantitySource{Step: 2, Coeff: 1})
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidQuantityRuleSources,
			"steps", "Frame", "productChoices", "Carbon", "quantityRule", "sources", "0", "step")
	})

	t.Run("own step", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].QuantityRule = expressionRule(0, "none", domain.QuantitySource{Step: 2, Coeff: 1})
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidQuantityRuleSources)
	})

	t.Run("step used twice", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].QuantityRule = expressionRule(0, "none",
			domain.QuantitySource{Step: 1, Coeff: 1},
			domain.QuantitySource{Step: 1, Coeff: 2})
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidQuantityRuleSources,
			"steps", "Finish", "productChoices", "Raw", "quantityRule", "sources", "1", "step")
	})
}

func TestConfiguratorValidator_DisplayConditions(t *testing.T) {
	v := service.NewConfiguratorValidatorService()
	prefix := []string{"steps", "Finish", "productChoices", "Raw", "displayConditions", "0", "0"}

	t.Run("valid", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].DisplayConditions = domain.DisplayConditions{{{Step: 1, Choice: 11}}}
		assert.NoError(t, v.Validate(dto))
	})

	t.Run("unknown step", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].DisplayConditions = domain.DisplayConditions{{{Step: 5, Choice: 11}}}
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidDisplayConditionStep, append(prefix, "step")...)
	})

	t.Run("later step", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[0].ProductChoices[0].DisplayConditions = domain.DisplayConditions{{{Step: 2, Choice: 20}}}
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidDisplayConditionStep)
	})

	t.Run("choice of another step", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].DisplayConditions = domain.DisplayConditions{{{Step: 1, Choice: 20}}}
		requireConstraint(t, v.Validate(dto), domain.ChoiceInvalidDisplayConditionChoice, append(prefix, "choice")...)
	})
}
