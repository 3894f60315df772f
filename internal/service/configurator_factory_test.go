package service_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// storedConfigurator mirrors persistedConfiguratorDTO as loaded from the database
func storedConfigurator() *domain.Configurator {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rule := datatypes.JSON(`{"mode":"fixed","locked":true,"offset":1}`)
	return &domain.Configurator{
		ID:        7,
		Name:      "Bike builder",
		Active:    true,
		CreatedAt: created,
		Steps: []domain.Step{
			{
				ID: 1, ConfiguratorID: 7, Label: "Frame", Position: 0, CreatedAt: created,
				ProductChoices: []domain.ProductChoice{
					{ID: 10, StepID: 1, Label: "Steel", QuantityRule: rule, CreatedAt: created},
					{ID: 11, StepID: 1, Label: "Carbon", QuantityRule: rule, CreatedAt: created},
				},
			},
			{
				ID: 2, ConfiguratorID: 7, Label: "Finish", Position: 1, CreatedAt: created,
				ProductChoices: []domain.ProductChoice{
					{ID: 20, StepID: 2, Label: "Raw", CreatedAt: created},
				},
			},
		},
	}
}

func TestConfiguratorFactory_ReconcileNew(t *testing.T) {
	factory := service.NewConfiguratorFactory()

	rec, err := factory.Reconcile(nil, newConfiguratorDTO())
	require.NoError(t, err)

	cfg := rec.Configurator
	assert.Zero(t, cfg.ID)
	assert.Equal(t, "Bike builder", cfg.Name)
	require.Len(t, cfg.Steps, 2)
	assert.Zero(t, cfg.Steps[0].ID)
	require.Len(t, cfg.Steps[0].ProductChoices, 2)
	assert.Equal(t, 1, cfg.Steps[0].ProductChoices[1].Position)
	assert.Empty(t, rec.RemovedStepIDs)
	assert.Empty(t, rec.RemovedChoiceIDs)
	assert.False(t, rec.Rebased())

	var rule domain.QuantityRuleMap
	require.NoError(t, json.Unmarshal(cfg.Steps[0].ProductChoices[0].QuantityRule, &rule))
	assert.Equal(t, "fixed", rule.Mode)
	assert.Equal(t, 1, rule.Offset)

	// ids as assigned by the database
	cfg.Steps[0].ID = 31
	cfg.Steps[0].ProductChoices[0].ID = 310
	cfg.Steps[0].ProductChoices[1].ID = 311
	cfg.Steps[1].ID = 32
	cfg.Steps[1].ProductChoices[0].ID = 320

	assert.Equal(t, map[string]int64{
		"virtual-1": 31,
		"virtual-2": 310,
		"virtual-3": 311,
		"virtual-4": 32,
		"virtual-5": 320,
	}, rec.IDMap())
}

func TestConfiguratorFactory_ReconcileExisting(t *testing.T) {
	factory := service.NewConfiguratorFactory()
	existing := storedConfigurator()

	dto := persistedConfiguratorDTO()
	dto.Name = "Bike builder 2"
	// drop Carbon, add a new choice to Finish
	dto.Steps[0].ProductChoices = dto.Steps[0].ProductChoices[:1]
	dto.Steps[1].ProductChoices = append(dto.Steps[1].ProductChoices, domain.ProductChoiceDTO{
		ID: domain.VirtualID(1), Label: "Painted", Active: true, ReductionSettings: amount, QuantityRule: noneRule(),
	})

	rec, err := factory.Reconcile(existing, dto)
	require.NoError(t, err)

	cfg := rec.Configurator
	assert.Equal(t, int64(7), cfg.ID)
	assert.Equal(t, existing.CreatedAt, cfg.CreatedAt)
	assert.Equal(t, "Bike builder 2", cfg.Name)
	assert.Equal(t, int64(1), cfg.Steps[0].ID)
	assert.Equal(t, existing.Steps[0].CreatedAt, cfg.Steps[0].CreatedAt)
	assert.Equal(t, int64(10), cfg.Steps[0].ProductChoices[0].ID)
	assert.Zero(t, cfg.Steps[1].ProductChoices[1].ID)

	assert.Empty(t, rec.RemovedStepIDs)
	assert.Equal(t, []int64{11}, rec.RemovedChoiceIDs)

	cfg.Steps[1].ProductChoices[1].ID = 21
	assert.Equal(t, map[string]int64{"virtual-1": 21}, rec.IDMap(), "kept ids are not listed")
}

func TestConfiguratorFactory_ReconcileRemovesSteps(t *testing.T) {
	factory := service.NewConfiguratorFactory()

	dto := persistedConfiguratorDTO()
	dto.Steps = dto.Steps[:1]

	rec, err := factory.Reconcile(storedConfigurator(), dto)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, rec.RemovedStepIDs)
	assert.Equal(t, []int64{20}, rec.RemovedChoiceIDs)
}

func TestConfiguratorFactory_ReconcileUnknownIDs(t *testing.T) {
	factory := service.NewConfiguratorFactory()

	t.Run("step", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[1].ID = domain.PersistedID(99)

		_, err := factory.Reconcile(storedConfigurator(), dto)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrStepNotFound))
	})

	t.Run("product choice", func(t *testing.T) {
		dto := persistedConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].ID = domain.PersistedID(99)

		_, err := factory.Reconcile(storedConfigurator(), dto)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrProductChoiceNotFound))
	})

	t.Run("persisted ids on a new configurator", func(t *testing.T) {
		_, err := factory.Reconcile(nil, persistedConfiguratorDTO())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrStepNotFound))
	})
}

func TestConfiguratorFactory_DuplicateIDs(t *testing.T) {
	factory := service.NewConfiguratorFactory()

	t.Run("step", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[1].ID = domain.VirtualID(1)

		_, err := factory.Reconcile(nil, dto)
		requireConstraint(t, err, domain.ConfiguratorInvalidSteps, "steps", "Finish")
	})

	t.Run("product choice", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[1].ProductChoices[0].ID = domain.VirtualID(2)

		_, err := factory.Reconcile(nil, dto)
		requireConstraint(t, err, domain.StepInvalidProductChoices, "steps", "Finish", "productChoices", "Raw")
	})

	t.Run("null ids may repeat", func(t *testing.T) {
		dto := newConfiguratorDTO()
		dto.Steps[0].ID = domain.NodeID{}
		dto.Steps[1].ID = domain.NodeID{}

		_, err := factory.Reconcile(nil, dto)
		assert.NoError(t, err)
	})
}

func TestConfiguratorFactory_Rebase(t *testing.T) {
	factory := service.NewConfiguratorFactory()

	dto := persistedConfiguratorDTO()
	dto.Steps[1].ProductChoices[0].QuantityRule = expressionRule(0, "round", domain.QuantitySource{Step: 1, Coeff: 2})
	dto.Steps[1].ProductChoices[0].DisplayConditions = domain.DisplayConditions{{{Step: 1, Choice: 11}}}

	rec, err := factory.Rebase(storedConfigurator(), dto)
	require.NoError(t, err)
	assert.True(t, rec.Rebased())

	cfg := rec.Configurator
	assert.Equal(t, int64(7), cfg.ID, "the configurator itself is kept")
	for _, step := range cfg.Steps {
		assert.Zero(t, step.ID)
		for _, choice := range step.ProductChoices {
			assert.Zero(t, choice.ID)
		}
	}
	assert.ElementsMatch(t, []int64{1, 2}, rec.RemovedStepIDs)
	assert.ElementsMatch(t, []int64{10, 11, 20}, rec.RemovedChoiceIDs)

	cfg.Steps[0].ID = 41
	cfg.Steps[0].ProductChoices[0].ID = 410
	cfg.Steps[0].ProductChoices[1].ID = 411
	cfg.Steps[1].ID = 42
	cfg.Steps[1].ProductChoices[0].ID = 420
	require.NoError(t, rec.RewriteReferences())

	raw := cfg.Steps[1].ProductChoices[0]
	rule := raw.Rule()
	assert.Equal(t, []domain.QuantitySource{{Step: 41, Coeff: 2}}, rule.Sources())
	assert.Equal(t, domain.RoundingRound, rule.Round())
	assert.Equal(t, domain.DisplayConditions{{{Step: 41, Choice: 411}}}, raw.Conditions())

	assert.Equal(t, map[string]int64{
		"1":  41,
		"10": 410,
		"11": 411,
		"2":  42,
		"20": 420,
	}, rec.IDMap())
}

func TestConfiguratorFactory_RebaseKeepsForeignReferences(t *testing.T) {
	factory := service.NewConfiguratorFactory()

	dto := newConfiguratorDTO()
	dto.Steps[1].ProductChoices[0].DisplayConditions = domain.DisplayConditions{{{Step: 500, Choice: 501}}}

	rec, err := factory.Rebase(nil, dto)
	require.NoError(t, err)
	require.NoError(t, rec.RewriteReferences())

	assert.Equal(t, domain.DisplayConditions{{{Step: 500, Choice: 501}}}, rec.Configurator.Steps[1].ProductChoices[0].Conditions())
}
