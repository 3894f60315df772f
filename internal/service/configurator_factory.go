package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/straye-as/product-configurator/internal/domain"
	"gorm.io/datatypes"
)

// ConfiguratorFactory maps a submitted configurator graph onto entities
type ConfiguratorFactory struct{}

// NewConfiguratorFactory creates a new ConfiguratorFactory instance
func NewConfiguratorFactory() *ConfiguratorFactory {
	return &ConfiguratorFactory{}
}

// choiceIndex locates a choice inside Reconciliation.Configurator
type choiceIndex struct {
	step   int
	choice int
}

// Reconciliation is the outcome of mapping a DTO onto a configurator.
// Records removed from the graph are listed so the repository can delete them.
type Reconciliation struct {
	Configurator     *domain.Configurator
	RemovedStepIDs   []int64
	RemovedChoiceIDs []int64

	rebased    bool
	stepKeys   map[string]int
	choiceKeys map[string]choiceIndex
	stepRefs   map[int64]int
	choiceRefs map[int64]choiceIndex
}

// Reconcile updates existing (nil for a new configurator) from dto. Steps and choices are matched
// by id; persisted ids that are unknown to existing fail with a *domain.NotFoundError and records
// missing from dto become orphans. Choices may move between steps of the same configurator.
func (f *ConfiguratorFactory) Reconcile(existing *domain.Configurator, dto *domain.ConfiguratorDTO) (*Reconciliation, error) {
	return f.build(existing, dto, false)
}

// Rebase maps dto onto existing as a graph of new records: every current step and choice is
// removed and the ids found in dto are only used to rewrite quantity sources and display
// conditions once the new records have ids. Used to import and restore exported graphs.
func (f *ConfiguratorFactory) Rebase(existing *domain.Configurator, dto *domain.ConfiguratorDTO) (*Reconciliation, error) {
	return f.build(existing, dto, true)
}

func (f *ConfiguratorFactory) build(existing *domain.Configurator, dto *domain.ConfiguratorDTO, rebase bool) (*Reconciliation, error) {
	cfg := &domain.Configurator{}
	if existing != nil {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
	}
	cfg.Name = dto.Name
	cfg.Description = dto.Description
	cfg.Active = dto.Active
	cfg.ReductionSettings = dto.ReductionSettings

	currentSteps := make(map[int64]*domain.Step)
	currentChoices := make(map[int64]*domain.ProductChoice)
	if existing != nil {
		for i := range existing.Steps {
			step := &existing.Steps[i]
			currentSteps[step.ID] = step
			for j := range step.ProductChoices {
				currentChoices[step.ProductChoices[j].ID] = &step.ProductChoices[j]
			}
		}
	}

	rec := &Reconciliation{
		Configurator: cfg,
		rebased:      rebase,
		stepKeys:     make(map[string]int),
		choiceKeys:   make(map[string]choiceIndex),
		stepRefs:     make(map[int64]int),
		choiceRefs:   make(map[int64]choiceIndex),
	}
	keptSteps := make(map[int64]bool)
	keptChoices := make(map[int64]bool)

	cfg.Steps = make([]domain.Step, 0, len(dto.Steps))
	for i, stepDTO := range dto.Steps {
		key := stepDTO.ID.String()
		if _, dup := rec.stepKeys[key]; dup && !stepDTO.ID.IsZero() {
			return nil, domain.NewConstraintError(domain.ConfiguratorInvalidSteps,
				fmt.Sprintf("step id %s is used more than once", key), "steps", nodeKey(stepDTO.Label, i))
		}

		step := domain.Step{}
		if stepDTO.ID.IsPersisted() && !rebase {
			current, ok := currentSteps[stepDTO.ID.ID]
			if !ok {
				return nil, domain.NewNotFoundError(domain.NotFoundStep, stepDTO.ID.ID)
			}
			step.ID = current.ID
			step.CreatedAt = current.CreatedAt
			keptSteps[current.ID] = true
		}
		step.ConfiguratorID = cfg.ID
		step.Label = stepDTO.Label
		step.Description = stepDTO.Description
		step.Position = stepDTO.Position
		step.Active = stepDTO.Active
		step.ReductionSettings = stepDTO.ReductionSettings

		stepIdx := len(cfg.Steps)
		if !stepDTO.ID.IsZero() {
			rec.stepKeys[key] = stepIdx
		}
		if rebase && stepDTO.ID.IsPersisted() {
			rec.stepRefs[stepDTO.ID.ID] = stepIdx
		}

		step.ProductChoices = make([]domain.ProductChoice, 0, len(stepDTO.ProductChoices))
		for j, choiceDTO := range stepDTO.ProductChoices {
			ckey := choiceDTO.ID.String()
			if _, dup := rec.choiceKeys[ckey]; dup && !choiceDTO.ID.IsZero() {
				return nil, domain.NewConstraintError(domain.StepInvalidProductChoices,
					fmt.Sprintf("product choice id %s is used more than once", ckey),
					"steps", nodeKey(stepDTO.Label, i), "productChoices", nodeKey(choiceDTO.Label, j))
			}

			choice, err := f.buildChoice(choiceDTO, currentChoices, rebase)
			if err != nil {
				return nil, err
			}
			if choice.ID != 0 {
				keptChoices[choice.ID] = true
			}
			choice.StepID = step.ID
			choice.Position = j

			idx := choiceIndex{step: stepIdx, choice: len(step.ProductChoices)}
			if !choiceDTO.ID.IsZero() {
				rec.choiceKeys[ckey] = idx
			}
			if rebase && choiceDTO.ID.IsPersisted() {
				rec.choiceRefs[choiceDTO.ID.ID] = idx
			}
			step.ProductChoices = append(step.ProductChoices, choice)
		}

		cfg.Steps = append(cfg.Steps, step)
	}

	if existing != nil {
		for _, step := range existing.Steps {
			if !keptSteps[step.ID] {
				rec.RemovedStepIDs = append(rec.RemovedStepIDs, step.ID)
			}
			for _, choice := range step.ProductChoices {
				if !keptChoices[choice.ID] {
					rec.RemovedChoiceIDs = append(rec.RemovedChoiceIDs, choice.ID)
				}
			}
		}
	}
	return rec, nil
}

func (f *ConfiguratorFactory) buildChoice(dto domain.ProductChoiceDTO, current map[int64]*domain.ProductChoice, rebase bool) (domain.ProductChoice, error) {
	choice := domain.ProductChoice{}
	if dto.ID.IsPersisted() && !rebase {
		existing, ok := current[dto.ID.ID]
		if !ok {
			return choice, domain.NewNotFoundError(domain.NotFoundProductChoice, dto.ID.ID)
		}
		choice.ID = existing.ID
		choice.CreatedAt = existing.CreatedAt
	}
	choice.Label = dto.Label
	choice.Description = dto.Description
	choice.ProductID = dto.ProductID
	choice.IsDefault = dto.IsDefault
	choice.Active = dto.Active
	choice.ReductionSettings = dto.ReductionSettings

	rule := domain.NoQuantityRule()
	if dto.QuantityRule != nil {
		var err error
		if rule, err = domain.NewQuantityRule(*dto.QuantityRule); err != nil {
			return choice, err
		}
	}
	ruleJSON, err := json.Marshal(rule.Value())
	if err != nil {
		return choice, fmt.Errorf("failed to encode quantity rule: %w", err)
	}
	conditionsJSON, err := json.Marshal(dto.DisplayConditions.Compact())
	if err != nil {
		return choice, fmt.Errorf("failed to encode display conditions: %w", err)
	}
	choice.QuantityRule = datatypes.JSON(ruleJSON)
	choice.DisplayConditions = datatypes.JSON(conditionsJSON)
	return choice, nil
}

// Rebased reports whether references must be rewritten once ids are assigned
func (r *Reconciliation) Rebased() bool {
	return r.rebased
}

// IDMap maps each submitted id that was not kept as is to the id it was stored under.
// Call it after the graph has been saved.
func (r *Reconciliation) IDMap() map[string]int64 {
	out := make(map[string]int64)
	for key, idx := range r.stepKeys {
		id := r.Configurator.Steps[idx].ID
		if key != strconv.FormatInt(id, 10) {
			out[key] = id
		}
	}
	for key, idx := range r.choiceKeys {
		id := r.Configurator.Steps[idx.step].ProductChoices[idx.choice].ID
		if key != strconv.FormatInt(id, 10) {
			out[key] = id
		}
	}
	return out
}

// RewriteReferences points quantity sources and display conditions of a rebased graph at the
// newly assigned ids. References that are not part of the graph are left untouched.
func (r *Reconciliation) RewriteReferences() error {
	cfg := r.Configurator
	stepID := func(old int64) int64 {
		if idx, ok := r.stepRefs[old]; ok {
			return cfg.Steps[idx].ID
		}
		return old
	}
	choiceID := func(old int64) int64 {
		if idx, ok := r.choiceRefs[old]; ok {
			return cfg.Steps[idx.step].ProductChoices[idx.choice].ID
		}
		return old
	}

	for i := range cfg.Steps {
		for j := range cfg.Steps[i].ProductChoices {
			choice := &cfg.Steps[i].ProductChoices[j]

			var rule domain.QuantityRuleMap
			if err := json.Unmarshal(choice.QuantityRule, &rule); err != nil {
				return fmt.Errorf("failed to decode quantity rule of choice %d: %w", choice.ID, err)
			}
			for k := range rule.Sources {
				rule.Sources[k].Step = stepID(rule.Sources[k].Step)
			}
			ruleJSON, err := json.Marshal(rule)
			if err != nil {
				return fmt.Errorf("failed to encode quantity rule of choice %d: %w", choice.ID, err)
			}

			conditions := choice.Conditions()
			for g := range conditions {
				for c := range conditions[g] {
					conditions[g][c] = domain.DisplayCondition{
						Step:   stepID(conditions[g][c].Step),
						Choice: choiceID(conditions[g][c].Choice),
					}
				}
			}
			conditionsJSON, err := json.Marshal(conditions)
			if err != nil {
				return fmt.Errorf("failed to encode display conditions of choice %d: %w", choice.ID, err)
			}

			choice.QuantityRule = datatypes.JSON(ruleJSON)
			choice.DisplayConditions = datatypes.JSON(conditionsJSON)
		}
	}
	return nil
}
