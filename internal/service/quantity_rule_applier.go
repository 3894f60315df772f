package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/straye-as/product-configurator/internal/domain"
)

// QuantityRuleApplier turns quantity rules into cart quantities
type QuantityRuleApplier struct{}

// NewQuantityRuleApplier creates a new QuantityRuleApplier instance
func NewQuantityRuleApplier() *QuantityRuleApplier {
	return &QuantityRuleApplier{}
}

// ResolveQuantity evaluates rule against the quantities already chosen per step.
// The result never drops below fallback.
func (a *QuantityRuleApplier) ResolveQuantity(rule domain.QuantityRule, quantitiesByStepID map[int64]float64, fallback int) int {
	var value float64
	switch rule.Mode() {
	case domain.QuantityModeFixed:
		value = float64(rule.Offset())
	case domain.QuantityModeExpression:
		value = float64(rule.Offset())
		for _, src := range rule.Sources() {
			value += src.Coeff * quantitiesByStepID[src.Step]
		}
	default:
		return fallback
	}

	qty := roundQuantity(value, rule.Round())
	if min := rule.Min(); min != nil && qty < *min {
		qty = *min
	}
	if max := rule.Max(); max != nil && qty > *max {
		qty = *max
	}

	if qty < fallback {
		return fallback
	}
	return qty
}

// roundQuantity rounds value and saturates it to the int range
func roundQuantity(value float64, mode domain.RoundingMode) int {
	switch mode {
	case domain.RoundingFloor:
		value = math.Floor(value)
	case domain.RoundingCeil:
		value = math.Ceil(value)
	case domain.RoundingRound:
		value = math.Round(value)
	default:
		value = math.Trunc(value)
	}

	switch {
	case math.IsNaN(value):
		return 0
	case value >= math.MaxInt:
		return math.MaxInt
	case value <= math.MinInt:
		return math.MinInt
	}
	return int(value)
}

// ResolveSelection walks the selection in step order, checks that every selected choice is
// active and displayed for what was selected before it, and resolves each quantity.
// Items whose quantity resolves to 0 are left out of the result.
func (a *QuantityRuleApplier) ResolveSelection(cfg *domain.ConfiguratorDTO, items []domain.CartSelectionItem) ([]domain.ResolvedItem, error) {
	graph := newConfiguratorGraph(cfg)

	type pending struct {
		index  int
		item   domain.CartSelectionItem
		step   *domain.StepDTO
		choice *domain.ProductChoiceDTO
	}

	seen := make(map[int64]bool, len(items))
	queue := make([]pending, 0, len(items))
	for i, item := range items {
		prefix := []string{"items", strconv.Itoa(i)}

		step, ok := graph.steps[item.StepID]
		if !ok {
			return nil, domain.NewConstraintError(domain.CartItemInvalidStepID,
				fmt.Sprintf("step %d does not belong to this configurator", item.StepID), append(prefix, "stepId")...)
		}
		if !step.Active {
			return nil, domain.NewConstraintError(domain.CartItemInvalidStepID,
				fmt.Sprintf("step %d is not active", item.StepID), append(prefix, "stepId")...)
		}
		choice, ok := graph.choice(item.StepID, item.ProductChoiceID)
		if !ok || !choice.Active {
			return nil, domain.NewConstraintError(domain.CartItemInvalidChoiceID,
				fmt.Sprintf("choice %d is not available in step %d", item.ProductChoiceID, item.StepID), append(prefix, "productChoiceId")...)
		}
		if seen[item.ProductChoiceID] {
			return nil, domain.NewConstraintError(domain.CartItemInvalidChoiceID,
				fmt.Sprintf("choice %d is selected more than once", item.ProductChoiceID), append(prefix, "productChoiceId")...)
		}
		seen[item.ProductChoiceID] = true

		if item.ProductID != 0 && (choice.ProductID == nil || *choice.ProductID != item.ProductID) {
			return nil, domain.NewConstraintError(domain.CartItemInvalidProductID,
				fmt.Sprintf("product %d is not bound to choice %d", item.ProductID, item.ProductChoiceID), append(prefix, "productId")...)
		}
		if item.CombinationID != 0 && choice.ProductID == nil {
			return nil, domain.NewConstraintError(domain.CartItemInvalidCombinationID,
				"a combination was given for a choice without product", append(prefix, "combinationId")...)
		}
		if item.Quantity < 0 || item.Quantity > domain.MaxQuantity {
			return nil, domain.NewConstraintError(domain.CartItemInvalidQuantity,
				fmt.Sprintf("quantity must be between 0 and %d", domain.MaxQuantity), append(prefix, "quantity")...)
		}

		queue = append(queue, pending{index: i, item: item, step: step, choice: choice})
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].step.Position < queue[j].step.Position
	})

	selected := make(map[int64]map[int64]bool)
	isSelected := func(stepID, choiceID int64) bool {
		return selected[stepID][choiceID]
	}
	quantities := make(map[int64]float64)

	resolved := make([]domain.ResolvedItem, 0, len(queue))
	for _, p := range queue {
		prefix := []string{"items", strconv.Itoa(p.index)}

		if !p.choice.DisplayConditions.Visible(isSelected) {
			return nil, domain.NewConstraintError(domain.CartItemInvalidChoiceID,
				fmt.Sprintf("choice %d is not displayed for the current selection", p.item.ProductChoiceID), append(prefix, "productChoiceId")...)
		}

		rule, err := choiceRule(p.choice)
		if err != nil {
			return nil, fmt.Errorf("choice %d has an unreadable quantity rule: %w", p.item.ProductChoiceID, err)
		}

		fallback := p.item.Quantity
		switch {
		case rule.Mode() == domain.QuantityModeNone:
			if fallback == 0 {
				fallback = 1
			}
		case rule.Locked():
			fallback = 0
		default:
			if max := rule.Max(); max != nil && fallback > *max {
				return nil, domain.NewConstraintError(domain.CartItemInvalidQuantity,
					fmt.Sprintf("quantity must be at most %d", *max), append(prefix, "quantity")...)
			}
		}

		qty := a.ResolveQuantity(rule, quantities, fallback)
		if qty > domain.MaxQuantity {
			return nil, domain.NewConstraintError(domain.CartItemInvalidQuantity,
				fmt.Sprintf("resolved quantity must be at most %d", domain.MaxQuantity), append(prefix, "quantity")...)
		}

		if selected[p.step.ID.ID] == nil {
			selected[p.step.ID.ID] = make(map[int64]bool)
		}
		selected[p.step.ID.ID][p.item.ProductChoiceID] = true
		quantities[p.step.ID.ID] += float64(qty)

		if qty <= 0 {
			continue
		}
		var productID int64
		if p.choice.ProductID != nil {
			productID = *p.choice.ProductID
		}
		resolved = append(resolved, domain.ResolvedItem{
			StepID:          p.step.ID.ID,
			ProductChoiceID: p.item.ProductChoiceID,
			ProductID:       productID,
			CombinationID:   p.item.CombinationID,
			Quantity:        qty,
		})
	}
	return resolved, nil
}

// choiceRule rebuilds the quantity rule of a choice DTO; a missing rule governs nothing
func choiceRule(choice *domain.ProductChoiceDTO) (domain.QuantityRule, error) {
	if choice.QuantityRule == nil {
		return domain.NoQuantityRule(), nil
	}
	return domain.NewQuantityRule(*choice.QuantityRule)
}

// configuratorGraph indexes the persisted steps and choices of a configurator DTO
type configuratorGraph struct {
	steps   map[int64]*domain.StepDTO
	choices map[int64]map[int64]*domain.ProductChoiceDTO
}

func newConfiguratorGraph(cfg *domain.ConfiguratorDTO) *configuratorGraph {
	g := &configuratorGraph{
		steps:   make(map[int64]*domain.StepDTO),
		choices: make(map[int64]map[int64]*domain.ProductChoiceDTO),
	}
	for i := range cfg.Steps {
		step := &cfg.Steps[i]
		if !step.ID.IsPersisted() {
			continue
		}
		g.steps[step.ID.ID] = step
		byID := make(map[int64]*domain.ProductChoiceDTO, len(step.ProductChoices))
		for j := range step.ProductChoices {
			choice := &step.ProductChoices[j]
			if choice.ID.IsPersisted() {
				byID[choice.ID.ID] = choice
			}
		}
		g.choices[step.ID.ID] = byID
	}
	return g
}

func (g *configuratorGraph) choice(stepID, choiceID int64) (*domain.ProductChoiceDTO, bool) {
	c, ok := g.choices[stepID][choiceID]
	return c, ok
}
