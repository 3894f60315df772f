package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/straye-as/product-configurator/internal/domain"
)

// ConfiguratorValidatorService checks a submitted configurator graph before anything is written.
// It stops at the first violation and reports it as a *domain.ConstraintError.
type ConfiguratorValidatorService struct{}

// NewConfiguratorValidatorService creates a new ConfiguratorValidatorService instance
func NewConfiguratorValidatorService() *ConfiguratorValidatorService {
	return &ConfiguratorValidatorService{}
}

// Validate returns nil when the graph is consistent
func (v *ConfiguratorValidatorService) Validate(dto *domain.ConfiguratorDTO) error {
	if strings.TrimSpace(dto.Name) == "" {
		return domain.NewConstraintError(domain.ConfiguratorInvalidName, "name must not be empty", "name")
	}

	if len(dto.Steps) == 0 {
		return domain.NewConstraintError(domain.ConfiguratorInvalidSteps, "a configurator needs at least one step", "steps")
	}
	if err := validatePositions(dto.Steps); err != nil {
		return err
	}

	if err := validateReduction(dto.ReductionSettings,
		domain.ConfiguratorInvalidReductionType, domain.ConfiguratorInvalidReduction); err != nil {
		return err
	}

	positions := make(map[int64]int, len(dto.Steps))
	choicesByStep := make(map[int64]map[int64]bool, len(dto.Steps))
	for _, step := range dto.Steps {
		if !step.ID.IsPersisted() {
			continue
		}
		positions[step.ID.ID] = step.Position
		ids := make(map[int64]bool, len(step.ProductChoices))
		for _, choice := range step.ProductChoices {
			if choice.ID.IsPersisted() {
				ids[choice.ID.ID] = true
			}
		}
		choicesByStep[step.ID.ID] = ids
	}

	for i := range dto.Steps {
		step := &dto.Steps[i]
		stepPath := []string{"steps", nodeKey(step.Label, i)}
		if err := v.validateStep(step, stepPath); err != nil {
			return err
		}

		for j := range step.ProductChoices {
			choice := &step.ProductChoices[j]
			choicePath := append(append([]string{}, stepPath...), "productChoices", nodeKey(choice.Label, j))
			if err := v.validateChoice(choice, step.Position, positions, choicesByStep, choicePath); err != nil {
				return err
			}
		}
	}
	return nil
}

// validatePositions checks that the sorted positions are exactly 0..n-1
func validatePositions(steps []domain.StepDTO) error {
	order := make([]int, len(steps))
	for i := range steps {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return steps[order[a]].Position < steps[order[b]].Position
	})
	for expected, idx := range order {
		if steps[idx].Position != expected {
			return domain.NewConstraintError(domain.StepInvalidPosition,
				fmt.Sprintf("step positions must be 0 to %d without gaps or duplicates", len(steps)-1),
				"steps", nodeKey(steps[idx].Label, idx), "position")
		}
	}
	return nil
}

func (v *ConfiguratorValidatorService) validateStep(step *domain.StepDTO, path []string) error {
	if strings.TrimSpace(step.Label) == "" {
		return domain.NewConstraintError(domain.StepInvalidLabel, "label must not be empty", withField(path, "label")...)
	}
	if step.Position < 0 {
		return domain.NewConstraintError(domain.StepInvalidPosition, "position must not be negative", withField(path, "position")...)
	}
	if len(step.ProductChoices) == 0 {
		return domain.NewConstraintError(domain.StepInvalidProductChoices, "a step needs at least one product choice", withField(path, "productChoices")...)
	}

	defaults := 0
	for _, choice := range step.ProductChoices {
		if choice.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return domain.NewConstraintError(domain.ChoiceInvalidIsDefault, "at most one product choice can be the default", withField(path, "productChoices")...)
	}

	if err := validateReduction(step.ReductionSettings, domain.StepInvalidReductionType, domain.StepInvalidReduction); err != nil {
		return err.(*domain.ConstraintError).WithPrefix(path...)
	}
	return nil
}

func (v *ConfiguratorValidatorService) validateChoice(
	choice *domain.ProductChoiceDTO,
	stepPosition int,
	positions map[int64]int,
	choicesByStep map[int64]map[int64]bool,
	path []string,
) error {
	if strings.TrimSpace(choice.Label) == "" {
		return domain.NewConstraintError(domain.ChoiceInvalidLabel, "label must not be empty", withField(path, "label")...)
	}
	if choice.ProductID != nil && *choice.ProductID <= 0 {
		return domain.NewConstraintError(domain.ChoiceInvalidProduct, "product id must be a positive integer", withField(path, "productId")...)
	}
	if err := validateReduction(choice.ReductionSettings, domain.ChoiceInvalidReductionType, domain.ChoiceInvalidReduction); err != nil {
		return err.(*domain.ConstraintError).WithPrefix(path...)
	}

	if choice.QuantityRule == nil {
		return domain.NewConstraintError(domain.ChoiceInvalidQuantityRule, "quantity rule is required", withField(path, "quantityRule")...)
	}
	rule, err := domain.NewQuantityRule(*choice.QuantityRule)
	if err != nil {
		if ce, ok := err.(*domain.ConstraintError); ok {
			return ce.WithPrefix(path...)
		}
		return err
	}
	if err := validateModeTable(rule); err != nil {
		return err.WithPrefix(path...)
	}
	if choice.ProductID != nil && rule.Mode() == domain.QuantityModeNone {
		return domain.NewConstraintError(domain.ChoiceInvalidQuantityRuleMode,
			"a choice bound to a product needs a quantity rule other than none", withField(path, "quantityRule", "mode")...)
	}

	seen := make(map[int64]bool)
	for i, src := range rule.Sources() {
		srcPath := withField(path, "quantityRule", "sources", strconv.Itoa(i), "step")
		pos, ok := positions[src.Step]
		if !ok {
			return domain.NewConstraintError(domain.ChoiceInvalidQuantityRuleSources,
				fmt.Sprintf("source step %d does not exist", src.Step), srcPath...)
		}
		if pos >= stepPosition {
			return domain.NewConstraintError(domain.ChoiceInvalidQuantityRuleSources,
				fmt.Sprintf("source step %d must come before this step", src.Step), srcPath...)
		}
		if seen[src.Step] {
			return domain.NewConstraintError(domain.ChoiceInvalidQuantityRuleSources,
				fmt.Sprintf("source step %d is used more than once", src.Step), srcPath...)
		}
		seen[src.Step] = true
	}

	for g, group := range choice.DisplayConditions {
		for c, cond := range group {
			condPath := withField(path, "displayConditions", strconv.Itoa(g), strconv.Itoa(c))
			if cond.Step <= 0 {
				return domain.NewConstraintError(domain.ChoiceInvalidDisplayConditionStep,
					"condition step must be a positive integer", append(condPath, "step")...)
			}
			pos, ok := positions[cond.Step]
			if !ok {
				return domain.NewConstraintError(domain.ChoiceInvalidDisplayConditionStep,
					fmt.Sprintf("condition step %d does not exist", cond.Step), append(condPath, "step")...)
			}
			if pos >= stepPosition {
				return domain.NewConstraintError(domain.ChoiceInvalidDisplayConditionStep,
					fmt.Sprintf("condition step %d must come before this step", cond.Step), append(condPath, "step")...)
			}
			if cond.Choice <= 0 {
				return domain.NewConstraintError(domain.ChoiceInvalidDisplayConditionChoice,
					"condition choice must be a positive integer", append(condPath, "choice")...)
			}
			if !choicesByStep[cond.Step][cond.Choice] {
				return domain.NewConstraintError(domain.ChoiceInvalidDisplayConditionChoice,
					fmt.Sprintf("choice %d does not exist in step %d", cond.Choice, cond.Step), append(condPath, "choice")...)
			}
		}
	}
	return nil
}

// validateModeTable checks the per-mode constraints on locked, offset, bounds, sources and rounding
func validateModeTable(rule domain.QuantityRule) *domain.ConstraintError {
	fail := func(kind domain.ConstraintKind, field, message string) *domain.ConstraintError {
		return domain.NewConstraintError(kind, message, "quantityRule", field)
	}
	min, max := rule.Min(), rule.Max()
	hasSources := len(rule.Sources()) > 0

	switch rule.Mode() {
	case domain.QuantityModeNone:
		switch {
		case !rule.Locked():
			return fail(domain.ChoiceInvalidQuantityRuleLocked, "locked", "a rule without quantity mode must be locked")
		case rule.Offset() != 0:
			return fail(domain.ChoiceInvalidQuantityRuleOffset, "offset", "offset must be 0 when mode is none")
		case min != nil:
			return fail(domain.ChoiceInvalidQuantityRuleMin, "min", "min is not allowed when mode is none")
		case max != nil:
			return fail(domain.ChoiceInvalidQuantityRuleMax, "max", "max is not allowed when mode is none")
		case hasSources:
			return fail(domain.ChoiceInvalidQuantityRuleSources, "sources", "sources are not allowed when mode is none")
		}

	case domain.QuantityModeFixed:
		switch {
		case hasSources:
			return fail(domain.ChoiceInvalidQuantityRuleSources, "sources", "sources are only allowed in expression mode")
		case rule.Locked() && rule.Offset() < 1:
			return fail(domain.ChoiceInvalidQuantityRuleOffset, "offset", "a locked fixed quantity must be at least 1")
		case rule.Locked() && min != nil:
			return fail(domain.ChoiceInvalidQuantityRuleMin, "min", "min is only allowed when the quantity is not locked")
		case rule.Locked() && max != nil:
			return fail(domain.ChoiceInvalidQuantityRuleMax, "max", "max is only allowed when the quantity is not locked")
		case min != nil && *min < 1:
			return fail(domain.ChoiceInvalidQuantityRuleMin, "min", "min must be at least 1")
		case max != nil && *max < 1:
			return fail(domain.ChoiceInvalidQuantityRuleMax, "max", "max must be at least 1")
		}

	case domain.QuantityModeExpression:
		switch {
		case !rule.Locked():
			return fail(domain.ChoiceInvalidQuantityRuleLocked, "locked", "an expression quantity must be locked")
		case min != nil:
			return fail(domain.ChoiceInvalidQuantityRuleMin, "min", "min is not allowed in expression mode")
		case max != nil:
			return fail(domain.ChoiceInvalidQuantityRuleMax, "max", "max is not allowed in expression mode")
		case !hasSources:
			return fail(domain.ChoiceInvalidQuantityRuleSources, "sources", "an expression needs at least one source")
		}
	}

	if rule.Mode() != domain.QuantityModeExpression && rule.Round() != domain.RoundingNone {
		return fail(domain.ChoiceInvalidQuantityRuleRound, "round", "rounding is only allowed in expression mode")
	}
	return nil
}

// validateReduction checks the reduction type token and its range
func validateReduction(r domain.ReductionSettings, typeKind, rangeKind domain.ConstraintKind) error {
	if !r.ReductionType.IsValid() {
		return domain.NewConstraintError(typeKind,
			fmt.Sprintf("reduction type must be %q or %q", domain.ReductionTypeAmount, domain.ReductionTypePercentage), "reductionType")
	}
	if r.Reduction < 0 {
		return domain.NewConstraintError(rangeKind, "reduction must not be negative", "reduction")
	}
	if r.ReductionType == domain.ReductionTypePercentage && r.Reduction > 100 {
		return domain.NewConstraintError(rangeKind, "a percentage reduction must be between 0 and 100", "reduction")
	}
	return nil
}

// nodeKey names a step or choice in an error path by its label, or by its index when unlabeled
func nodeKey(label string, index int) string {
	if l := strings.TrimSpace(label); l != "" {
		return l
	}
	return "#" + strconv.Itoa(index)
}

func withField(path []string, fields ...string) []string {
	out := make([]string, 0, len(path)+len(fields))
	out = append(out, path...)
	return append(out, fields...)
}
