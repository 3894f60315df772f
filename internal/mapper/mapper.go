package mapper

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/straye-as/product-configurator/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ToConfiguratorDTO converts a Configurator graph to ConfiguratorDTO.
// Steps are ordered by position and choices by their stored order.
func ToConfiguratorDTO(cfg *domain.Configurator) domain.ConfiguratorDTO {
	var id *int64
	if cfg.ID != 0 {
		v := cfg.ID
		id = &v
	}

	steps := make([]domain.Step, len(cfg.Steps))
	copy(steps, cfg.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Position < steps[j].Position
	})

	dto := domain.ConfiguratorDTO{
		ID:                id,
		Name:              cfg.Name,
		Description:       cfg.Description,
		Active:            cfg.Active,
		ReductionSettings: cfg.ReductionSettings,
		Steps:             make([]domain.StepDTO, 0, len(steps)),
	}
	for i := range steps {
		dto.Steps = append(dto.Steps, ToStepDTO(&steps[i]))
	}
	return dto
}

// ToStepDTO converts Step to StepDTO
func ToStepDTO(step *domain.Step) domain.StepDTO {
	choices := make([]domain.ProductChoice, len(step.ProductChoices))
	copy(choices, step.ProductChoices)
	sort.SliceStable(choices, func(i, j int) bool {
		return choices[i].Position < choices[j].Position
	})

	dto := domain.StepDTO{
		ID:                domain.PersistedID(step.ID),
		Label:             step.Label,
		Description:       step.Description,
		Position:          step.Position,
		Active:            step.Active,
		ReductionSettings: step.ReductionSettings,
		ProductChoices:    make([]domain.ProductChoiceDTO, 0, len(choices)),
	}
	for i := range choices {
		dto.ProductChoices = append(dto.ProductChoices, ToProductChoiceDTO(&choices[i]))
	}
	return dto
}

// ToProductChoiceDTO converts ProductChoice to ProductChoiceDTO, rebuilding its value objects
func ToProductChoiceDTO(choice *domain.ProductChoice) domain.ProductChoiceDTO {
	rule := choice.Rule().Value()
	return domain.ProductChoiceDTO{
		ID:                domain.PersistedID(choice.ID),
		Label:             choice.Label,
		Description:       choice.Description,
		ProductID:         choice.ProductID,
		IsDefault:         choice.IsDefault,
		Active:            choice.Active,
		ReductionSettings: choice.ReductionSettings,
		DisplayConditions: choice.Conditions(),
		QuantityRule:      &rule,
	}
}

// ToConfiguratorSummaryDTO converts Configurator to its list entry
func ToConfiguratorSummaryDTO(cfg *domain.Configurator) domain.ConfiguratorSummaryDTO {
	return domain.ConfiguratorSummaryDTO{
		ID:        cfg.ID,
		Name:      cfg.Name,
		Active:    cfg.Active,
		StepCount: len(cfg.Steps),
		UpdatedAt: cfg.UpdatedAt.Format(timeFormat),
	}
}

// ToPublicConfiguratorDTO converts a configurator to the shop read model.
// Inactive steps and choices are left out; prices are filled in by the caller.
func ToPublicConfiguratorDTO(dto *domain.ConfiguratorDTO) domain.PublicConfiguratorDTO {
	var id int64
	if dto.ID != nil {
		id = *dto.ID
	}
	out := domain.PublicConfiguratorDTO{
		ID:                id,
		Name:              dto.Name,
		Description:       dto.Description,
		ReductionSettings: dto.ReductionSettings,
		Steps:             []domain.PublicStepDTO{},
	}
	for _, step := range dto.Steps {
		if !step.Active {
			continue
		}
		publicStep := domain.PublicStepDTO{
			ID:             step.ID.ID,
			Label:          step.Label,
			Description:    step.Description,
			Position:       step.Position,
			ProductChoices: []domain.PublicChoiceDTO{},
		}
		for _, choice := range step.ProductChoices {
			if !choice.Active {
				continue
			}
			rule := domain.NoQuantityRule().Value()
			if choice.QuantityRule != nil {
				rule = *choice.QuantityRule
			}
			publicStep.ProductChoices = append(publicStep.ProductChoices, domain.PublicChoiceDTO{
				ID:                choice.ID.ID,
				Label:             choice.Label,
				Description:       choice.Description,
				ProductID:         choice.ProductID,
				IsDefault:         choice.IsDefault,
				DisplayConditions: choice.DisplayConditions,
				QuantityRule:      rule,
			})
		}
		out.Steps = append(out.Steps, publicStep)
	}
	return out
}

// ToSnapshotDTO converts ConfiguratorSnapshot to SnapshotDTO
func ToSnapshotDTO(snapshot *domain.ConfiguratorSnapshot) domain.SnapshotDTO {
	return domain.SnapshotDTO{
		ID:             snapshot.ID,
		ConfiguratorID: snapshot.ConfiguratorID,
		StorageKey:     snapshot.StorageKey,
		Checksum:       snapshot.Checksum,
		Size:           snapshot.Size,
		CreatedAt:      snapshot.CreatedAt.Format(timeFormat),
	}
}

// ToCartRuleDTO converts CartRule to CartRuleDTO
func ToCartRuleDTO(rule *domain.CartRule) domain.CartRuleDTO {
	dto := domain.CartRuleDTO{
		ID:           rule.ID,
		Code:         rule.Code,
		Name:         rule.Name,
		Amount:       rule.ReductionAmount,
		ReductionTax: rule.ReductionTax,
		Restrictions: make([]domain.CartRuleRestrictionDTO, 0, len(rule.Products)),
	}
	for _, p := range rule.Products {
		dto.Restrictions = append(dto.Restrictions, domain.CartRuleRestrictionDTO{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}
	return dto
}

// ToCartLineDTO converts CartLine to CartLineDTO; unit price is tax included
func ToCartLineDTO(line *domain.CartLine, unitPrice decimal.Decimal) domain.CartLineDTO {
	return domain.CartLineDTO{
		ID:             line.ID,
		ProductID:      line.ProductID,
		CombinationID:  line.CombinationID,
		Quantity:       line.Quantity,
		ConfiguratorID: line.ConfiguratorID,
		UnitPrice:      unitPrice,
		LineTotal:      unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
	}
}
