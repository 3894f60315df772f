package service

import "github.com/straye-as/product-configurator/internal/domain"

// PickedReduction is the reduction chosen among the configurator levels
type PickedReduction struct {
	domain.ReductionSettings
	Source      domain.ReductionSource
	HasDiscount bool
}

// ReductionPickerService picks the most specific positive reduction
type ReductionPickerService struct{}

// NewReductionPickerService creates a new ReductionPickerService instance
func NewReductionPickerService() *ReductionPickerService {
	return &ReductionPickerService{}
}

// Pick returns the first of choice, step and configurator with a positive reduction.
// When none is positive the choice's own settings are returned without discount.
// step and configurator may be nil.
func (p *ReductionPickerService) Pick(choice, step, configurator domain.Reducible) PickedReduction {
	levels := []struct {
		source domain.ReductionSource
		value  domain.Reducible
	}{
		{domain.ReductionSourceChoice, choice},
		{domain.ReductionSourceStep, step},
		{domain.ReductionSourceConfigurator, configurator},
	}

	for _, level := range levels {
		if level.value == nil {
			continue
		}
		settings := level.value.Reductions()
		if settings.Reduction > 0 {
			return PickedReduction{ReductionSettings: normalizeReduction(settings), Source: level.source, HasDiscount: true}
		}
	}

	var own domain.ReductionSettings
	if choice != nil {
		own = choice.Reductions()
	}
	return PickedReduction{ReductionSettings: normalizeReduction(own), Source: domain.ReductionSourceNone}
}

func normalizeReduction(r domain.ReductionSettings) domain.ReductionSettings {
	if !r.ReductionType.IsValid() {
		r.ReductionType = domain.ReductionTypeAmount
	}
	return r
}
