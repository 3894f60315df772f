package service

import (
	"github.com/shopspring/decimal"
	"github.com/straye-as/product-configurator/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// PriceResolverService reconciles configurator reductions with the platform's own product discount
type PriceResolverService struct {
	picker    *ReductionPickerService
	formatter *PriceFormatter
}

// NewPriceResolverService creates a new PriceResolverService instance
func NewPriceResolverService(picker *ReductionPickerService, formatter *PriceFormatter) *PriceResolverService {
	return &PriceResolverService{
		picker:    picker,
		formatter: formatter,
	}
}

// Resolve computes the effective price of a choice.
// Without snapshot the picked reduction is returned as is. With a snapshot the picked reduction is
// turned into a per-unit tax-included amount and only wins when it beats the platform's reduction;
// ReductionAmount is then the part granted on top of the platform price.
func (s *PriceResolverService) Resolve(choice, step, configurator domain.Reducible, snapshot *domain.PricedProduct) domain.PriceResolution {
	picked := s.picker.Pick(choice, step, configurator)

	if snapshot == nil {
		return domain.PriceResolution{
			Reduction:     picked.Reduction,
			ReductionType: picked.ReductionType,
			ReductionTax:  picked.ReductionTax,
			HasDiscount:   picked.HasDiscount,
			Source:        picked.Source,
		}
	}

	regular := decimal.NewFromFloat(snapshot.RegularPriceAmount)
	current := decimal.NewFromFloat(snapshot.PriceAmount)
	if regular.IsZero() {
		regular = current.Add(decimal.NewFromFloat(snapshot.Reduction))
	}
	platform := platformReduction(snapshot, regular)

	var module decimal.Decimal
	if picked.HasDiscount {
		module = unitReduction(picked.ReductionSettings, regular, decimal.NewFromFloat(snapshot.TaxRate))
		if module.GreaterThan(regular) {
			module = regular
		}
		module = s.formatter.Round(module)
	}

	if !picked.HasDiscount || module.LessThanOrEqual(platform) {
		return s.deferToPlatform(snapshot)
	}

	price := regular.Sub(module)
	return domain.PriceResolution{
		Reduction:          picked.Reduction,
		ReductionType:      picked.ReductionType,
		ReductionTax:       picked.ReductionTax,
		Price:              s.formatter.FormatDecimal(price),
		RegularPrice:       s.formatter.FormatDecimal(regular),
		HasDiscount:        true,
		PriceAmount:        s.formatter.Round(price).InexactFloat64(),
		RegularPriceAmount: s.formatter.Round(regular).InexactFloat64(),
		ReductionAmount:    s.formatter.Round(module.Sub(platform)).InexactFloat64(),
		Source:             picked.Source,
	}
}

func (s *PriceResolverService) deferToPlatform(snapshot *domain.PricedProduct) domain.PriceResolution {
	reductionType := snapshot.DiscountType
	if !reductionType.IsValid() {
		reductionType = domain.ReductionTypeAmount
	}
	reduction := snapshot.Reduction
	if reductionType == domain.ReductionTypePercentage && snapshot.DiscountPercentageAbsolute > 0 {
		reduction = snapshot.DiscountPercentageAbsolute
	}

	source := domain.ReductionSourceNone
	if snapshot.HasDiscount {
		source = domain.ReductionSourcePlatform
	}

	return domain.PriceResolution{
		Reduction:          reduction,
		ReductionType:      reductionType,
		ReductionTax:       snapshot.SpecificPrices.ReductionTax,
		Price:              snapshot.Price,
		RegularPrice:       snapshot.RegularPrice,
		HasDiscount:        snapshot.HasDiscount,
		PriceAmount:        snapshot.PriceAmount,
		RegularPriceAmount: snapshot.RegularPriceAmount,
		Source:             source,
	}
}

// platformReduction is the per-unit tax-included reduction the platform already grants
func platformReduction(snapshot *domain.PricedProduct, regular decimal.Decimal) decimal.Decimal {
	if !snapshot.HasDiscount {
		return decimal.Zero
	}
	if snapshot.Reduction > 0 {
		return decimal.NewFromFloat(snapshot.Reduction)
	}
	if snapshot.DiscountType == domain.ReductionTypePercentage {
		return regular.Mul(decimal.NewFromFloat(snapshot.DiscountPercentageAbsolute)).Div(hundred)
	}
	return decimal.Zero
}

// unitReduction converts reduction settings into a per-unit tax-included amount
func unitReduction(r domain.ReductionSettings, regular, taxRate decimal.Decimal) decimal.Decimal {
	value := decimal.NewFromFloat(r.Reduction)
	if r.ReductionType == domain.ReductionTypePercentage {
		return regular.Mul(value).Div(hundred)
	}
	if r.ReductionTax {
		return value
	}
	return value.Mul(hundred.Add(taxRate)).Div(hundred)
}
