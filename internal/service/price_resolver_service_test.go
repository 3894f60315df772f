package service_test

import (
	"testing"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/service"
	"github.com/stretchr/testify/assert"
)

func amountOf(v float64, taxIncluded bool) domain.ReductionSettings {
	return domain.ReductionSettings{Reduction: v, ReductionType: domain.ReductionTypeAmount, ReductionTax: taxIncluded}
}

func TestReductionPicker_Priority(t *testing.T) {
	picker := service.NewReductionPickerService()

	tests := []struct {
		name         string
		choice       domain.ReductionSettings
		step         domain.ReductionSettings
		configurator domain.ReductionSettings
		wantSource   domain.ReductionSource
		wantValue    float64
	}{
		{"choice wins", percent(5), percent(10), percent(20), domain.ReductionSourceChoice, 5},
		{"step when choice has none", amount, amountOf(3, true), percent(20), domain.ReductionSourceStep, 3},
		{"configurator last", amount, amount, percent(20), domain.ReductionSourceConfigurator, 20},
		{"nothing positive", amount, amount, amount, domain.ReductionSourceNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picked := picker.Pick(tt.choice, tt.step, tt.configurator)
			assert.Equal(t, tt.wantSource, picked.Source)
			assert.Equal(t, tt.wantValue, picked.Reduction)
			assert.Equal(t, tt.wantSource != domain.ReductionSourceNone, picked.HasDiscount)
		})
	}
}

func TestReductionPicker_NilLevelsAndInvalidType(t *testing.T) {
	picker := service.NewReductionPickerService()

	picked := picker.Pick(domain.ReductionSettings{Reduction: 4}, nil, nil)
	assert.Equal(t, domain.ReductionSourceChoice, picked.Source)
	assert.Equal(t, domain.ReductionTypeAmount, picked.ReductionType, "unknown type is read as amount")

	picked = picker.Pick(amount, nil, percent(15))
	assert.Equal(t, domain.ReductionSourceConfigurator, picked.Source)
}

func snapshotOf(regular, taxRate float64) *domain.PricedProduct {
	return &domain.PricedProduct{
		ProductID:          1,
		Price:              "regular",
		RegularPrice:       "regular",
		PriceAmount:        regular,
		RegularPriceAmount: regular,
		DiscountType:       domain.ReductionTypeAmount,
		TaxRate:            taxRate,
	}
}

func withPlatformDiscount(p *domain.PricedProduct, reduction float64) *domain.PricedProduct {
	p.Reduction = reduction
	p.PriceAmount = p.RegularPriceAmount - reduction
	p.Price = "discounted"
	p.HasDiscount = true
	return p
}

func TestPriceResolver_WithoutSnapshot(t *testing.T) {
	resolver := newResolver(t)

	res := resolver.Resolve(percent(10), amount, amount, nil)
	assert.Equal(t, 10.0, res.Reduction)
	assert.Equal(t, domain.ReductionTypePercentage, res.ReductionType)
	assert.True(t, res.HasDiscount)
	assert.Equal(t, domain.ReductionSourceChoice, res.Source)
	assert.Zero(t, res.PriceAmount)
}

func TestPriceResolver_ModuleReduction(t *testing.T) {
	resolver := newResolver(t)

	t.Run("percentage of the regular price", func(t *testing.T) {
		res := resolver.Resolve(percent(10), amount, amount, snapshotOf(100, 20))
		assert.Equal(t, domain.ReductionSourceChoice, res.Source)
		assert.True(t, res.HasDiscount)
		assert.Equal(t, 90.0, res.PriceAmount)
		assert.Equal(t, 100.0, res.RegularPriceAmount)
		assert.Equal(t, 10.0, res.ReductionAmount)
		assert.NotEmpty(t, res.Price)
		assert.True(t, res.ModuleDiscount())
	})

	t.Run("tax excluded amount gets the tax added", func(t *testing.T) {
		res := resolver.Resolve(amount, amountOf(5, false), amount, snapshotOf(100, 20))
		assert.Equal(t, domain.ReductionSourceStep, res.Source)
		assert.Equal(t, 6.0, res.ReductionAmount)
		assert.Equal(t, 94.0, res.PriceAmount)
	})

	t.Run("tax included amount is used as is", func(t *testing.T) {
		res := resolver.Resolve(amount, amount, amountOf(5, true), snapshotOf(100, 20))
		assert.Equal(t, domain.ReductionSourceConfigurator, res.Source)
		assert.Equal(t, 5.0, res.ReductionAmount)
	})

	t.Run("reduction never exceeds the regular price", func(t *testing.T) {
		res := resolver.Resolve(amountOf(500, true), amount, amount, snapshotOf(40, 0))
		assert.Equal(t, 0.0, res.PriceAmount)
		assert.Equal(t, 40.0, res.ReductionAmount)
	})
}

func TestPriceResolver_PlatformDiscount(t *testing.T) {
	resolver := newResolver(t)

	t.Run("platform discount is kept when larger", func(t *testing.T) {
		snapshot := withPlatformDiscount(snapshotOf(100, 20), 15)
		res := resolver.Resolve(percent(10), amount, amount, snapshot)

		assert.Equal(t, domain.ReductionSourcePlatform, res.Source)
		assert.Equal(t, 85.0, res.PriceAmount)
		assert.Equal(t, "discounted", res.Price)
		assert.Equal(t, 15.0, res.Reduction)
		assert.False(t, res.ModuleDiscount())
	})

	t.Run("platform discount is kept when equal", func(t *testing.T) {
		snapshot := withPlatformDiscount(snapshotOf(100, 20), 10)
		res := resolver.Resolve(percent(10), amount, amount, snapshot)
		assert.Equal(t, domain.ReductionSourcePlatform, res.Source)
	})

	t.Run("module discount on top of a smaller platform discount", func(t *testing.T) {
		snapshot := withPlatformDiscount(snapshotOf(100, 20), 4)
		res := resolver.Resolve(percent(10), amount, amount, snapshot)

		assert.Equal(t, domain.ReductionSourceChoice, res.Source)
		assert.Equal(t, 90.0, res.PriceAmount)
		assert.Equal(t, 6.0, res.ReductionAmount, "only the part beyond the platform price is granted")
		assert.True(t, res.ModuleDiscount())
	})

	t.Run("platform percentage", func(t *testing.T) {
		snapshot := snapshotOf(200, 0)
		snapshot.HasDiscount = true
		snapshot.DiscountType = domain.ReductionTypePercentage
		snapshot.DiscountPercentageAbsolute = 25
		snapshot.PriceAmount = 150

		res := resolver.Resolve(amount, amount, amount, snapshot)
		assert.Equal(t, domain.ReductionSourcePlatform, res.Source)
		assert.Equal(t, domain.ReductionTypePercentage, res.ReductionType)
		assert.Equal(t, 25.0, res.Reduction)
		assert.Equal(t, 150.0, res.PriceAmount)
	})

	t.Run("no discount anywhere", func(t *testing.T) {
		res := resolver.Resolve(amount, amount, amount, snapshotOf(100, 20))
		assert.Equal(t, domain.ReductionSourceNone, res.Source)
		assert.False(t, res.HasDiscount)
		assert.Equal(t, 100.0, res.PriceAmount)
		assert.False(t, res.ModuleDiscount())
	})
}

func TestPriceFormatter(t *testing.T) {
	formatter := newFormatter(t)
	assert.Equal(t, "EUR", formatter.Currency())
	assert.NotEmpty(t, formatter.Format(12.5))

	yen, err := service.NewPriceFormatter("JPY", "ja")
	if assert.NoError(t, err) {
		assert.Equal(t, "JPY", yen.Currency())
	}

	_, err = service.NewPriceFormatter("nope", "en")
	assert.ErrorIs(t, err, service.ErrInvalidCurrency)

	_, err = service.NewPriceFormatter("EUR", "not a locale!")
	assert.Error(t, err)
}
