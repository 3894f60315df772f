package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_GetPricedProduct(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	t.Run("tax is added to the regular price", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, s.db, "Frame", "100", testutil.WithTaxRate("20"))

		priced, err := s.catalog.GetPricedProduct(ctx, product.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 120.0, priced.RegularPriceAmount)
		assert.Equal(t, 120.0, priced.PriceAmount)
		assert.False(t, priced.HasDiscount)
		assert.Equal(t, 20.0, priced.TaxRate)
		assert.NotEmpty(t, priced.Price)
	})

	t.Run("tax excluded platform amount", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, s.db, "Fork", "50",
			testutil.WithTaxRate("20"),
			testutil.WithPlatformReduction("10", domain.ReductionTypeAmount, false))

		priced, err := s.catalog.GetPricedProduct(ctx, product.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 60.0, priced.RegularPriceAmount)
		assert.Equal(t, 12.0, priced.Reduction)
		assert.Equal(t, 48.0, priced.PriceAmount)
		assert.True(t, priced.HasDiscount)
	})

	t.Run("platform percentage", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, s.db, "Saddle", "80",
			testutil.WithPlatformReduction("25", domain.ReductionTypePercentage, true))

		priced, err := s.catalog.GetPricedProduct(ctx, product.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 20.0, priced.Reduction)
		assert.Equal(t, 60.0, priced.PriceAmount)
		assert.Equal(t, 25.0, priced.DiscountPercentageAbsolute)
	})

	t.Run("combination price impact", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, s.db, "Wheel", "30")
		combination := &domain.ProductCombination{ProductID: product.ID, Name: "29 inch", PriceImpact: decimal.NewFromInt(5), Stock: 2}
		require.NoError(t, s.db.Create(combination).Error)

		priced, err := s.catalog.GetPricedProduct(ctx, product.ID, combination.ID)
		require.NoError(t, err)
		assert.Equal(t, 35.0, priced.PriceAmount)
		assert.Equal(t, combination.ID, priced.CombinationID)

		_, err = s.catalog.GetPricedProduct(ctx, product.ID, combination.ID+100)
		assert.True(t, errors.Is(err, domain.ErrCombinationNotFound))
	})

	t.Run("inactive and unknown products are not found", func(t *testing.T) {
		product := testutil.CreateTestProduct(t, s.db, "Retired", "10")
		require.NoError(t, s.db.Model(product).Update("active", false).Error)

		_, err := s.catalog.GetPricedProduct(ctx, product.ID, 0)
		assert.True(t, errors.Is(err, domain.ErrProductNotFound))

		_, err = s.catalog.GetPricedProduct(ctx, 99999, 0)
		assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	})
}

func TestCatalogService_IsAvailable(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	product := testutil.CreateTestProduct(t, s.db, "Bell", "5", testutil.WithStock(3))

	ok, err := s.catalog.IsAvailable(ctx, product.ID, 0, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.catalog.IsAvailable(ctx, product.ID, 0, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.catalog.IsAvailable(ctx, 424242, 0, 1)
	require.NoError(t, err)
	assert.False(t, ok, "unknown products are unavailable")

	_, err = s.catalog.IsAvailable(ctx, product.ID, 777, 1)
	assert.True(t, errors.Is(err, domain.ErrCombinationNotFound))
}
