package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/repository"
)

// CatalogService serves the reference product table as the host ProductCatalog
type CatalogService struct {
	products  *repository.ProductRepository
	formatter *PriceFormatter
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(products *repository.ProductRepository, formatter *PriceFormatter) *CatalogService {
	return &CatalogService{
		products:  products,
		formatter: formatter,
	}
}

// GetPricedProduct builds the tax-included price view of a product or one of its combinations
func (s *CatalogService) GetPricedProduct(ctx context.Context, productID, combinationID int64) (*domain.PricedProduct, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, domain.NewNotFoundError(domain.NotFoundProduct, productID)
	}

	base := product.Price
	if combinationID != 0 {
		combination, err := s.products.GetCombination(ctx, productID, combinationID)
		if err != nil {
			return nil, err
		}
		base = base.Add(combination.PriceImpact)
	}

	taxFactor := hundred.Add(product.TaxRate).Div(hundred)
	regular := s.formatter.Round(base.Mul(taxFactor))

	var reduction decimal.Decimal
	var percentage float64
	switch product.ReductionType {
	case domain.ReductionTypePercentage:
		percentage = product.Reduction.InexactFloat64()
		reduction = regular.Mul(product.Reduction).Div(hundred)
	default:
		reduction = product.Reduction
		if !product.ReductionTax {
			reduction = reduction.Mul(taxFactor)
		}
	}
	reduction = s.formatter.Round(decimal.Min(reduction, regular))
	price := regular.Sub(reduction)

	return &domain.PricedProduct{
		ProductID:                  productID,
		CombinationID:              combinationID,
		Price:                      s.formatter.FormatDecimal(price),
		RegularPrice:               s.formatter.FormatDecimal(regular),
		PriceAmount:                price.InexactFloat64(),
		RegularPriceAmount:         regular.InexactFloat64(),
		Reduction:                  reduction.InexactFloat64(),
		DiscountType:               product.ReductionType,
		DiscountPercentageAbsolute: percentage,
		HasDiscount:                reduction.IsPositive(),
		TaxRate:                    product.TaxRate.InexactFloat64(),
		SpecificPrices:             domain.SpecificPrices{ReductionTax: product.ReductionTax},
	}, nil
}

// IsAvailable checks the stock of the product or combination.
// Unknown or inactive products are unavailable; an unknown combination of an existing product
// is reported as ErrCombinationNotFound.
func (s *CatalogService) IsAvailable(ctx context.Context, productID, combinationID int64, qty int) (bool, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return false, nil
		}
		return false, err
	}
	if !product.Active {
		return false, nil
	}
	if combinationID == 0 {
		return product.Stock >= qty, nil
	}
	combination, err := s.products.GetCombination(ctx, productID, combinationID)
	if err != nil {
		return false, err
	}
	return combination.Stock >= qty, nil
}
