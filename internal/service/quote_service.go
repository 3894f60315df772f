package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/mapper"
	"go.uber.org/zap"
)

// QuoteService serves configurators to shoppers and prices their selections without touching a cart
type QuoteService struct {
	configurators ConfiguratorReader
	catalog       ProductCatalog
	applier       *QuantityRuleApplier
	resolver      *PriceResolverService
	formatter     *PriceFormatter
	logger        *zap.Logger
}

// NewQuoteService creates a new QuoteService instance
func NewQuoteService(
	configurators ConfiguratorReader,
	catalog ProductCatalog,
	applier *QuantityRuleApplier,
	resolver *PriceResolverService,
	formatter *PriceFormatter,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		configurators: configurators,
		catalog:       catalog,
		applier:       applier,
		resolver:      resolver,
		formatter:     formatter,
		logger:        logger,
	}
}

// GetPublic returns an active configurator as shown in the shop, with a price per product choice.
// Choices whose product is gone from the catalog are listed without price.
func (s *QuoteService) GetPublic(ctx context.Context, id int64) (*domain.PublicConfiguratorDTO, error) {
	cfg, err := s.configurators.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToConfiguratorDTO(cfg)
	public := mapper.ToPublicConfiguratorDTO(&dto)
	graph := newConfiguratorGraph(&dto)

	for i := range public.Steps {
		step := &public.Steps[i]
		for j := range step.ProductChoices {
			choice := &step.ProductChoices[j]
			if choice.ProductID == nil {
				continue
			}

			snapshot, err := s.catalog.GetPricedProduct(ctx, *choice.ProductID, 0)
			if err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					s.logger.Warn("Product of a configurator choice is not in the catalog",
						zap.Int64("configurator_id", id),
						zap.Int64("choice_id", choice.ID),
						zap.Int64("product_id", *choice.ProductID),
					)
					continue
				}
				return nil, fmt.Errorf("failed to price product %d: %w", *choice.ProductID, err)
			}

			full, _ := graph.choice(step.ID, choice.ID)
			price := s.resolver.Resolve(*full, *graph.steps[step.ID], dto, snapshot)
			choice.Price = &price
		}
	}
	return &public, nil
}

// Quote resolves the visibility and quantities of a selection and prices every line.
// Line totals are at platform prices. The configurator discount is computed per product the
// same way the cart rule is, and reported on the first line of each product.
func (s *QuoteService) Quote(ctx context.Context, id int64, items []domain.CartSelectionItem) (*domain.QuoteDTO, error) {
	cfg, err := s.configurators.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToConfiguratorDTO(cfg)

	resolved, err := s.applier.ResolveSelection(&dto, items)
	if err != nil {
		return nil, err
	}
	graph := newConfiguratorGraph(&dto)
	itemIndex := selectionIndex(items)

	quote := &domain.QuoteDTO{
		ConfiguratorID:       id,
		Currency:             s.formatter.Currency(),
		Lines:                make([]domain.QuoteLineDTO, 0, len(resolved)),
		Subtotal:             decimal.Zero,
		ConfiguratorDiscount: decimal.Zero,
	}
	firstLine := make(map[int64]int)
	for _, item := range resolved {
		if item.ProductID == 0 {
			continue
		}

		snapshot, err := s.catalog.GetPricedProduct(ctx, item.ProductID, item.CombinationID)
		if err != nil {
			if errors.Is(err, domain.ErrCombinationNotFound) {
				return nil, unknownCombination(item.ProductID, item.CombinationID, itemIndex[item.ProductChoiceID])
			}
			return nil, err
		}
		choice, _ := graph.choice(item.StepID, item.ProductChoiceID)
		price := s.resolver.Resolve(*choice, *graph.steps[item.StepID], dto, snapshot)

		unit := decimal.NewFromFloat(snapshot.PriceAmount)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))

		if _, ok := firstLine[item.ProductID]; !ok {
			firstLine[item.ProductID] = len(quote.Lines)
		}
		quote.Lines = append(quote.Lines, domain.QuoteLineDTO{
			ResolvedItem:   item,
			Price:          price,
			UnitPrice:      unit,
			LineTotal:      lineTotal,
			LineDiscount:   decimal.Zero,
			FormattedTotal: s.formatter.FormatDecimal(lineTotal),
		})
		quote.Subtotal = quote.Subtotal.Add(lineTotal)
	}

	discounts, err := priceRequirements(ctx, s.catalog, s.resolver, &dto, aggregateRequirements(selectionOf(resolved)))
	if err != nil {
		return nil, err
	}
	for _, d := range discounts {
		line := &quote.Lines[firstLine[d.requirement.productID]]
		line.LineDiscount = d.amount
		line.FormattedTotal = s.formatter.FormatDecimal(line.LineTotal.Sub(d.amount))
		quote.ConfiguratorDiscount = quote.ConfiguratorDiscount.Add(d.amount)
	}

	quote.Total = decimal.Max(quote.Subtotal.Sub(quote.ConfiguratorDiscount), decimal.Zero)
	quote.FormattedSubtotal = s.formatter.FormatDecimal(quote.Subtotal)
	quote.FormattedDiscount = s.formatter.FormatDecimal(quote.ConfiguratorDiscount)
	quote.FormattedTotal = s.formatter.FormatDecimal(quote.Total)
	return quote, nil
}
