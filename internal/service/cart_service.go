package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/mapper"
	"github.com/straye-as/product-configurator/internal/repository"
	"go.uber.org/zap"
)

const timeFormat = "2006-01-02T15:04:05Z"

// CartService adds configurator selections to carts together with their discount rule
type CartService struct {
	store      *repository.Store
	applier    *QuantityRuleApplier
	resolver   *PriceResolverService
	formatter  *PriceFormatter
	codePrefix string
	logger     *zap.Logger
}

// NewCartService creates a new CartService instance
func NewCartService(
	store *repository.Store,
	applier *QuantityRuleApplier,
	resolver *PriceResolverService,
	formatter *PriceFormatter,
	codePrefix string,
	logger *zap.Logger,
) *CartService {
	if codePrefix == "" {
		codePrefix = DefaultDiscountCodePrefix
	}
	return &CartService{
		store:      store,
		applier:    applier,
		resolver:   resolver,
		formatter:  formatter,
		codePrefix: codePrefix,
		logger:     logger,
	}
}

// Create opens an empty cart in the shop currency
func (s *CartService) Create(ctx context.Context) (*domain.CartDTO, error) {
	cart := &domain.Cart{Currency: s.formatter.Currency()}
	if err := s.store.Carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.Info("Cart created", zap.String("cart_id", cart.ID.String()))
	return s.Get(ctx, cart.ID)
}

// Get returns a cart with its lines, its rules and totals. Rules whose product restrictions are
// no longer met by the lines are detached first.
func (s *CartService) Get(ctx context.Context, id uuid.UUID) (*domain.CartDTO, error) {
	cart, err := s.store.Carts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.store.CartRules.ListForCart(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart rules: %w", err)
	}
	catalog := NewCatalogService(s.store.Products, s.formatter)

	dto := &domain.CartDTO{
		ID:            cart.ID.String(),
		Currency:      cart.Currency,
		Lines:         make([]domain.CartLineDTO, 0, len(cart.Lines)),
		Rules:         make([]domain.CartRuleDTO, 0, len(rules)),
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		CreatedAt:     cart.CreatedAt.Format(timeFormat),
		UpdatedAt:     cart.UpdatedAt.Format(timeFormat),
	}

	held := make(map[int64]int)
	for i := range cart.Lines {
		line := &cart.Lines[i]
		held[line.ProductID] += line.Quantity

		unit := decimal.Zero
		snapshot, err := catalog.GetPricedProduct(ctx, line.ProductID, line.CombinationID)
		switch {
		case err == nil:
			unit = decimal.NewFromFloat(snapshot.PriceAmount)
		case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrCombinationNotFound):
			s.logger.Warn("Cart line refers to a product that is no longer sold",
				zap.String("cart_id", id.String()),
				zap.Int64("product_id", line.ProductID),
			)
		default:
			return nil, fmt.Errorf("failed to price cart line %d: %w", line.ID, err)
		}

		lineDTO := mapper.ToCartLineDTO(line, unit)
		dto.Lines = append(dto.Lines, lineDTO)
		dto.Subtotal = dto.Subtotal.Add(lineDTO.LineTotal)
	}

	for i := range rules {
		rule := &rules[i]
		if !restrictionsHold(rule, held) {
			if err := s.store.CartRules.Detach(ctx, id, rule.ID); err != nil {
				return nil, fmt.Errorf("failed to detach cart rule %s: %w", rule.Code, err)
			}
			s.logger.Info("Cart rule detached, restrictions no longer met",
				zap.String("cart_id", id.String()),
				zap.String("code", rule.Code),
			)
			continue
		}
		dto.Rules = append(dto.Rules, mapper.ToCartRuleDTO(rule))
		dto.DiscountTotal = dto.DiscountTotal.Add(rule.ReductionAmount)
	}

	dto.Total = decimal.Max(dto.Subtotal.Sub(dto.DiscountTotal), decimal.Zero)
	dto.FormattedTotal = s.formatter.FormatDecimal(dto.Total)
	return dto, nil
}

// unknownCombination reports a combination that does not belong to the product of a selection row
func unknownCombination(productID, combinationID int64, index int) error {
	return domain.NewConstraintError(domain.CartItemInvalidCombinationID,
		fmt.Sprintf("combination %d does not belong to product %d", combinationID, productID),
		"items", strconv.Itoa(index), "combinationId")
}

// selectionIndex maps each product choice to the position of its first selection row
func selectionIndex(items []domain.CartSelectionItem) map[int64]int {
	index := make(map[int64]int, len(items))
	for i, item := range items {
		if _, ok := index[item.ProductChoiceID]; !ok {
			index[item.ProductChoiceID] = i
		}
	}
	return index
}

// restrictionsHold reports whether held quantities cover every product restriction of rule
func restrictionsHold(rule *domain.CartRule, held map[int64]int) bool {
	if !rule.Active {
		return false
	}
	for _, p := range rule.Products {
		if held[p.ProductID] < p.Quantity {
			return false
		}
	}
	return true
}

// AddConfiguration resolves a selection, adds its products to the cart and attaches the matching
// discount rule. Everything runs in one transaction: any failure leaves the cart untouched.
func (s *CartService) AddConfiguration(ctx context.Context, cartID uuid.UUID, selection domain.CartSelection) (*domain.CartDTO, error) {
	itemIndex := selectionIndex(selection.Items)

	var discount *CartRuleResult
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Carts.GetByID(ctx, cartID); err != nil {
			return err
		}
		cfg, err := tx.Configurators.GetActiveByID(ctx, selection.ConfiguratorID)
		if err != nil {
			return err
		}
		dto := mapper.ToConfiguratorDTO(cfg)

		resolved, err := s.applier.ResolveSelection(&dto, selection.Items)
		if err != nil {
			return err
		}

		catalog := NewCatalogService(tx.Products, s.formatter)
		final := selectionOf(resolved)
		for _, item := range final {
			line, err := tx.Carts.FindLine(ctx, cartID, item.ProductID, item.CombinationID)
			if err != nil {
				return fmt.Errorf("failed to look up cart line: %w", err)
			}
			if line == nil {
				cfgID := cfg.ID
				line = &domain.CartLine{
					CartID:         cartID,
					ProductID:      item.ProductID,
					CombinationID:  item.CombinationID,
					ConfiguratorID: &cfgID,
				}
			}
			line.Quantity += item.Quantity

			available, err := catalog.IsAvailable(ctx, item.ProductID, item.CombinationID, line.Quantity)
			if err != nil {
				if errors.Is(err, domain.ErrCombinationNotFound) {
					return unknownCombination(item.ProductID, item.CombinationID, itemIndex[item.ProductChoiceID])
				}
				return fmt.Errorf("failed to check availability of product %d: %w", item.ProductID, err)
			}
			if !available {
				return domain.NewConstraintError(domain.CartItemProductUnavailable,
					fmt.Sprintf("product %d is not available in quantity %d", item.ProductID, line.Quantity),
					"items", strconv.Itoa(itemIndex[item.ProductChoiceID]), "productId")
			}

			if err := tx.Carts.SaveLine(ctx, line); err != nil {
				return fmt.Errorf("failed to save cart line: %w", err)
			}
		}

		if len(final) > 0 {
			applier := NewDiscountApplier(tx.Configurators, catalog, tx.CartRules, s.resolver, s.codePrefix, s.logger)
			discount, err = applier.Apply(ctx, cartID, domain.CartSelection{
				ConfiguratorID: cfg.ID,
				Items:          final,
			})
			if err != nil {
				return err
			}
		}
		return tx.Carts.Touch(ctx, cartID)
	})
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		s.logger.Error("Failed to add configuration to cart",
			zap.String("cart_id", cartID.String()),
			zap.Int64("configurator_id", selection.ConfiguratorID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to add configuration to cart: %w", err)
	}

	fields := []zap.Field{
		zap.String("cart_id", cartID.String()),
		zap.Int64("configurator_id", selection.ConfiguratorID),
	}
	if discount != nil && discount.Applied {
		fields = append(fields, zap.String("code", discount.Code))
	}
	s.logger.Info("Configuration added to cart", fields...)

	return s.Get(ctx, cartID)
}
