package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/straye-as/product-configurator/internal/mapper"
	"go.uber.org/zap"
)

// DefaultDiscountCodePrefix marks cart rules generated by configurators
const DefaultDiscountCodePrefix = "WIZ"

// CartRuleResult describes the rule produced for a cart selection
type CartRuleResult struct {
	Code    string
	Amount  decimal.Decimal
	Rule    *domain.CartRule
	Applied bool
}

// DiscountApplier turns the configured reductions of a cart selection into one cart rule
type DiscountApplier struct {
	configurators ConfiguratorReader
	catalog       ProductCatalog
	rules         CartRuleStore
	resolver      *PriceResolverService
	prefix        string
	logger        *zap.Logger
}

// NewDiscountApplier creates a new DiscountApplier instance
func NewDiscountApplier(
	configurators ConfiguratorReader,
	catalog ProductCatalog,
	rules CartRuleStore,
	resolver *PriceResolverService,
	prefix string,
	logger *zap.Logger,
) *DiscountApplier {
	if prefix == "" {
		prefix = DefaultDiscountCodePrefix
	}
	return &DiscountApplier{
		configurators: configurators,
		catalog:       catalog,
		rules:         rules,
		resolver:      resolver,
		prefix:        prefix,
		logger:        logger,
	}
}

// productRequirement is the aggregated quantity of one product and the first selection row naming it
type productRequirement struct {
	productID int64
	quantity  int
	row       domain.CartSelectionItem
}

// Apply replaces the configurator rules of a cart with the rule matching selection.
// Item quantities are taken as final. Re-applying the same selection, in any order, reuses
// the same rule code.
func (a *DiscountApplier) Apply(ctx context.Context, cartID uuid.UUID, selection domain.CartSelection) (*CartRuleResult, error) {
	if err := a.rules.DetachByCodePrefix(ctx, cartID, a.prefix+"-"); err != nil {
		return nil, fmt.Errorf("failed to detach configurator rules: %w", err)
	}

	cfg, err := a.configurators.GetActiveByID(ctx, selection.ConfiguratorID)
	if err != nil {
		return nil, err
	}

	requirements := aggregateRequirements(selection.Items)
	code := a.code(cfg.ID, requirements)
	result := &CartRuleResult{Code: code, Amount: decimal.Zero}

	rule, err := a.rules.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cart rule %s: %w", code, err)
	}
	if rule == nil {
		cfgID := cfg.ID
		rule = &domain.CartRule{
			Code:           code,
			Name:           cfg.Name,
			ConfiguratorID: &cfgID,
			ReductionTax:   true,
			Active:         true,
		}
	}

	dto := mapper.ToConfiguratorDTO(cfg)
	discounts, err := priceRequirements(ctx, a.catalog, a.resolver, &dto, requirements)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	restrictions := make([]domain.CartRuleProduct, 0, len(discounts))
	for _, d := range discounts {
		total = total.Add(d.amount)
		restrictions = append(restrictions, domain.CartRuleProduct{ProductID: d.requirement.productID, Quantity: d.requirement.quantity})
	}

	if !total.IsPositive() {
		if rule.ID != 0 {
			if err := a.deleteIfUnused(ctx, rule); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	rule.ReductionAmount = total
	rule.Products = restrictions
	if err := a.rules.Save(ctx, rule); err != nil {
		a.logger.Error("Failed to save cart rule", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to save cart rule: %w", err)
	}
	if err := a.rules.Attach(ctx, cartID, rule.ID); err != nil {
		return nil, fmt.Errorf("failed to attach cart rule: %w", err)
	}

	a.logger.Info("Applied configurator discount",
		zap.String("cart_id", cartID.String()),
		zap.Int64("configurator_id", cfg.ID),
		zap.String("code", code),
		zap.String("amount", total.String()))

	result.Amount = total
	result.Rule = rule
	result.Applied = true
	return result, nil
}

func (a *DiscountApplier) deleteIfUnused(ctx context.Context, rule *domain.CartRule) error {
	count, err := a.rules.CountAttachments(ctx, rule.ID)
	if err != nil {
		return fmt.Errorf("failed to count cart rule attachments: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := a.rules.Delete(ctx, rule.ID); err != nil {
		return fmt.Errorf("failed to delete cart rule: %w", err)
	}
	return nil
}

// SelectionCode returns the rule code of a selection. It only depends on the aggregated
// quantity per product, so the order of the items does not matter.
func (a *DiscountApplier) SelectionCode(configuratorID int64, items []domain.CartSelectionItem) string {
	return a.code(configuratorID, aggregateRequirements(items))
}

// code builds "<prefix>-<configuratorId>-<hash>" from requirements sorted by product id
func (a *DiscountApplier) code(configuratorID int64, requirements []productRequirement) string {
	parts := make([]string, 0, len(requirements))
	for _, req := range requirements {
		parts = append(parts, strconv.FormatInt(req.productID, 10)+":"+strconv.Itoa(req.quantity))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return fmt.Sprintf("%s-%d-%s", a.prefix, configuratorID, hex.EncodeToString(sum[:])[:16])
}

// productDiscount is the configurator reduction granted on one aggregated product
type productDiscount struct {
	requirement productRequirement
	amount      decimal.Decimal
}

// priceRequirements prices every aggregated product through the step and choice of its first
// selection row. Products where no module discount applies are left out.
func priceRequirements(
	ctx context.Context,
	catalog ProductCatalog,
	resolver *PriceResolverService,
	cfg *domain.ConfiguratorDTO,
	requirements []productRequirement,
) ([]productDiscount, error) {
	graph := newConfiguratorGraph(cfg)

	discounts := make([]productDiscount, 0, len(requirements))
	for _, req := range requirements {
		step, ok := graph.steps[req.row.StepID]
		if !ok {
			return nil, domain.NewNotFoundError(domain.NotFoundStep, req.row.StepID)
		}
		choice, ok := graph.choice(req.row.StepID, req.row.ProductChoiceID)
		if !ok {
			return nil, domain.NewNotFoundError(domain.NotFoundProductChoice, req.row.ProductChoiceID)
		}

		snapshot, err := catalog.GetPricedProduct(ctx, req.productID, req.row.CombinationID)
		if err != nil {
			return nil, fmt.Errorf("failed to price product %d: %w", req.productID, err)
		}

		price := resolver.Resolve(*choice, *step, *cfg, snapshot)
		if !price.ModuleDiscount() {
			continue
		}
		discounts = append(discounts, productDiscount{
			requirement: req,
			amount:      decimal.NewFromFloat(price.ReductionAmount).Mul(decimal.NewFromInt(int64(req.quantity))),
		})
	}
	return discounts, nil
}

// selectionOf turns resolved items into the final selection rows a cart rule is built from.
// Items without product are dropped.
func selectionOf(resolved []domain.ResolvedItem) []domain.CartSelectionItem {
	items := make([]domain.CartSelectionItem, 0, len(resolved))
	for _, item := range resolved {
		if item.ProductID == 0 {
			continue
		}
		items = append(items, domain.CartSelectionItem{
			ProductChoiceID: item.ProductChoiceID,
			StepID:          item.StepID,
			ProductID:       item.ProductID,
			CombinationID:   item.CombinationID,
			Quantity:        item.Quantity,
		})
	}
	return items
}

// aggregateRequirements sums quantities per product, sorted by product id.
// Rows without product contribute nothing.
func aggregateRequirements(items []domain.CartSelectionItem) []productRequirement {
	byProduct := make(map[int64]*productRequirement)
	for _, item := range items {
		if item.ProductID == 0 {
			continue
		}
		if req, ok := byProduct[item.ProductID]; ok {
			req.quantity += item.Quantity
			continue
		}
		byProduct[item.ProductID] = &productRequirement{productID: item.ProductID, quantity: item.Quantity, row: item}
	}

	out := make([]productRequirement, 0, len(byProduct))
	for _, req := range byProduct {
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].productID < out[j].productID
	})
	return out
}
