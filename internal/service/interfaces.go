package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/product-configurator/internal/domain"
)

// ProductCatalog is the host platform's product API
type ProductCatalog interface {
	// GetPricedProduct returns the current price view of a product; combinationID is 0 for the base product
	GetPricedProduct(ctx context.Context, productID, combinationID int64) (*domain.PricedProduct, error)
	// IsAvailable reports whether qty units can be ordered
	IsAvailable(ctx context.Context, productID, combinationID int64, qty int) (bool, error)
}

// ConfiguratorReader loads configurators that shoppers may use
type ConfiguratorReader interface {
	GetActiveByID(ctx context.Context, id int64) (*domain.Configurator, error)
}

// CartRuleStore persists cart rules and their attachment to carts
type CartRuleStore interface {
	// FindByCode returns nil when no rule has the code
	FindByCode(ctx context.Context, code string) (*domain.CartRule, error)
	Save(ctx context.Context, rule *domain.CartRule) error
	Delete(ctx context.Context, id int64) error
	CountAttachments(ctx context.Context, id int64) (int64, error)
	Attach(ctx context.Context, cartID uuid.UUID, ruleID int64) error
	DetachByCodePrefix(ctx context.Context, cartID uuid.UUID, prefix string) error
}
