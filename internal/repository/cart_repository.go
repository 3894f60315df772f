package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/product-configurator/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository handles database operations for carts and their lines
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new CartRepository instance
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Create inserts a new cart, assigning an id when none is set
func (r *CartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error
}

// GetByID retrieves a cart with its lines
func (r *CartRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, notFound(err, domain.NotFoundCart, id)
	}
	return &cart, nil
}

// FindLine returns the line holding a product combination, or nil when the cart has none
func (r *CartRepository) FindLine(ctx context.Context, cartID uuid.UUID, productID, combinationID int64) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND combination_id = ?", cartID, productID, combinationID).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// SaveLine inserts or updates a cart line
func (r *CartRepository) SaveLine(ctx context.Context, line *domain.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// Touch bumps the cart's updated_at
func (r *CartRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Cart{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}
