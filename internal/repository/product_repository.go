package repository

import (
	"context"

	"github.com/straye-as/product-configurator/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository reads the reference product catalog
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository instance
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product with its combinations
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID retrieves a product
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, notFound(err, domain.NotFoundProduct, id)
	}
	return &product, nil
}

// GetCombination retrieves a combination of a product
func (r *ProductRepository) GetCombination(ctx context.Context, productID, combinationID int64) (*domain.ProductCombination, error) {
	var combination domain.ProductCombination
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", combinationID, productID).
		First(&combination).Error
	if err != nil {
		return nil, notFound(err, domain.NotFoundCombination, combinationID)
	}
	return &combination, nil
}
