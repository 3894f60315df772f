package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/product-configurator/internal/database"
	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory SQLite database with every table migrated.
// The database lives as long as the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and serializes transactions
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// ProductOption customizes a test product
type ProductOption func(*domain.Product)

// WithStock sets the product stock
func WithStock(stock int) ProductOption {
	return func(p *domain.Product) { p.Stock = stock }
}

// WithTaxRate sets the tax rate in percent
func WithTaxRate(rate string) ProductOption {
	return func(p *domain.Product) { p.TaxRate = decimal.RequireFromString(rate) }
}

// WithPlatformReduction gives the product a platform-side specific price
func WithPlatformReduction(amount string, reductionType domain.ReductionType, tax bool) ProductOption {
	return func(p *domain.Product) {
		p.Reduction = decimal.RequireFromString(amount)
		p.ReductionType = reductionType
		p.ReductionTax = tax
	}
}

// CreateTestProduct inserts an active product priced tax excluded, without tax and with plenty of stock
func CreateTestProduct(t *testing.T, db *gorm.DB, name, price string, opts ...ProductOption) *domain.Product {
	t.Helper()

	product := &domain.Product{
		Name:          name,
		Reference:     "REF-" + name,
		Price:         decimal.RequireFromString(price),
		TaxRate:       decimal.Zero,
		Active:        true,
		Stock:         100,
		ReductionType: domain.ReductionTypeAmount,
	}
	for _, opt := range opts {
		opt(product)
	}
	require.NoError(t, db.WithContext(context.Background()).Create(product).Error)
	return product
}
