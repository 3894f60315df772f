package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories sharing one database handle.
// Inside WithTransaction every repository of the given Store runs on the transaction.
type Store struct {
	db            *gorm.DB
	Configurators *ConfiguratorRepository
	Snapshots     *SnapshotRepository
	Products      *ProductRepository
	Carts         *CartRepository
	CartRules     *CartRuleRepository
}

// NewStore creates a new Store instance
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Configurators: NewConfiguratorRepository(db),
		Snapshots:     NewSnapshotRepository(db),
		Products:      NewProductRepository(db),
		Carts:         NewCartRepository(db),
		CartRules:     NewCartRuleRepository(db),
	}
}

// WithTransaction executes fn within a transaction; any error rolls everything back
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
