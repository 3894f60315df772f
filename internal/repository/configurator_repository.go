package repository

import (
	"context"
	"fmt"

	"github.com/straye-as/product-configurator/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// configuratorSortFields maps API sort fields to columns
var configuratorSortFields = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"id":        "id",
}

// ConfiguratorRepository handles database operations for configurator graphs
type ConfiguratorRepository struct {
	db *gorm.DB
}

// NewConfiguratorRepository creates a new ConfiguratorRepository instance
func NewConfiguratorRepository(db *gorm.DB) *ConfiguratorRepository {
	return &ConfiguratorRepository{db: db}
}

// withGraph preloads steps and choices in wizard order
func withGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Steps.ProductChoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		})
}

// GetByID retrieves a configurator with its steps and choices
func (r *ConfiguratorRepository) GetByID(ctx context.Context, id int64) (*domain.Configurator, error) {
	var cfg domain.Configurator
	err := withGraph(r.db.WithContext(ctx)).Where("id = ?", id).First(&cfg).Error
	if err != nil {
		return nil, notFound(err, domain.NotFoundConfigurator, id)
	}
	return &cfg, nil
}

// GetActiveByID retrieves an active configurator; inactive ones are reported as not found
func (r *ConfiguratorRepository) GetActiveByID(ctx context.Context, id int64) (*domain.Configurator, error) {
	var cfg domain.Configurator
	err := withGraph(r.db.WithContext(ctx)).Where("id = ? AND active = ?", id, true).First(&cfg).Error
	if err != nil {
		return nil, notFound(err, domain.NotFoundConfigurator, id)
	}
	return &cfg, nil
}

// List returns a page of configurators with their steps (without choices)
func (r *ConfiguratorRepository) List(ctx context.Context, page, pageSize int, sort SortConfig) ([]domain.Configurator, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Configurator{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cfgs []domain.Configurator
	err := r.db.WithContext(ctx).
		Preload("Steps").
		Order(BuildOrderClause(sort, configuratorSortFields, "updated_at")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cfgs).Error
	return cfgs, total, err
}

// SaveGraph writes the configurator row, deletes removed steps and choices and upserts the rest.
// Run it inside a transaction; parent ids are filled in as records get their ids.
func (r *ConfiguratorRepository) SaveGraph(ctx context.Context, cfg *domain.Configurator, removedStepIDs, removedChoiceIDs []int64) error {
	db := r.db.WithContext(ctx)

	if err := db.Omit(clause.Associations).Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save configurator: %w", err)
	}

	if len(removedChoiceIDs) > 0 {
		if err := db.Where("id IN ?", removedChoiceIDs).Delete(&domain.ProductChoice{}).Error; err != nil {
			return fmt.Errorf("failed to delete product choices: %w", err)
		}
	}
	if len(removedStepIDs) > 0 {
		if err := db.Where("step_id IN ?", removedStepIDs).Delete(&domain.ProductChoice{}).Error; err != nil {
			return fmt.Errorf("failed to delete choices of removed steps: %w", err)
		}
		if err := db.Where("id IN ? AND configurator_id = ?", removedStepIDs, cfg.ID).Delete(&domain.Step{}).Error; err != nil {
			return fmt.Errorf("failed to delete steps: %w", err)
		}
	}

	for i := range cfg.Steps {
		step := &cfg.Steps[i]
		step.ConfiguratorID = cfg.ID
		if err := db.Omit(clause.Associations).Save(step).Error; err != nil {
			return fmt.Errorf("failed to save step %q: %w", step.Label, err)
		}
		for j := range step.ProductChoices {
			choice := &step.ProductChoices[j]
			choice.StepID = step.ID
			if err := db.Omit(clause.Associations).Save(choice).Error; err != nil {
				return fmt.Errorf("failed to save product choice %q: %w", choice.Label, err)
			}
		}
	}
	return nil
}

// UpdateChoiceReferences rewrites the quantity rule and display conditions of every choice of cfg
func (r *ConfiguratorRepository) UpdateChoiceReferences(ctx context.Context, cfg *domain.Configurator) error {
	db := r.db.WithContext(ctx)
	for _, step := range cfg.Steps {
		for _, choice := range step.ProductChoices {
			err := db.Model(&domain.ProductChoice{}).
				Where("id = ?", choice.ID).
				Updates(map[string]interface{}{
					"quantity_rule":      choice.QuantityRule,
					"display_conditions": choice.DisplayConditions,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to update references of product choice %d: %w", choice.ID, err)
			}
		}
	}
	return nil
}

// Delete removes a configurator with its steps and choices
func (r *ConfiguratorRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stepIDs := tx.Model(&domain.Step{}).Select("id").Where("configurator_id = ?", id)
		if err := tx.Where("step_id IN (?)", stepIDs).Delete(&domain.ProductChoice{}).Error; err != nil {
			return fmt.Errorf("failed to delete product choices: %w", err)
		}
		if err := tx.Where("configurator_id = ?", id).Delete(&domain.Step{}).Error; err != nil {
			return fmt.Errorf("failed to delete steps: %w", err)
		}
		result := tx.Delete(&domain.Configurator{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError(domain.NotFoundConfigurator, id)
		}
		return nil
	})
}
