package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/product-configurator/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRuleRepository handles database operations for cart rules and their attachment to carts
type CartRuleRepository struct {
	db *gorm.DB
}

// NewCartRuleRepository creates a new CartRuleRepository instance
func NewCartRuleRepository(db *gorm.DB) *CartRuleRepository {
	return &CartRuleRepository{db: db}
}

// FindByCode returns the rule with the given code, or nil when there is none
func (r *CartRuleRepository) FindByCode(ctx context.Context, code string) (*domain.CartRule, error) {
	var rule domain.CartRule
	err := r.db.WithContext(ctx).Preload("Products").Where("code = ?", code).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Save inserts or updates a rule and replaces its product restrictions.
// A new rule whose code already exists overwrites the stored one and takes its id.
func (r *CartRuleRepository) Save(ctx context.Context, rule *domain.CartRule) error {
	db := r.db.WithContext(ctx)
	if rule.ID == 0 {
		err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "configurator_id", "reduction_amount", "reduction_tax", "active", "updated_at"}),
		}).Create(rule).Error
		if err != nil {
			return fmt.Errorf("failed to save cart rule: %w", err)
		}
		var stored domain.CartRule
		if err := db.Select("id").Where("code = ?", rule.Code).Take(&stored).Error; err != nil {
			return fmt.Errorf("failed to read back cart rule %s: %w", rule.Code, err)
		}
		rule.ID = stored.ID
	} else if err := db.Omit(clause.Associations).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to save cart rule: %w", err)
	}
	if err := db.Where("cart_rule_id = ?", rule.ID).Delete(&domain.CartRuleProduct{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart rule restrictions: %w", err)
	}
	for i := range rule.Products {
		rule.Products[i].ID = 0
		rule.Products[i].CartRuleID = rule.ID
	}
	if len(rule.Products) > 0 {
		if err := db.Create(&rule.Products).Error; err != nil {
			return fmt.Errorf("failed to save cart rule restrictions: %w", err)
		}
	}
	return nil
}

// Delete removes a rule, its restrictions and its cart attachments
func (r *CartRuleRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("cart_rule_id = ?", id).Delete(&domain.CartCartRule{}).Error; err != nil {
		return err
	}
	if err := db.Where("cart_rule_id = ?", id).Delete(&domain.CartRuleProduct{}).Error; err != nil {
		return err
	}
	return db.Delete(&domain.CartRule{}, "id = ?", id).Error
}

// CountAttachments returns how many carts use a rule
func (r *CartRuleRepository) CountAttachments(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.CartCartRule{}).Where("cart_rule_id = ?", id).Count(&count).Error
	return count, err
}

// Attach links a rule to a cart; attaching twice is a no-op
func (r *CartRuleRepository) Attach(ctx context.Context, cartID uuid.UUID, ruleID int64) error {
	link := domain.CartCartRule{CartID: cartID, CartRuleID: ruleID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

// Detach unlinks a rule from a cart
func (r *CartRuleRepository) Detach(ctx context.Context, cartID uuid.UUID, ruleID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND cart_rule_id = ?", cartID, ruleID).
		Delete(&domain.CartCartRule{}).Error
}

// DetachByCodePrefix unlinks every rule whose code starts with prefix from a cart
func (r *CartRuleRepository) DetachByCodePrefix(ctx context.Context, cartID uuid.UUID, prefix string) error {
	db := r.db.WithContext(ctx)
	ruleIDs := db.Model(&domain.CartRule{}).Select("id").Where("code LIKE ?", prefix+"%")
	return db.Where("cart_id = ? AND cart_rule_id IN (?)", cartID, ruleIDs).Delete(&domain.CartCartRule{}).Error
}

// ListForCart returns the rules attached to a cart with their restrictions
func (r *CartRuleRepository) ListForCart(ctx context.Context, cartID uuid.UUID) ([]domain.CartRule, error) {
	var rules []domain.CartRule
	db := r.db.WithContext(ctx)
	ruleIDs := db.Model(&domain.CartCartRule{}).Select("cart_rule_id").Where("cart_id = ?", cartID)
	err := db.Preload("Products").
		Where("id IN (?)", ruleIDs).
		Order("id ASC").
		Find(&rules).Error
	return rules, err
}

// DeleteUnattached removes rules with the code prefix that no cart uses and that were last
// updated before the cutoff. It returns the number of deleted rules.
func (r *CartRuleRepository) DeleteUnattached(ctx context.Context, prefix string, before time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		attached := tx.Model(&domain.CartCartRule{}).Select("cart_rule_id")
		err := tx.Model(&domain.CartRule{}).
			Where("code LIKE ? AND updated_at < ? AND id NOT IN (?)", prefix+"%", before, attached).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("cart_rule_id IN ?", ids).Delete(&domain.CartRuleProduct{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&domain.CartRule{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}
