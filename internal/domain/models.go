package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Configurator is a multi-step product wizard
type Configurator struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"not null;index"`
	ReductionSettings
	Steps     []Step    `gorm:"foreignKey:ConfiguratorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Configurator) TableName() string { return "configurators" }

// Step is one stage of a configurator
type Step struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	ConfiguratorID int64  `gorm:"not null;index"`
	Label          string `gorm:"type:varchar(255);not null"`
	Description    string `gorm:"type:text"`
	Position       int    `gorm:"not null"`
	Active         bool   `gorm:"not null"`
	ReductionSettings
	ProductChoices []ProductChoice `gorm:"foreignKey:StepID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Step) TableName() string { return "configurator_steps" }

// ProductChoice is one selectable option of a step.
// The quantity rule and display conditions are value objects stored as JSON.
type ProductChoice struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	StepID      int64  `gorm:"not null;index"`
	Label       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`
	ProductID   *int64 `gorm:"index"`
	Position    int    `gorm:"not null;default:0"`
	IsDefault   bool   `gorm:"not null"`
	Active      bool   `gorm:"not null"`
	ReductionSettings
	DisplayConditions datatypes.JSON `gorm:"column:display_conditions"`
	QuantityRule      datatypes.JSON `gorm:"column:quantity_rule"`
	CreatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProductChoice) TableName() string { return "configurator_product_choices" }

// Rule rebuilds the stored quantity rule
func (c *ProductChoice) Rule() QuantityRule {
	return LegacyQuantityRule(c.QuantityRule)
}

// Conditions rebuilds the stored display conditions
func (c *ProductChoice) Conditions() DisplayConditions {
	return LegacyDisplayConditions(c.DisplayConditions)
}

// ConfiguratorSnapshot records an uploaded copy of a configurator taken after a save
type ConfiguratorSnapshot struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	ConfiguratorID int64     `gorm:"not null;index"`
	StorageKey     string    `gorm:"type:varchar(500);not null"`
	Checksum       string    `gorm:"type:varchar(64);not null"`
	Size           int64     `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (ConfiguratorSnapshot) TableName() string { return "configurator_snapshots" }

// Product is the reference catalog entry. Price is tax excluded; TaxRate is a percentage.
// Reduction fields describe a platform-side specific price.
type Product struct {
	ID            int64                `gorm:"primaryKey;autoIncrement"`
	Name          string               `gorm:"type:varchar(255);not null"`
	Reference     string               `gorm:"type:varchar(64)"`
	Price         decimal.Decimal      `gorm:"type:decimal(20,6);not null"`
	TaxRate       decimal.Decimal      `gorm:"type:decimal(10,3);not null"`
	Active        bool                 `gorm:"not null"`
	Stock         int                  `gorm:"not null;default:0"`
	Reduction     decimal.Decimal      `gorm:"type:decimal(20,6);not null;default:0"`
	ReductionType ReductionType        `gorm:"type:varchar(20);not null;default:'amount'"`
	ReductionTax  bool                 `gorm:"not null"`
	Combinations  []ProductCombination `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time            `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// ProductCombination is a product variant with its own stock and tax-excluded price impact
type ProductCombination struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ProductID   int64           `gorm:"not null;index"`
	Name        string          `gorm:"type:varchar(255)"`
	PriceImpact decimal.Decimal `gorm:"type:decimal(20,6);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
}

func (ProductCombination) TableName() string { return "product_combinations" }

// Cart is a shopper's cart
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Currency  string     `gorm:"type:varchar(3);not null"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Cart) TableName() string { return "carts" }

// CartLine is a product quantity held by a cart. CombinationID is 0 for products without variants.
type CartLine struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	CartID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      int64     `gorm:"not null"`
	CombinationID  int64     `gorm:"not null;default:0"`
	Quantity       int       `gorm:"not null"`
	ConfiguratorID *int64    `gorm:"index"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CartLine) TableName() string { return "cart_lines" }

// CartRule is a cart-level discount. Rules generated by configurators carry a WIZ- code.
type CartRule struct {
	ID              int64             `gorm:"primaryKey;autoIncrement"`
	Code            string            `gorm:"type:varchar(128);not null;uniqueIndex"`
	Name            string            `gorm:"type:varchar(255);not null"`
	ConfiguratorID  *int64            `gorm:"index"`
	ReductionAmount decimal.Decimal   `gorm:"type:decimal(20,6);not null;default:0"`
	ReductionTax    bool              `gorm:"not null"`
	Active          bool              `gorm:"not null"`
	Products        []CartRuleProduct `gorm:"foreignKey:CartRuleID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CartRule) TableName() string { return "cart_rules" }

// CartRuleProduct restricts a cart rule to carts holding at least Quantity of a product
type CartRuleProduct struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	CartRuleID int64 `gorm:"not null;index"`
	ProductID  int64 `gorm:"not null"`
	Quantity   int   `gorm:"not null"`
}

func (CartRuleProduct) TableName() string { return "cart_rule_products" }

// CartCartRule attaches a cart rule to a cart
type CartCartRule struct {
	CartID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CartRuleID int64     `gorm:"primaryKey"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CartCartRule) TableName() string { return "cart_cart_rules" }
