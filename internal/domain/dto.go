package domain

import "github.com/shopspring/decimal"

// DTOs exchanged with the admin form and the shop front

// ConfiguratorDTO is the full configurator graph as edited in the admin form
type ConfiguratorDTO struct {
	ID          *int64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	ReductionSettings
	Steps []StepDTO `json:"steps"`
}

type StepDTO struct {
	ID          NodeID `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	Active      bool   `json:"active"`
	ReductionSettings
	ProductChoices []ProductChoiceDTO `json:"productChoices"`
}

// ProductChoiceDTO is one choice of a step. A nil QuantityRule means the rule is missing.
type ProductChoiceDTO struct {
	ID          NodeID `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	ProductID   *int64 `json:"productId"`
	IsDefault   bool   `json:"isDefault"`
	Active      bool   `json:"active"`
	ReductionSettings
	DisplayConditions DisplayConditions `json:"displayConditions"`
	QuantityRule      *QuantityRuleMap  `json:"quantityRule"`
}

// ConfiguratorSummaryDTO is a list entry of the admin overview
type ConfiguratorSummaryDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	StepCount int    `json:"stepCount"`
	UpdatedAt string `json:"updatedAt"` // ISO 8601
}

// ConfiguratorSaveResult is returned after a create, update, import or restore.
// IDMap maps the virtual ids of the submitted graph to the ids they were stored under.
type ConfiguratorSaveResult struct {
	Configurator ConfiguratorDTO  `json:"configurator"`
	IDMap        map[string]int64 `json:"idMap"`
}

// ValidationReport is the dry-run outcome of a configurator validation
type ValidationReport struct {
	Valid      bool        `json:"valid"`
	Code       int         `json:"code,omitempty"`
	Violations []Violation `json:"violations"`
}

// SnapshotDTO describes a stored configurator snapshot
type SnapshotDTO struct {
	ID             int64  `json:"id"`
	ConfiguratorID int64  `json:"configuratorId"`
	StorageKey     string `json:"storageKey"`
	Checksum       string `json:"checksum"`
	Size           int64  `json:"size"`
	CreatedAt      string `json:"createdAt"` // ISO 8601
}

// Pagination response wrapper
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Shop-side read model

type PublicConfiguratorDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ReductionSettings
	Steps []PublicStepDTO `json:"steps"`
}

type PublicStepDTO struct {
	ID             int64             `json:"id"`
	Label          string            `json:"label"`
	Description    string            `json:"description"`
	Position       int               `json:"position"`
	ProductChoices []PublicChoiceDTO `json:"productChoices"`
}

type PublicChoiceDTO struct {
	ID                int64             `json:"id"`
	Label             string            `json:"label"`
	Description       string            `json:"description"`
	ProductID         *int64            `json:"productId"`
	IsDefault         bool              `json:"isDefault"`
	DisplayConditions DisplayConditions `json:"displayConditions"`
	QuantityRule      QuantityRuleMap   `json:"quantityRule"`
	Price             *PriceResolution  `json:"price,omitempty"`
}

// Request DTOs

// CartSelectionItem is one selected choice as sent by the shop front
type CartSelectionItem struct {
	ProductChoiceID int64 `json:"productChoiceId" validate:"required,gt=0"`
	StepID          int64 `json:"stepId" validate:"required,gt=0"`
	ProductID       int64 `json:"productId" validate:"gte=0"`
	CombinationID   int64 `json:"combinationId" validate:"gte=0"`
	Quantity        int   `json:"quantity" validate:"gte=0,lte=100000"`
}

// CartSelection is the shopper's selection for one configurator
type CartSelection struct {
	ConfiguratorID int64               `json:"configuratorId" validate:"required,gt=0"`
	Items          []CartSelectionItem `json:"items" validate:"required,min=1,dive"`
}

// QuoteRequest prices a selection without touching any cart
type QuoteRequest struct {
	Items []CartSelectionItem `json:"items" validate:"required,min=1,dive"`
}

// ResolvedItem is a selected choice after visibility and quantity resolution
type ResolvedItem struct {
	StepID          int64 `json:"stepId"`
	ProductChoiceID int64 `json:"productChoiceId"`
	ProductID       int64 `json:"productId"`
	CombinationID   int64 `json:"combinationId"`
	Quantity        int   `json:"quantity"`
}

// Response DTOs

type QuoteLineDTO struct {
	ResolvedItem
	Price          PriceResolution `json:"price"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	LineDiscount   decimal.Decimal `json:"lineDiscount"`
	FormattedTotal string          `json:"formattedTotal"`
}

type QuoteDTO struct {
	ConfiguratorID       int64           `json:"configuratorId"`
	Currency             string          `json:"currency"`
	Lines                []QuoteLineDTO  `json:"lines"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	ConfiguratorDiscount decimal.Decimal `json:"configuratorDiscount"`
	Total                decimal.Decimal `json:"total"`
	FormattedSubtotal    string          `json:"formattedSubtotal"`
	FormattedDiscount    string          `json:"formattedDiscount"`
	FormattedTotal       string          `json:"formattedTotal"`
}

type CartLineDTO struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"productId"`
	CombinationID  int64           `json:"combinationId"`
	Quantity       int             `json:"quantity"`
	ConfiguratorID *int64          `json:"configuratorId,omitempty"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
}

type CartRuleRestrictionDTO struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CartRuleDTO struct {
	ID           int64                    `json:"id"`
	Code         string                   `json:"code"`
	Name         string                   `json:"name"`
	Amount       decimal.Decimal          `json:"amount"`
	ReductionTax bool                     `json:"reductionTax"`
	Restrictions []CartRuleRestrictionDTO `json:"restrictions"`
}

type CartDTO struct {
	ID             string          `json:"id"`
	Currency       string          `json:"currency"`
	Lines          []CartLineDTO   `json:"lines"`
	Rules          []CartRuleDTO   `json:"rules"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountTotal  decimal.Decimal `json:"discountTotal"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formattedTotal"`
	CreatedAt      string          `json:"createdAt"` // ISO 8601
	UpdatedAt      string          `json:"updatedAt"` // ISO 8601
}
