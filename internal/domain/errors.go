package domain

import (
	"fmt"
	"strings"
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Status     int               `json:"status"`
	Detail     string            `json:"detail,omitempty"`
	Code       int               `json:"code,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Violations []Violation       `json:"violations,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Violation is a field-path addressable validation failure as consumed by the admin form
type Violation struct {
	Path    []string `json:"path"`
	Message string   `json:"message"`
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"min":      "Below minimum value",
	"max":      "Exceeds maximum value",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"lt":       "Must be less than maximum value",
	"oneof":    "Must be one of the allowed values",
	"dive":     "One or more entries are invalid",
	"uuid":     "Must be a valid UUID",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// ConstraintEntity groups constraint kinds by the record they apply to
type ConstraintEntity string

const (
	EntityConfigurator  ConstraintEntity = "configurator"
	EntityStep          ConstraintEntity = "step"
	EntityProductChoice ConstraintEntity = "product_choice"
	EntityCartItem      ConstraintEntity = "cart_item"
)

// ConstraintKind identifies exactly which invariant a ConstraintError reports
type ConstraintKind int

const (
	ConfiguratorInvalidName ConstraintKind = iota + 1
	ConfiguratorInvalidSteps
	ConfiguratorInvalidReduction
	// Reserved: reductionTax is a JSON bool, so decoding rejects bad values before validation.
	ConfiguratorInvalidReductionTax
	ConfiguratorInvalidReductionType

	StepInvalidLabel
	StepInvalidPosition
	StepInvalidProductChoices
	StepInvalidReduction
	// Reserved: reductionTax is a JSON bool, so decoding rejects bad values before validation.
	StepInvalidReductionTax
	StepInvalidReductionType

	ChoiceInvalidLabel
	ChoiceInvalidQuantityRule
	ChoiceInvalidQuantityRuleMode
	ChoiceInvalidQuantityRuleLocked
	ChoiceInvalidQuantityRuleRound
	ChoiceInvalidQuantityRuleOffset
	ChoiceInvalidQuantityRuleMin
	ChoiceInvalidQuantityRuleMax
	ChoiceInvalidQuantityRuleSources
	ChoiceInvalidIsDefault
	ChoiceInvalidReduction
	// Reserved: reductionTax is a JSON bool, so decoding rejects bad values before validation.
	ChoiceInvalidReductionTax
	ChoiceInvalidReductionType
	ChoiceInvalidDisplayConditionStep
	ChoiceInvalidDisplayConditionChoice
	ChoiceInvalidProduct

	CartItemInvalidProductID
	CartItemInvalidStepID
	CartItemInvalidChoiceID
	CartItemInvalidQuantity
	CartItemInvalidCombinationID
	CartItemProductUnavailable
)

type constraintKindInfo struct {
	code   int
	name   string
	entity ConstraintEntity
}

// constraintKinds is the single source of truth for error codes exposed to clients.
// Codes are part of the public contract: never renumber an existing entry.
var constraintKinds = map[ConstraintKind]constraintKindInfo{
	ConfiguratorInvalidName:          {101, "configurator.invalid_name", EntityConfigurator},
	ConfiguratorInvalidSteps:         {102, "configurator.invalid_steps", EntityConfigurator},
	ConfiguratorInvalidReduction:     {103, "configurator.invalid_reduction", EntityConfigurator},
	ConfiguratorInvalidReductionTax:  {104, "configurator.invalid_reduction_tax", EntityConfigurator},
	ConfiguratorInvalidReductionType: {105, "configurator.invalid_reduction_type", EntityConfigurator},

	StepInvalidLabel:          {201, "step.invalid_label", EntityStep},
	StepInvalidPosition:       {202, "step.invalid_position", EntityStep},
	StepInvalidProductChoices: {203, "step.invalid_product_choices", EntityStep},
	StepInvalidReduction:      {204, "step.invalid_reduction", EntityStep},
	StepInvalidReductionTax:   {205, "step.invalid_reduction_tax", EntityStep},
	StepInvalidReductionType:  {206, "step.invalid_reduction_type", EntityStep},

	ChoiceInvalidLabel:                  {301, "product_choice.invalid_label", EntityProductChoice},
	ChoiceInvalidQuantityRule:           {302, "product_choice.invalid_quantity_rule", EntityProductChoice},
	ChoiceInvalidQuantityRuleMode:       {303, "product_choice.invalid_quantity_rule_mode", EntityProductChoice},
	ChoiceInvalidQuantityRuleLocked:     {304, "product_choice.invalid_quantity_rule_locked", EntityProductChoice},
	ChoiceInvalidQuantityRuleRound:      {305, "product_choice.invalid_quantity_rule_round", EntityProductChoice},
	ChoiceInvalidQuantityRuleOffset:     {306, "product_choice.invalid_quantity_rule_offset", EntityProductChoice},
	ChoiceInvalidQuantityRuleMin:        {307, "product_choice.invalid_quantity_rule_min", EntityProductChoice},
	ChoiceInvalidQuantityRuleMax:        {308, "product_choice.invalid_quantity_rule_max", EntityProductChoice},
	ChoiceInvalidQuantityRuleSources:    {309, "product_choice.invalid_quantity_rule_sources", EntityProductChoice},
	ChoiceInvalidIsDefault:              {310, "product_choice.invalid_is_default", EntityProductChoice},
	ChoiceInvalidReduction:              {311, "product_choice.invalid_reduction", EntityProductChoice},
	ChoiceInvalidReductionTax:           {312, "product_choice.invalid_reduction_tax", EntityProductChoice},
	ChoiceInvalidReductionType:          {313, "product_choice.invalid_reduction_type", EntityProductChoice},
	ChoiceInvalidDisplayConditionStep:   {314, "product_choice.invalid_display_condition_step", EntityProductChoice},
	ChoiceInvalidDisplayConditionChoice: {315, "product_choice.invalid_display_condition_choice", EntityProductChoice},
	ChoiceInvalidProduct:                {316, "product_choice.invalid_product", EntityProductChoice},

	CartItemInvalidProductID:     {401, "cart_item.invalid_product_id", EntityCartItem},
	CartItemInvalidStepID:        {402, "cart_item.invalid_step_id", EntityCartItem},
	CartItemInvalidChoiceID:      {403, "cart_item.invalid_choice_id", EntityCartItem},
	CartItemInvalidQuantity:      {404, "cart_item.invalid_quantity", EntityCartItem},
	CartItemInvalidCombinationID: {405, "cart_item.invalid_combination_id", EntityCartItem},
	CartItemProductUnavailable:   {406, "cart_item.product_unavailable", EntityCartItem},
}

// Code returns the stable numeric code of the kind, or 0 for an unknown kind
func (k ConstraintKind) Code() int {
	return constraintKinds[k].code
}

// Entity returns the record type the kind applies to
func (k ConstraintKind) Entity() ConstraintEntity {
	return constraintKinds[k].entity
}

func (k ConstraintKind) String() string {
	if info, ok := constraintKinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("constraint(%d)", int(k))
}

// ConstraintError reports a single violated invariant of the configurator graph or a cart request
type ConstraintError struct {
	Kind    ConstraintKind
	Path    []string
	Message string
}

// NewConstraintError builds a ConstraintError for the given kind and path
func NewConstraintError(kind ConstraintKind, message string, path ...string) *ConstraintError {
	return &ConstraintError{Kind: kind, Path: path, Message: message}
}

func (e *ConstraintError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, strings.Join(e.Path, "."), e.Message)
}

// Is matches another ConstraintError of the same kind, so errors.Is works against kind templates
func (e *ConstraintError) Is(target error) bool {
	t, ok := target.(*ConstraintError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Violation converts the error into its form-report representation
func (e *ConstraintError) Violation() Violation {
	path := e.Path
	if path == nil {
		path = []string{}
	}
	return Violation{Path: path, Message: e.Message}
}

// WithPrefix returns a copy of the error with the given path segments prepended
func (e *ConstraintError) WithPrefix(prefix ...string) *ConstraintError {
	path := make([]string, 0, len(prefix)+len(e.Path))
	path = append(path, prefix...)
	path = append(path, e.Path...)
	return &ConstraintError{Kind: e.Kind, Path: path, Message: e.Message}
}

// NotFoundError is returned when a referenced record does not exist (or is inactive where activity is required)
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError builds a NotFoundError for an entity and identifier
func NewNotFoundError(entity string, id interface{}) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is matches any NotFoundError for the same entity
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return t.Entity == e.Entity && (t.ID == "" || t.ID == e.ID)
}

// Entity names used in NotFoundError
const (
	NotFoundConfigurator  = "configurator"
	NotFoundStep          = "step"
	NotFoundProductChoice = "product choice"
	NotFoundProduct       = "product"
	NotFoundCombination   = "combination"
	NotFoundCart          = "cart"
	NotFoundSnapshot      = "snapshot"
)

// Sentinel templates for errors.Is checks
var (
	ErrConfiguratorNotFound  = &NotFoundError{Entity: NotFoundConfigurator}
	ErrStepNotFound          = &NotFoundError{Entity: NotFoundStep}
	ErrProductChoiceNotFound = &NotFoundError{Entity: NotFoundProductChoice}
	ErrProductNotFound       = &NotFoundError{Entity: NotFoundProduct}
	ErrCombinationNotFound   = &NotFoundError{Entity: NotFoundCombination}
	ErrCartNotFound          = &NotFoundError{Entity: NotFoundCart}
	ErrSnapshotNotFound      = &NotFoundError{Entity: NotFoundSnapshot}
)
