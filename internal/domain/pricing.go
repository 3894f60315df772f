package domain

// ReductionType tells whether a reduction is a fixed amount or a percentage
type ReductionType string

const (
	ReductionTypeAmount     ReductionType = "amount"
	ReductionTypePercentage ReductionType = "percentage"
)

// IsValid reports whether the reduction type is a known token
func (t ReductionType) IsValid() bool {
	return t == ReductionTypeAmount || t == ReductionTypePercentage
}

// ReductionSettings is the reduction carried by a configurator, a step or a product choice.
// ReductionTax tells whether an amount reduction is tax included.
type ReductionSettings struct {
	Reduction     float64       `gorm:"type:decimal(20,6);not null;default:0" json:"reduction"`
	ReductionTax  bool          `gorm:"not null" json:"reductionTax"`
	ReductionType ReductionType `gorm:"type:varchar(20);not null;default:'amount'" json:"reductionType"`
}

// Reductions returns the settings; embedding types inherit it and satisfy Reducible
func (r ReductionSettings) Reductions() ReductionSettings {
	return r
}

// Reducible is anything exposing reduction settings
type Reducible interface {
	Reductions() ReductionSettings
}

// ReductionSource names the level a resolved reduction came from
type ReductionSource string

const (
	ReductionSourceChoice       ReductionSource = "choice"
	ReductionSourceStep         ReductionSource = "step"
	ReductionSourceConfigurator ReductionSource = "configurator"
	ReductionSourcePlatform     ReductionSource = "platform"
	ReductionSourceNone         ReductionSource = "none"
)

// SpecificPrices carries the tax mode of the platform-side reduction
type SpecificPrices struct {
	ReductionTax bool `json:"reduction_tax"`
}

// PricedProduct is the host platform's view of a product price. Amounts are per unit and tax included.
// Reduction is the platform's own per-unit reduction amount.
type PricedProduct struct {
	ProductID                  int64          `json:"id_product"`
	CombinationID              int64          `json:"id_product_attribute"`
	Price                      string         `json:"price"`
	RegularPrice               string         `json:"regular_price"`
	PriceAmount                float64        `json:"price_amount"`
	RegularPriceAmount         float64        `json:"regular_price_amount"`
	Reduction                  float64        `json:"reduction"`
	DiscountType               ReductionType  `json:"discount_type,omitempty"`
	DiscountPercentageAbsolute float64        `json:"discount_percentage_absolute,omitempty"`
	HasDiscount                bool           `json:"has_discount"`
	TaxRate                    float64        `json:"tax_rate"`
	SpecificPrices             SpecificPrices `json:"specific_prices"`
}

// PriceResolution is the effective price of a product choice
type PriceResolution struct {
	Reduction          float64         `json:"reduction"`
	ReductionType      ReductionType   `json:"reduction_type"`
	ReductionTax       bool            `json:"reduction_tax"`
	Price              string          `json:"price"`
	RegularPrice       string          `json:"regular_price"`
	HasDiscount        bool            `json:"has_discount"`
	PriceAmount        float64         `json:"price_amount"`
	RegularPriceAmount float64         `json:"regular_price_amount"`
	ReductionAmount    float64         `json:"reduction_amount"`
	Source             ReductionSource `json:"source"`
}

// ModuleDiscount reports whether the configurator grants a discount the platform does not already cover
func (p PriceResolution) ModuleDiscount() bool {
	return p.HasDiscount && p.ReductionAmount > 0 &&
		p.Source != ReductionSourcePlatform && p.Source != ReductionSourceNone
}
