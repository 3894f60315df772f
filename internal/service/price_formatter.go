package service

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PriceFormatter formats amounts in the shop currency for the shop locale
type PriceFormatter struct {
	unit    currency.Unit
	printer *message.Printer
	scale   int32
}

// NewPriceFormatter parses an ISO 4217 currency code and a BCP 47 locale
func NewPriceFormatter(currencyCode, locale string) (*PriceFormatter, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %s", ErrInvalidCurrency, currencyCode, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &PriceFormatter{
		unit:    unit,
		printer: message.NewPrinter(tag),
		scale:   int32(scale),
	}, nil
}

// Currency returns the ISO code of the formatter's currency
func (f *PriceFormatter) Currency() string {
	return f.unit.String()
}

// Round rounds an amount to the currency's minor unit
func (f *PriceFormatter) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(f.scale)
}

// Format renders an amount with the currency symbol
func (f *PriceFormatter) Format(amount float64) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount)))
}

// FormatDecimal renders a decimal amount
func (f *PriceFormatter) FormatDecimal(amount decimal.Decimal) string {
	return f.Format(f.Round(amount).InexactFloat64())
}
