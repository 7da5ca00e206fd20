package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nexvpn/backend/internal/models"
)

// CurrencyConverter converts amounts from the base currency (rubles) into a
// payment currency using admin-supplied rates. Rates are expressed as base
// units per one target unit, so conversion divides by the rate.
type CurrencyConverter struct{}

// NewCurrencyConverter creates a new currency converter
func NewCurrencyConverter() *CurrencyConverter {
	return &CurrencyConverter{}
}

// Convert converts a base-currency amount into the target currency and
// rounds half-up to the target's minor unit. Rounding happens only here, at
// the output boundary, never on intermediate values.
func (c *CurrencyConverter) Convert(amount decimal.Decimal, target models.Currency, rates models.ExchangeRates) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "amount", Message: "must not be negative"}
	}

	if target == models.CurrencyRUB {
		return amount.Round(target.MinorUnitPlaces()), nil
	}

	rate, err := c.rateFor(target, rates)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Div(rate).Round(target.MinorUnitPlaces()), nil
}

func (c *CurrencyConverter) rateFor(target models.Currency, rates models.ExchangeRates) (decimal.Decimal, error) {
	var rate decimal.Decimal
	switch target {
	case models.CurrencyUSD:
		rate = rates.USD
	case models.CurrencyEUR:
		rate = rates.EUR
	case models.CurrencyXTR:
		rate = rates.XTR
	default:
		return decimal.Zero, &MissingExchangeRateError{Currency: target}
	}

	if rate.IsZero() || rate.IsNegative() {
		return decimal.Zero, &MissingExchangeRateError{Currency: target}
	}
	return rate, nil
}
