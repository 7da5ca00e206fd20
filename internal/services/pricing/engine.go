package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexvpn/backend/internal/models"
)

// Quote is a priced result plus the metadata the purchase flow needs after
// payment completes
type Quote struct {
	Details models.PriceDetails

	// ConsumePurchaseDiscount is true when the one-time purchase discount
	// actually benefited this price, so it must be reset (exactly once)
	// when the sale completes.
	ConsumePurchaseDiscount bool
}

// PricingEngine turns a base amount plus a user's discount eligibility into
// a final payable amount. It is pure: no side effects, no clock reads, and
// identical inputs always produce identical quotes.
type PricingEngine struct {
	resolver  *DiscountResolver
	converter *CurrencyConverter
}

// NewPricingEngine creates a new pricing engine
func NewPricingEngine() *PricingEngine {
	return &PricingEngine{
		resolver:  NewDiscountResolver(),
		converter: NewCurrencyConverter(),
	}
}

// Converter exposes the engine's currency converter for callers that need
// a bare conversion
func (e *PricingEngine) Converter() *CurrencyConverter {
	return e.converter
}

// Calculate prices a base amount already expressed in the target currency.
// The final amount is rounded half-up to the currency's minor unit at this
// output boundary only, and clamped into [0, original].
func (e *PricingEngine) Calculate(state models.DiscountState, basePrice decimal.Decimal, currency models.Currency, global models.GlobalDiscountSettings, ctx models.PricingContext, now time.Time) (Quote, error) {
	if basePrice.IsNegative() {
		return Quote{}, &ValidationError{Field: "base_price", Message: "must not be negative"}
	}

	res := e.resolver.Resolve(state, now, global, ctx)
	percent, userContributed := res.Effective(basePrice)

	multiplier := hundred.Sub(percent).Div(hundred)
	final := basePrice.Mul(multiplier).Round(currency.MinorUnitPlaces())
	if final.IsNegative() {
		final = decimal.Zero
	}
	if final.GreaterThan(basePrice) {
		final = basePrice
	}

	return Quote{
		Details: models.PriceDetails{
			OriginalAmount:  basePrice,
			FinalAmount:     final,
			DiscountPercent: percent,
		},
		ConsumePurchaseDiscount: res.Temporary && userContributed,
	}, nil
}

// CalculateInCurrency converts a base-currency price into the target
// currency first, then prices it. Fixed global discounts are converted
// alongside so they keep their value across currencies.
func (e *PricingEngine) CalculateInCurrency(state models.DiscountState, basePriceRUB decimal.Decimal, target models.Currency, rates models.ExchangeRates, global models.GlobalDiscountSettings, ctx models.PricingContext, now time.Time) (Quote, error) {
	converted, err := e.converter.Convert(basePriceRUB, target, rates)
	if err != nil {
		return Quote{}, err
	}

	if global.Enabled && global.DiscountType == models.DiscountTypeFixed {
		fixed, err := e.converter.Convert(global.DiscountValue, target, rates)
		if err != nil {
			return Quote{}, err
		}
		global.DiscountValue = fixed
	}

	return e.Calculate(state, converted, target, global, ctx, now)
}
