package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexvpn/backend/internal/models"
)

func TestCalculateNoDiscounts(t *testing.T) {
	engine := NewPricingEngine()

	quote, err := engine.Calculate(models.DiscountState{}, decimal.NewFromInt(1000), models.CurrencyRUB, models.GlobalDiscountSettings{}, models.ContextSubscription, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, quote.Details.DiscountPercent.IsZero())
	assert.False(t, quote.ConsumePurchaseDiscount)
	assert.False(t, quote.Details.IsFree())
}

func TestCalculateLargerPurchaseDiscountWins(t *testing.T) {
	engine := NewPricingEngine()

	state := models.DiscountState{PersonalPercent: 10, PurchasePercent: 25}
	quote, err := engine.Calculate(state, decimal.NewFromInt(1000), models.CurrencyRUB, models.GlobalDiscountSettings{}, models.ContextSubscription, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(750)), "max(10,25)=25%% of 1000 should be 750, got %s", quote.Details.FinalAmount)
	assert.True(t, quote.Details.DiscountPercent.Equal(decimal.NewFromInt(25)))
	assert.True(t, quote.ConsumePurchaseDiscount, "purchase discount benefited and must be consumed after the sale")
}

func TestCalculateStackedGlobalDiscount(t *testing.T) {
	engine := NewPricingEngine()

	state := models.DiscountState{PersonalPercent: 10, PurchasePercent: 25}
	global := enabledGlobal(models.DiscountTypePercent, 5, true)
	quote, err := engine.Calculate(state, decimal.NewFromInt(1000), models.CurrencyRUB, global, models.ContextSubscription, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(700)), "25+5=30%% of 1000 should leave 700, got %s", quote.Details.FinalAmount)
	assert.True(t, quote.Details.DiscountPercent.Equal(decimal.NewFromInt(30)))
}

func TestCalculateGlobalWinsWithoutConsumingPurchaseDiscount(t *testing.T) {
	engine := NewPricingEngine()

	state := models.DiscountState{PurchasePercent: 5}
	global := enabledGlobal(models.DiscountTypePercent, 20, false)
	quote, err := engine.Calculate(state, decimal.NewFromInt(1000), models.CurrencyRUB, global, models.ContextSubscription, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(800)))
	assert.False(t, quote.ConsumePurchaseDiscount, "purchase discount did not benefit the price")
}

func TestCalculateFixedGlobalDiscount(t *testing.T) {
	engine := NewPricingEngine()

	global := enabledGlobal(models.DiscountTypeFixed, 200, false)
	quote, err := engine.Calculate(models.DiscountState{}, decimal.NewFromInt(1000), models.CurrencyRUB, global, models.ContextSubscription, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(800)), "200 fixed off 1000 should leave 800, got %s", quote.Details.FinalAmount)
}

func TestCalculateFullDiscountIsFree(t *testing.T) {
	engine := NewPricingEngine()

	state := models.DiscountState{PersonalPercent: 100}
	quote, err := engine.Calculate(state, decimal.NewFromInt(1000), models.CurrencyRUB, models.GlobalDiscountSettings{}, models.ContextSubscription, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.IsFree())
	assert.True(t, quote.Details.FinalAmount.IsZero())
}

func TestCalculateIdempotent(t *testing.T) {
	engine := NewPricingEngine()

	state := models.DiscountState{PersonalPercent: 13}
	global := enabledGlobal(models.DiscountTypePercent, 7, true)

	first, err := engine.Calculate(state, decimal.NewFromFloat(999.99), models.CurrencyRUB, global, models.ContextSubscription, testNow)
	require.NoError(t, err)
	second, err := engine.Calculate(state, decimal.NewFromFloat(999.99), models.CurrencyRUB, global, models.ContextSubscription, testNow)
	require.NoError(t, err)

	assert.True(t, first.Details.FinalAmount.Equal(second.Details.FinalAmount))
	assert.True(t, first.Details.DiscountPercent.Equal(second.Details.DiscountPercent))
}

func TestCalculateFinalNeverExceedsOriginal(t *testing.T) {
	engine := NewPricingEngine()

	states := []models.DiscountState{
		{},
		{PersonalPercent: 1},
		{PersonalPercent: 50, PurchasePercent: 99},
		{PurchasePercent: 100},
	}
	for _, state := range states {
		quote, err := engine.Calculate(state, decimal.NewFromFloat(123.45), models.CurrencyRUB, models.GlobalDiscountSettings{}, models.ContextSubscription, testNow)
		require.NoError(t, err)

		assert.False(t, quote.Details.FinalAmount.IsNegative())
		assert.True(t, quote.Details.FinalAmount.LessThanOrEqual(quote.Details.OriginalAmount))
		assert.True(t, quote.Details.DiscountPercent.GreaterThanOrEqual(decimal.Zero))
		assert.True(t, quote.Details.DiscountPercent.LessThanOrEqual(decimal.NewFromInt(100)))
	}
}

func TestCalculateNegativeBaseFails(t *testing.T) {
	engine := NewPricingEngine()

	_, err := engine.Calculate(models.DiscountState{}, decimal.NewFromInt(-10), models.CurrencyRUB, models.GlobalDiscountSettings{}, models.ContextSubscription, testNow)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCalculateInCurrencyConvertsBaseAndFixedDiscount(t *testing.T) {
	engine := NewPricingEngine()

	// 900 RUB base and 90 RUB fixed discount at 90 RUB/USD: 10 USD base,
	// 1 USD off, 9 USD final.
	global := enabledGlobal(models.DiscountTypeFixed, 90, false)
	quote, err := engine.CalculateInCurrency(models.DiscountState{}, decimal.NewFromInt(900), models.CurrencyUSD, testRates(), global, models.ContextSubscription, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.OriginalAmount.Equal(decimal.NewFromInt(10)))
	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(9)), "expected 9 USD, got %s", quote.Details.FinalAmount)
}

func TestCalculateInCurrencyMissingRate(t *testing.T) {
	engine := NewPricingEngine()

	_, err := engine.CalculateInCurrency(models.DiscountState{}, decimal.NewFromInt(900), models.CurrencyUSD, models.ExchangeRates{}, models.GlobalDiscountSettings{}, models.ContextSubscription, testNow)
	var rateErr *MissingExchangeRateError
	assert.ErrorAs(t, err, &rateErr)
}
