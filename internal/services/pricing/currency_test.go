package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexvpn/backend/internal/models"
)

func testRates() models.ExchangeRates {
	return models.ExchangeRates{
		USD: decimal.NewFromInt(90),
		EUR: decimal.NewFromInt(100),
		XTR: decimal.NewFromFloat(1.8),
	}
}

func TestConvertBaseCurrencyPassthrough(t *testing.T) {
	converter := NewCurrencyConverter()

	result, err := converter.Convert(decimal.NewFromInt(300), models.CurrencyRUB, testRates())
	require.NoError(t, err)
	assert.True(t, result.Equal(decimal.NewFromInt(300)), "RUB conversion should be identity, got %s", result)
}

func TestConvertDividesByRate(t *testing.T) {
	converter := NewCurrencyConverter()

	// 900 rubles at 90 rubles per dollar is 10 dollars
	result, err := converter.Convert(decimal.NewFromInt(900), models.CurrencyUSD, testRates())
	require.NoError(t, err)
	assert.True(t, result.Equal(decimal.NewFromInt(10)), "expected 10 USD, got %s", result)

	result, err = converter.Convert(decimal.NewFromInt(250), models.CurrencyEUR, testRates())
	require.NoError(t, err)
	assert.True(t, result.Equal(decimal.NewFromFloat(2.5)), "expected 2.50 EUR, got %s", result)
}

func TestConvertStarsRoundToWholeUnits(t *testing.T) {
	converter := NewCurrencyConverter()

	// 300 / 1.8 = 166.67, stars have no minor unit so round half-up to 167
	result, err := converter.Convert(decimal.NewFromInt(300), models.CurrencyXTR, testRates())
	require.NoError(t, err)
	assert.True(t, result.Equal(decimal.NewFromInt(167)), "expected 167 stars, got %s", result)
}

func TestConvertRoundsHalfUpAtBoundary(t *testing.T) {
	converter := NewCurrencyConverter()

	// 100 / 3 = 33.333... -> 33.33; 100 / 32 = 3.125 -> 3.13
	rates := models.ExchangeRates{USD: decimal.NewFromInt(3)}
	result, err := converter.Convert(decimal.NewFromInt(100), models.CurrencyUSD, rates)
	require.NoError(t, err)
	assert.Equal(t, "33.33", result.StringFixed(2))

	rates = models.ExchangeRates{USD: decimal.NewFromInt(32)}
	result, err = converter.Convert(decimal.NewFromInt(100), models.CurrencyUSD, rates)
	require.NoError(t, err)
	assert.Equal(t, "3.13", result.StringFixed(2))
}

func TestConvertMissingRateFails(t *testing.T) {
	converter := NewCurrencyConverter()

	_, err := converter.Convert(decimal.NewFromInt(100), models.CurrencyUSD, models.ExchangeRates{})
	require.Error(t, err)

	var rateErr *MissingExchangeRateError
	assert.ErrorAs(t, err, &rateErr)
	assert.Equal(t, models.CurrencyUSD, rateErr.Currency)
}

func TestConvertUnknownCurrencyFails(t *testing.T) {
	converter := NewCurrencyConverter()

	_, err := converter.Convert(decimal.NewFromInt(100), models.Currency("GBP"), testRates())
	var rateErr *MissingExchangeRateError
	assert.ErrorAs(t, err, &rateErr)
}

func TestConvertNegativeAmountFails(t *testing.T) {
	converter := NewCurrencyConverter()

	_, err := converter.Convert(decimal.NewFromInt(-1), models.CurrencyUSD, testRates())
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
