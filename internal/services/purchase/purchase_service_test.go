package purchase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexvpn/backend/internal/models"
	"github.com/nexvpn/backend/internal/services/pricing"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestConsumeQuoteDiscountAfterDevicePurchase(t *testing.T) {
	engine := pricing.NewPricingEngine()

	// A 25% one-time discount benefits a device-slot price, so the sale
	// must spend it.
	state := models.DiscountState{PurchasePercent: 25}
	quote, err := engine.Calculate(state, decimal.NewFromInt(300), models.CurrencyRUB, models.GlobalDiscountSettings{}, models.ContextExtraDevices, testNow)
	require.NoError(t, err)
	require.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(225)))
	require.True(t, quote.ConsumePurchaseDiscount)

	expiresAt := testNow.Add(24 * time.Hour)
	user := models.User{PurchaseDiscountPercent: 25, PurchaseDiscountExpiresAt: &expiresAt}
	consumeQuoteDiscount(&user, &quote)

	assert.Equal(t, 0, user.PurchaseDiscountPercent, "one-time discount must not survive a device purchase that used it")
	assert.Nil(t, user.PurchaseDiscountExpiresAt)
}

func TestConsumeQuoteDiscountKeepsUnusedDiscount(t *testing.T) {
	engine := pricing.NewPricingEngine()

	// A larger non-stacking global discount wins, so the one-time discount
	// never benefited and stays available.
	state := models.DiscountState{PurchasePercent: 5}
	global := models.GlobalDiscountSettings{
		Enabled:             true,
		DiscountType:        models.DiscountTypePercent,
		DiscountValue:       decimal.NewFromInt(20),
		ApplyToExtraDevices: true,
	}
	quote, err := engine.Calculate(state, decimal.NewFromInt(300), models.CurrencyRUB, global, models.ContextExtraDevices, testNow)
	require.NoError(t, err)
	require.False(t, quote.ConsumePurchaseDiscount)

	user := models.User{PurchaseDiscountPercent: 5}
	consumeQuoteDiscount(&user, &quote)

	assert.Equal(t, 5, user.PurchaseDiscountPercent)
}
