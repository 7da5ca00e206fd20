package jobs

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexvpn/backend/internal/models"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestRenewalQuoteAppliesGlobalDiscount(t *testing.T) {
	job := NewDeviceRenewalJob(nil, nil)

	billing := models.BillingSettings{ExtraDeviceMonthlyPrice: decimal.NewFromInt(300)}
	global := models.GlobalDiscountSettings{
		Enabled:             true,
		DiscountType:        models.DiscountTypePercent,
		DiscountValue:       decimal.NewFromInt(20),
		ApplyToExtraDevices: true,
	}

	quote, err := job.renewalQuote(models.User{}, billing, global, 2, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.OriginalAmount.Equal(decimal.NewFromInt(600)))
	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(480)),
		"a renewal must get the same extra-devices discount the initial purchase got, got %s", quote.Details.FinalAmount)
}

func TestRenewalQuoteAppliesPersonalDiscount(t *testing.T) {
	job := NewDeviceRenewalJob(nil, nil)

	billing := models.BillingSettings{ExtraDeviceMonthlyPrice: decimal.NewFromInt(300)}
	user := models.User{PersonalDiscountPercent: 10}

	quote, err := job.renewalQuote(user, billing, models.GlobalDiscountSettings{}, 1, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(270)))
}

func TestRenewalQuoteUndiscounted(t *testing.T) {
	job := NewDeviceRenewalJob(nil, nil)

	billing := models.BillingSettings{ExtraDeviceMonthlyPrice: decimal.NewFromInt(300)}

	quote, err := job.renewalQuote(models.User{}, billing, models.GlobalDiscountSettings{}, 1, testNow)
	require.NoError(t, err)

	assert.True(t, quote.Details.FinalAmount.Equal(decimal.NewFromInt(300)))
	assert.False(t, quote.ConsumePurchaseDiscount)
}
