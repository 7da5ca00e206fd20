package handlers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/nexvpn/backend/internal/models"
)

func TestValidateGlobalDiscount(t *testing.T) {
	assert.Empty(t, validateGlobalDiscount(models.DiscountTypePercent, decimal.NewFromInt(0)))
	assert.Empty(t, validateGlobalDiscount(models.DiscountTypePercent, decimal.NewFromInt(100)))
	assert.NotEmpty(t, validateGlobalDiscount(models.DiscountTypePercent, decimal.NewFromInt(101)))
	assert.NotEmpty(t, validateGlobalDiscount(models.DiscountTypePercent, decimal.NewFromInt(-1)))

	assert.Empty(t, validateGlobalDiscount(models.DiscountTypeFixed, decimal.NewFromInt(5000)))
	assert.NotEmpty(t, validateGlobalDiscount(models.DiscountTypeFixed, decimal.NewFromInt(-1)))

	assert.NotEmpty(t, validateGlobalDiscount(models.DiscountType("bogus"), decimal.NewFromInt(10)))
}

func TestValidateReferralProgram(t *testing.T) {
	msg := validateReferralProgram(models.ProgramLevelTwo, models.RewardTypeMoney, models.AccrualOnEachPayment, models.RewardStrategyPercent, models.BalanceModeSeparate)
	assert.Empty(t, msg)

	assert.NotEmpty(t, validateReferralProgram(models.ProgramLevel("three"), models.RewardTypeMoney, models.AccrualOnEachPayment, models.RewardStrategyPercent, models.BalanceModeSeparate))
	assert.NotEmpty(t, validateReferralProgram(models.ProgramLevelOne, models.RewardType("points"), models.AccrualOnEachPayment, models.RewardStrategyPercent, models.BalanceModeSeparate))
	assert.NotEmpty(t, validateReferralProgram(models.ProgramLevelOne, models.RewardTypeMoney, models.AccrualStrategy("always"), models.RewardStrategyPercent, models.BalanceModeSeparate))
	assert.NotEmpty(t, validateReferralProgram(models.ProgramLevelOne, models.RewardTypeMoney, models.AccrualOnEachPayment, models.RewardStrategy("tiered"), models.BalanceModeSeparate))
	assert.NotEmpty(t, validateReferralProgram(models.ProgramLevelOne, models.RewardTypeMoney, models.AccrualOnEachPayment, models.RewardStrategyPercent, models.BalanceMode("mixed")))
}

func TestPercentInRange(t *testing.T) {
	assert.True(t, percentInRange(0))
	assert.True(t, percentInRange(100))
	assert.False(t, percentInRange(-1))
	assert.False(t, percentInRange(101))
}
