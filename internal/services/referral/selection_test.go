package referral

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexvpn/backend/internal/models"
)

func reward(amount int64, issued bool) models.ReferralReward {
	return models.ReferralReward{
		Amount:   decimal.NewFromInt(amount),
		IsIssued: issued,
	}
}

func TestPendingTotalSkipsIssued(t *testing.T) {
	rewards := []models.ReferralReward{
		reward(50, false),
		reward(30, true),
		reward(20, false),
	}

	assert.True(t, pendingTotal(rewards).Equal(decimal.NewFromInt(70)))
}

func TestWithdrawalPrefixExactCover(t *testing.T) {
	rewards := []models.ReferralReward{
		reward(50, false),
		reward(30, false),
	}

	prefix, covered, err := withdrawalPrefix(rewards, decimal.NewFromInt(50))
	require.NoError(t, err)

	assert.Len(t, prefix, 1, "the first reward alone covers 50, the 30 stays pending")
	assert.True(t, prefix[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, covered.Equal(decimal.NewFromInt(50)))
}

func TestWithdrawalPrefixWholeUnitSurplus(t *testing.T) {
	rewards := []models.ReferralReward{
		reward(50, false),
		reward(30, false),
	}

	prefix, covered, err := withdrawalPrefix(rewards, decimal.NewFromInt(60))
	require.NoError(t, err)

	assert.Len(t, prefix, 2, "rewards issue whole, so covering 60 takes both rows")
	assert.True(t, covered.Equal(decimal.NewFromInt(80)))
}

func TestWithdrawalPrefixSkipsIssuedRows(t *testing.T) {
	rewards := []models.ReferralReward{
		reward(40, true),
		reward(50, false),
		reward(30, false),
	}

	prefix, covered, err := withdrawalPrefix(rewards, decimal.NewFromInt(70))
	require.NoError(t, err)

	assert.Len(t, prefix, 2)
	assert.True(t, covered.Equal(decimal.NewFromInt(80)))
}

func TestWithdrawalPrefixOverPending(t *testing.T) {
	rewards := []models.ReferralReward{
		reward(50, false),
		reward(30, false),
	}

	_, _, err := withdrawalPrefix(rewards, decimal.NewFromInt(81))
	assert.ErrorIs(t, err, ErrInsufficientRewardBalance)
}

func TestWithdrawalPrefixNegativeAmount(t *testing.T) {
	_, _, err := withdrawalPrefix(nil, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInsufficientRewardBalance)
}

func TestWithdrawalPrefixZeroAmount(t *testing.T) {
	rewards := []models.ReferralReward{reward(50, false)}

	prefix, covered, err := withdrawalPrefix(rewards, decimal.Zero)
	require.NoError(t, err)

	assert.Empty(t, prefix)
	assert.True(t, covered.IsZero())
}

func TestAccrualAllowed(t *testing.T) {
	assert.True(t, accrualAllowed(models.AccrualOnFirstPayment, true))
	assert.False(t, accrualAllowed(models.AccrualOnFirstPayment, false))
	assert.True(t, accrualAllowed(models.AccrualOnEachPayment, true))
	assert.True(t, accrualAllowed(models.AccrualOnEachPayment, false))
	assert.False(t, accrualAllowed(models.AccrualStrategy("unknown"), true))
}
