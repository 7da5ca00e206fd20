package balance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexvpn/backend/internal/models"
)

func TestSpendableCombinedIncludesBonus(t *testing.T) {
	got := Spendable(decimal.NewFromInt(100), decimal.NewFromInt(40), models.BalanceModeCombined)
	assert.True(t, got.Equal(decimal.NewFromInt(140)))
}

func TestSpendableSeparateExcludesBonus(t *testing.T) {
	got := Spendable(decimal.NewFromInt(100), decimal.NewFromInt(40), models.BalanceModeSeparate)
	assert.True(t, got.Equal(decimal.NewFromInt(100)))
}

func TestSplitDebitMainCoversAll(t *testing.T) {
	fromMain, fromBonus, err := SplitDebit(decimal.NewFromInt(100), decimal.NewFromInt(40), decimal.NewFromInt(80), models.BalanceModeCombined)
	require.NoError(t, err)

	assert.True(t, fromMain.Equal(decimal.NewFromInt(80)))
	assert.True(t, fromBonus.IsZero())
}

func TestSplitDebitSpillsIntoBonus(t *testing.T) {
	fromMain, fromBonus, err := SplitDebit(decimal.NewFromInt(100), decimal.NewFromInt(40), decimal.NewFromInt(130), models.BalanceModeCombined)
	require.NoError(t, err)

	assert.True(t, fromMain.Equal(decimal.NewFromInt(100)), "main balance must be drained first")
	assert.True(t, fromBonus.Equal(decimal.NewFromInt(30)))
}

func TestSplitDebitCombinedInsufficient(t *testing.T) {
	_, _, err := SplitDebit(decimal.NewFromInt(100), decimal.NewFromInt(40), decimal.NewFromInt(141), models.BalanceModeCombined)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestSplitDebitSeparateNeverTouchesBonus(t *testing.T) {
	fromMain, fromBonus, err := SplitDebit(decimal.NewFromInt(100), decimal.NewFromInt(40), decimal.NewFromInt(100), models.BalanceModeSeparate)
	require.NoError(t, err)

	assert.True(t, fromMain.Equal(decimal.NewFromInt(100)))
	assert.True(t, fromBonus.IsZero())
}

func TestSplitDebitSeparateInsufficient(t *testing.T) {
	_, _, err := SplitDebit(decimal.NewFromInt(100), decimal.NewFromInt(40), decimal.NewFromInt(101), models.BalanceModeSeparate)
	assert.ErrorIs(t, err, ErrInsufficientBalance, "bonus funds must not rescue a separate-mode debit")
}

func TestSplitDebitNegativeAmount(t *testing.T) {
	_, _, err := SplitDebit(decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(-1), models.BalanceModeCombined)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientBalance)
}

func TestSplitDebitZeroAmount(t *testing.T) {
	fromMain, fromBonus, err := SplitDebit(decimal.Zero, decimal.Zero, decimal.Zero, models.BalanceModeCombined)
	require.NoError(t, err)

	assert.True(t, fromMain.IsZero())
	assert.True(t, fromBonus.IsZero())
}
