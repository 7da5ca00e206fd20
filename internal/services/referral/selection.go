package referral

import (
	"github.com/shopspring/decimal"

	"github.com/nexvpn/backend/internal/models"
)

// Pure ledger arithmetic. The service methods load rows and delegate here,
// so the invariants stay testable without a database.

// pendingTotal sums the amounts of all non-issued rewards in the slice
func pendingTotal(rewards []models.ReferralReward) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rewards {
		if !r.IsIssued {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// withdrawalPrefix selects the minimal oldest-first prefix of pending
// rewards whose cumulative amount covers the requested amount. Rewards are
// issued as whole units, so the returned total may exceed the request; the
// caller credits the surplus back to the main balance. The input slice must
// already be ordered oldest first.
func withdrawalPrefix(rewards []models.ReferralReward, amount decimal.Decimal) ([]models.ReferralReward, decimal.Decimal, error) {
	if amount.IsNegative() {
		return nil, decimal.Zero, ErrInsufficientRewardBalance
	}
	if amount.GreaterThan(pendingTotal(rewards)) {
		return nil, decimal.Zero, ErrInsufficientRewardBalance
	}

	var prefix []models.ReferralReward
	covered := decimal.Zero
	for _, r := range rewards {
		if covered.GreaterThanOrEqual(amount) {
			break
		}
		if r.IsIssued {
			continue
		}
		prefix = append(prefix, r)
		covered = covered.Add(r.Amount)
	}
	return prefix, covered, nil
}

// accrualAllowed applies the program's accrual-strategy gate
func accrualAllowed(strategy models.AccrualStrategy, isFirstPayment bool) bool {
	switch strategy {
	case models.AccrualOnFirstPayment:
		return isFirstPayment
	case models.AccrualOnEachPayment:
		return true
	default:
		return false
	}
}
