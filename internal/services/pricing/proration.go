package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinExtraDeviceDays is the billable-days floor applied to every
// prorated device charge. It prevents near-zero micro-charges for devices
// bought just before a subscription expires.
const DefaultMinExtraDeviceDays = 10

// prorationMonthDays is the billing month length proration assumes
const prorationMonthDays = 30

var monthDays = decimal.NewFromInt(prorationMonthDays)

// ProrationCalculator prices add-on device slots for partial billing
// periods
type ProrationCalculator struct {
	minDays int
}

// NewProrationCalculator creates a proration calculator with the given
// billable-days floor; non-positive values fall back to the default.
func NewProrationCalculator(minDays int) *ProrationCalculator {
	if minDays <= 0 {
		minDays = DefaultMinExtraDeviceDays
	}
	return &ProrationCalculator{minDays: minDays}
}

// UntilSubscriptionEnd prices device slots for the days remaining until
// the subscription expires. An already-expired subscription degrades to a
// full month.
func (p *ProrationCalculator) UntilSubscriptionEnd(monthlyPrice decimal.Decimal, expireAt, now time.Time) (decimal.Decimal, int) {
	days := daysUntil(expireAt, now)
	if days <= 0 {
		return monthlyPrice.Round(2), prorationMonthDays
	}
	if days < p.minDays {
		days = p.minDays
	}
	return p.priceForDays(monthlyPrice, days), days
}

// UntilCurrentBillingMonthEnd prices device slots for the remainder of the
// current 30-day sub-period, counted backward from the subscription expiry.
// A remainder of exactly zero means a full period remains.
func (p *ProrationCalculator) UntilCurrentBillingMonthEnd(monthlyPrice decimal.Decimal, expireAt, now time.Time) (decimal.Decimal, int) {
	total := daysUntil(expireAt, now)
	if total <= 0 {
		return monthlyPrice.Round(2), prorationMonthDays
	}

	days := total % prorationMonthDays
	if days == 0 {
		days = prorationMonthDays
	}
	if days < p.minDays {
		days = p.minDays
	}
	return p.priceForDays(monthlyPrice, days), days
}

func (p *ProrationCalculator) priceForDays(monthlyPrice decimal.Decimal, days int) decimal.Decimal {
	return monthlyPrice.Div(monthDays).Mul(decimal.NewFromInt(int64(days))).Round(2)
}

// daysUntil returns the number of whole-or-partial days between now and t,
// rounding any partial day up
func daysUntil(t, now time.Time) int {
	diff := t.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}
