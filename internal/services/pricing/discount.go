package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexvpn/backend/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Resolution is the outcome of discount resolution for one pricing call.
// GlobalFixed is non-zero only when the global discount is a fixed amount;
// converting it to a percent needs the concrete base price, which the
// pricing engine supplies via Effective.
type Resolution struct {
	UserPercent int
	GlobalPct   decimal.Decimal
	GlobalFixed decimal.Decimal
	Stack       bool

	// Temporary is true when the one-time purchase discount is the winning
	// user-side discount. The caller uses it to decide whether to consume
	// the purchase discount once the sale completes.
	Temporary bool
}

// DiscountResolver computes the user-side and global discount inputs for a
// pricing context. Inputs are trusted to be pre-validated into [0,100] at
// the settings boundary.
type DiscountResolver struct{}

// NewDiscountResolver creates a new discount resolver
func NewDiscountResolver() *DiscountResolver {
	return &DiscountResolver{}
}

// Resolve computes the discount resolution for a user at the given moment.
// Only one user-side discount applies at a time: the unexpired purchase
// discount and the personal discount compete and the larger wins.
func (r *DiscountResolver) Resolve(state models.DiscountState, now time.Time, global models.GlobalDiscountSettings, ctx models.PricingContext) Resolution {
	purchase := 0
	if state.PurchasePercent > 0 && (state.PurchaseExpiresAt == nil || state.PurchaseExpiresAt.After(now)) {
		purchase = state.PurchasePercent
	}

	res := Resolution{UserPercent: state.PersonalPercent}
	if purchase >= state.PersonalPercent && purchase > 0 {
		res.UserPercent = purchase
		res.Temporary = true
	}

	if !global.AppliesTo(ctx) {
		return res
	}

	res.Stack = global.StackDiscounts
	switch global.DiscountType {
	case models.DiscountTypePercent:
		res.GlobalPct = global.DiscountValue
	case models.DiscountTypeFixed:
		res.GlobalFixed = global.DiscountValue
	}
	return res
}

// Effective combines the user-side and global discounts against a concrete
// base price. It returns the effective percent in [0,100] and whether the
// user-side discount contributed to it (false when a larger non-stacking
// global discount won).
func (res Resolution) Effective(basePrice decimal.Decimal) (decimal.Decimal, bool) {
	user := decimal.NewFromInt(int64(res.UserPercent))

	global := res.GlobalPct
	if res.GlobalFixed.IsPositive() && basePrice.IsPositive() {
		global = res.GlobalFixed.Div(basePrice).Mul(hundred)
	}
	if global.GreaterThan(hundred) {
		global = hundred
	}

	if res.Stack {
		effective := user.Add(global)
		if effective.GreaterThan(hundred) {
			effective = hundred
		}
		return effective, res.UserPercent > 0
	}

	if user.GreaterThanOrEqual(global) {
		return user, res.UserPercent > 0
	}
	return global, false
}
