package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a storefront customer reached through the Telegram bot
type User struct {
	Base
	TelegramID   int64  `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username     string `gorm:"type:varchar(255)" json:"username"`
	ReferralCode string `gorm:"type:varchar(50);uniqueIndex" json:"referral_code"`

	// Main balance in the base currency (rubles). Referral bonus funds live
	// in the referral ledger, not here.
	Balance decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"balance"`

	// Discount state. The personal discount is permanent and admin-assigned;
	// the purchase discount is one-time and may carry an expiry. Both are
	// validated into [0,100] at the settings boundary.
	PersonalDiscountPercent   int        `gorm:"default:0" json:"personal_discount_percent"`
	PurchaseDiscountPercent   int        `gorm:"default:0" json:"purchase_discount_percent"`
	PurchaseDiscountExpiresAt *time.Time `json:"purchase_discount_expires_at,omitempty"`

	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`

	// Set on the first completed paid purchase; gates ON_FIRST_PAYMENT
	// referral accrual.
	HasCompletedPurchase bool `gorm:"default:false" json:"has_completed_purchase"`
}

// DiscountState is the value-object subset of User the pricing engine
// operates on, so pricing stays a pure function of its arguments.
type DiscountState struct {
	PersonalPercent   int
	PurchasePercent   int
	PurchaseExpiresAt *time.Time
}

// DiscountState extracts the user's discount fields
func (u User) DiscountState() DiscountState {
	return DiscountState{
		PersonalPercent:   u.PersonalDiscountPercent,
		PurchasePercent:   u.PurchaseDiscountPercent,
		PurchaseExpiresAt: u.PurchaseDiscountExpiresAt,
	}
}
