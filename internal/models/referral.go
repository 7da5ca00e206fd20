package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferralLevel is the depth of a referral relationship
type ReferralLevel string

const (
	ReferralLevelFirst  ReferralLevel = "first"
	ReferralLevelSecond ReferralLevel = "second"
)

// ProgramLevel is how many referral levels the program pays out on
type ProgramLevel string

const (
	ProgramLevelOne ProgramLevel = "one"
	ProgramLevelTwo ProgramLevel = "two"
)

// RewardType represents what a referral reward grants
type RewardType string

const (
	RewardTypeMoney     RewardType = "money"
	RewardTypeExtraDays RewardType = "extra_days"
)

// AccrualStrategy controls which payments by a referred user earn rewards
type AccrualStrategy string

const (
	AccrualOnFirstPayment AccrualStrategy = "on_first_payment"
	AccrualOnEachPayment  AccrualStrategy = "on_each_payment"
)

// RewardStrategy controls how a reward magnitude is read from the config:
// a flat amount, or a percent of the qualifying payment.
type RewardStrategy string

const (
	RewardStrategyAmount  RewardStrategy = "amount"
	RewardStrategyPercent RewardStrategy = "percent"
)

// BalanceMode controls whether pending referral money counts toward the
// spendable balance or must be withdrawn explicitly first
type BalanceMode string

const (
	BalanceModeCombined BalanceMode = "combined"
	BalanceModeSeparate BalanceMode = "separate"
)

// ReferralRelationship links a referred user to their referrer. A user can
// be referred at most once (unique index on ReferredID). Only the direct
// relationship is stored; second-level payouts walk the referrer's own
// relationship at accrual time rather than materializing extra rows.
type ReferralRelationship struct {
	Base
	ReferrerID uuid.UUID     `gorm:"type:uuid;not null;index" json:"referrer_id"`
	Referrer   User          `gorm:"foreignKey:ReferrerID" json:"-"`
	ReferredID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"referred_id"`
	Referred   User          `gorm:"foreignKey:ReferredID" json:"-"`
	Level      ReferralLevel `gorm:"type:varchar(10);not null;default:'first'" json:"level"`
}

// ReferralReward is a single ledger entry. It is created pending
// (IsIssued=false) and flips to issued exactly once, either when money is
// withdrawn to the main balance or when extra days are applied to a
// subscription. Issued rewards are immutable.
type ReferralReward struct {
	Base
	ReferrerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"referrer_id"`
	Referrer   User            `gorm:"foreignKey:ReferrerID" json:"-"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency   Currency        `gorm:"type:varchar(3);not null" json:"currency"`
	RewardType RewardType      `gorm:"type:varchar(20);not null" json:"reward_type"`
	IsIssued   bool            `gorm:"default:false;index" json:"is_issued"`
	IssuedAt   *time.Time      `json:"issued_at,omitempty"`

	// Reference of the payment that earned the reward; empty for direct
	// admin grants. Used to keep accrual idempotent per payment.
	PaymentReference string `gorm:"type:varchar(100);index" json:"payment_reference"`
	Comment          string `gorm:"type:text" json:"comment"`
}

// ReferralProgramSettings is the admin-configured referral program.
// RewardConfig maps a referral level to the reward magnitude: a flat amount
// when RewardStrategy is AMOUNT, a percent of the payment when PERCENT.
type ReferralProgramSettings struct {
	Base
	Level           ProgramLevel    `gorm:"type:varchar(5);not null;default:'one'" json:"level"`
	RewardType      RewardType      `gorm:"type:varchar(20);not null;default:'money'" json:"reward_type"`
	AccrualStrategy AccrualStrategy `gorm:"type:varchar(20);not null;default:'on_first_payment'" json:"accrual_strategy"`
	RewardStrategy  RewardStrategy  `gorm:"type:varchar(10);not null;default:'amount'" json:"reward_strategy"`
	RewardConfig    JSON            `gorm:"type:jsonb" json:"reward_config"`
	BalanceMode     BalanceMode     `gorm:"type:varchar(10);not null;default:'combined'" json:"balance_mode"`
}

// RewardValueForLevel reads the configured magnitude for a referral level.
// Config values arrive from jsonb as float64 or string; both are accepted.
func (s ReferralProgramSettings) RewardValueForLevel(level ReferralLevel) decimal.Decimal {
	raw, ok := s.RewardConfig[string(level)]
	if !ok {
		return decimal.Zero
	}
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// ReferralStats aggregates a referrer's standing for the referral dashboard
type ReferralStats struct {
	TotalReferrals int64           `json:"total_referrals"`
	PendingMoney   decimal.Decimal `json:"pending_money"`
	PendingDays    decimal.Decimal `json:"pending_days"`
	IssuedMoney    decimal.Decimal `json:"issued_money"`
}
