package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceTransaction is an audit row for every main-balance mutation.
// Amount is positive for credits and negative for debits; FromBonus records
// how much of a debit was satisfied by withdrawing referral rewards.
type BalanceTransaction struct {
	Base
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User          User            `gorm:"foreignKey:UserID" json:"-"`
	Type          string          `gorm:"type:varchar(50);not null" json:"type"` // top_up, purchase, referral_withdrawal, refund
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	FromBonus     decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"from_bonus"`
	Currency      Currency        `gorm:"type:varchar(3);not null" json:"currency"`
	Reference     string          `gorm:"type:varchar(100);index" json:"reference"`
	Description   string          `gorm:"type:text" json:"description"`
	MetaData      JSON            `gorm:"type:jsonb" json:"metadata"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(20,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(20,2)" json:"balance_after"`
}
