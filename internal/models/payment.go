package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentPurpose identifies what a payment bought
type PaymentPurpose string

const (
	PurposeSubscription PaymentPurpose = "subscription"
	PurposeExtraDevices PaymentPurpose = "extra_devices"
	PurposeTopUp        PaymentPurpose = "top_up"
)

// Payment records a completed (or attempted) purchase. Reference is unique
// and doubles as the idempotency key for referral accrual: a re-delivered
// gateway callback finds the existing row and accrues nothing twice.
type Payment struct {
	Base
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	OriginalAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"original_amount"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount_percent"`
	Currency        Currency        `gorm:"type:varchar(3);not null" json:"currency"`
	Purpose         PaymentPurpose  `gorm:"type:varchar(20);not null" json:"purpose"`
	Status          PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Reference       string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	MetaData        JSON            `gorm:"type:jsonb" json:"metadata"`
}
