package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExtraDevicePurchase represents add-on device slots bought for an active
// subscription. Created on successful purchase; deactivated by the renewal
// job once expired and not auto-renewed, or renewed in place (new ExpiresAt)
// when auto-renew succeeds.
type ExtraDevicePurchase struct {
	Base
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User            `gorm:"foreignKey:UserID" json:"-"`
	DeviceCount int             `gorm:"not null" json:"device_count"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	AutoRenew   bool            `gorm:"default:false" json:"auto_renew"`
	PurchasedAt time.Time       `gorm:"not null" json:"purchased_at"`
	ExpiresAt   time.Time       `gorm:"not null;index" json:"expires_at"`
	IsActive    bool            `gorm:"default:true;index" json:"is_active"`
}
