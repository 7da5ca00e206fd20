package models

import (
	"github.com/shopspring/decimal"
)

// Plan represents a purchasable subscription plan. Prices are stored in the
// base currency; the pricing engine converts and discounts per quote.
type Plan struct {
	Base
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Code            string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	DurationDays    int             `gorm:"not null" json:"duration_days"`
	Price           decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	DevicesIncluded int             `gorm:"default:1" json:"devices_included"`
	Active          bool            `gorm:"default:true" json:"active"`
}
