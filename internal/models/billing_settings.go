package models

import (
	"github.com/shopspring/decimal"
)

// BillingSettings is the admin-configured pricing backbone: exchange rates
// against the base currency and the extra-device pricing knobs. A single
// row is kept alongside the other settings rows.
type BillingSettings struct {
	Base
	UsdRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"usd_rate"`
	EurRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"eur_rate"`
	XtrRate decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"xtr_rate"`

	ExtraDeviceMonthlyPrice decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"extra_device_monthly_price"`
	MinExtraDeviceDays      int             `gorm:"default:10" json:"min_extra_device_days"`
}

// Rates packs the configured rates into the value object the currency
// converter consumes
func (s BillingSettings) Rates() ExchangeRates {
	return ExchangeRates{USD: s.UsdRate, EUR: s.EurRate, XTR: s.XtrRate}
}
