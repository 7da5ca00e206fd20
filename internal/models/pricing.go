package models

import (
	"github.com/shopspring/decimal"
)

// Currency represents supported payment currencies. RUB is the base
// currency all plan prices are stored in; XTR is Telegram Stars.
type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyXTR Currency = "XTR"
)

// MinorUnitPlaces returns the number of fractional digits amounts in this
// currency are rounded to at the output boundary. Telegram Stars are whole
// units.
func (c Currency) MinorUnitPlaces() int32 {
	if c == CurrencyXTR {
		return 0
	}
	return 2
}

// ExchangeRates holds the admin-configured exchange rates, expressed as
// base-currency units (rubles) per one unit of the target currency.
type ExchangeRates struct {
	USD decimal.Decimal `json:"usd"`
	EUR decimal.Decimal `json:"eur"`
	XTR decimal.Decimal `json:"xtr"`
}

// DiscountType represents how a global discount value is interpreted
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// PricingContext identifies which kind of charge is being priced. Global
// discounts are gated per context.
type PricingContext string

const (
	ContextSubscription       PricingContext = "subscription"
	ContextExtraDevices       PricingContext = "extra_devices"
	ContextTransferCommission PricingContext = "transfer_commission"
)

// GlobalDiscountSettings is the admin-configured storewide discount.
// A single row is kept; updates go through the settings handler which
// validates ranges before anything is persisted.
type GlobalDiscountSettings struct {
	Base
	Enabled                   bool            `gorm:"default:false" json:"enabled"`
	DiscountType              DiscountType    `gorm:"type:varchar(10);not null;default:'percent'" json:"discount_type"`
	DiscountValue             decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"discount_value"`
	StackDiscounts            bool            `gorm:"default:false" json:"stack_discounts"`
	ApplyToSubscription       bool            `gorm:"default:true" json:"apply_to_subscription"`
	ApplyToExtraDevices       bool            `gorm:"default:true" json:"apply_to_extra_devices"`
	ApplyToTransferCommission bool            `gorm:"default:false" json:"apply_to_transfer_commission"`
}

// AppliesTo reports whether the global discount is switched on for the
// given pricing context.
func (s GlobalDiscountSettings) AppliesTo(ctx PricingContext) bool {
	if !s.Enabled {
		return false
	}
	switch ctx {
	case ContextSubscription:
		return s.ApplyToSubscription
	case ContextExtraDevices:
		return s.ApplyToExtraDevices
	case ContextTransferCommission:
		return s.ApplyToTransferCommission
	default:
		return false
	}
}

// PriceDetails is the immutable result of a pricing calculation.
// FinalAmount is always within [0, OriginalAmount].
type PriceDetails struct {
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// IsFree reports whether the discounted price is zero
func (p PriceDetails) IsFree() bool {
	return p.FinalAmount.IsZero()
}
