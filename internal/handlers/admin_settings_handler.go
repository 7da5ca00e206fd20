package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nexvpn/backend/internal/models"
	"github.com/nexvpn/backend/internal/services/referral"
)

// AdminSettingsHandler handles the admin-configured pricing, discount, and
// referral program settings. All range validation happens here, at the
// update boundary; the pricing engine trusts what it is handed.
type AdminSettingsHandler struct {
	db     *gorm.DB
	ledger *referral.LedgerService
}

// NewAdminSettingsHandler creates a new admin settings handler
func NewAdminSettingsHandler(db *gorm.DB) *AdminSettingsHandler {
	return &AdminSettingsHandler{db: db, ledger: referral.NewLedgerService(db)}
}

// GetGlobalDiscount returns the storewide discount settings
func (h *AdminSettingsHandler) GetGlobalDiscount(c *gin.Context) {
	var settings models.GlobalDiscountSettings
	if err := h.db.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateGlobalDiscount validates and persists the storewide discount
func (h *AdminSettingsHandler) UpdateGlobalDiscount(c *gin.Context) {
	var input struct {
		Enabled                   bool                `json:"enabled"`
		DiscountType              models.DiscountType `json:"discount_type" binding:"required"`
		DiscountValue             decimal.Decimal     `json:"discount_value"`
		StackDiscounts            bool                `json:"stack_discounts"`
		ApplyToSubscription       bool                `json:"apply_to_subscription"`
		ApplyToExtraDevices       bool                `json:"apply_to_extra_devices"`
		ApplyToTransferCommission bool                `json:"apply_to_transfer_commission"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := validateGlobalDiscount(input.DiscountType, input.DiscountValue); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var settings models.GlobalDiscountSettings
	if err := h.db.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	settings.Enabled = input.Enabled
	settings.DiscountType = input.DiscountType
	settings.DiscountValue = input.DiscountValue
	settings.StackDiscounts = input.StackDiscounts
	settings.ApplyToSubscription = input.ApplyToSubscription
	settings.ApplyToExtraDevices = input.ApplyToExtraDevices
	settings.ApplyToTransferCommission = input.ApplyToTransferCommission

	if err := h.db.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetReferralProgram returns the referral program settings
func (h *AdminSettingsHandler) GetReferralProgram(c *gin.Context) {
	var settings models.ReferralProgramSettings
	if err := h.db.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateReferralProgram validates and persists the referral program
func (h *AdminSettingsHandler) UpdateReferralProgram(c *gin.Context) {
	var input struct {
		Level           models.ProgramLevel    `json:"level" binding:"required"`
		RewardType      models.RewardType      `json:"reward_type" binding:"required"`
		AccrualStrategy models.AccrualStrategy `json:"accrual_strategy" binding:"required"`
		RewardStrategy  models.RewardStrategy  `json:"reward_strategy" binding:"required"`
		RewardConfig    models.JSON            `json:"reward_config"`
		BalanceMode     models.BalanceMode     `json:"balance_mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := validateReferralProgram(input.Level, input.RewardType, input.AccrualStrategy, input.RewardStrategy, input.BalanceMode); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var settings models.ReferralProgramSettings
	if err := h.db.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	settings.Level = input.Level
	settings.RewardType = input.RewardType
	settings.AccrualStrategy = input.AccrualStrategy
	settings.RewardStrategy = input.RewardStrategy
	settings.RewardConfig = input.RewardConfig
	settings.BalanceMode = input.BalanceMode

	if err := h.db.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetBillingSettings returns the exchange rates and device pricing knobs
func (h *AdminSettingsHandler) GetBillingSettings(c *gin.Context) {
	var settings models.BillingSettings
	if err := h.db.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateBillingSettings validates and persists rates and device pricing
func (h *AdminSettingsHandler) UpdateBillingSettings(c *gin.Context) {
	var input struct {
		UsdRate                 decimal.Decimal `json:"usd_rate"`
		EurRate                 decimal.Decimal `json:"eur_rate"`
		XtrRate                 decimal.Decimal `json:"xtr_rate"`
		ExtraDeviceMonthlyPrice decimal.Decimal `json:"extra_device_monthly_price"`
		MinExtraDeviceDays      int             `json:"min_extra_device_days"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, v := range []decimal.Decimal{input.UsdRate, input.EurRate, input.XtrRate, input.ExtraDeviceMonthlyPrice} {
		if v.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rates and prices must not be negative"})
			return
		}
	}
	if input.MinExtraDeviceDays < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_extra_device_days must not be negative"})
		return
	}

	var settings models.BillingSettings
	if err := h.db.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	settings.UsdRate = input.UsdRate
	settings.EurRate = input.EurRate
	settings.XtrRate = input.XtrRate
	settings.ExtraDeviceMonthlyPrice = input.ExtraDeviceMonthlyPrice
	settings.MinExtraDeviceDays = input.MinExtraDeviceDays

	if err := h.db.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateUserDiscount assigns a user's personal and one-time discounts
func (h *AdminSettingsHandler) UpdateUserDiscount(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	var input struct {
		PersonalDiscountPercent   int        `json:"personal_discount_percent"`
		PurchaseDiscountPercent   int        `json:"purchase_discount_percent"`
		PurchaseDiscountExpiresAt *time.Time `json:"purchase_discount_expires_at"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !percentInRange(input.PersonalDiscountPercent) || !percentInRange(input.PurchaseDiscountPercent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "discount percent must be between 0 and 100"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	user.PersonalDiscountPercent = input.PersonalDiscountPercent
	user.PurchaseDiscountPercent = input.PurchaseDiscountPercent
	user.PurchaseDiscountExpiresAt = input.PurchaseDiscountExpiresAt

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateDirectReward grants a pending reward manually, bypassing the
// accrual gate
func (h *AdminSettingsHandler) CreateDirectReward(c *gin.Context) {
	var input struct {
		ReferrerID uuid.UUID         `json:"referrer_id" binding:"required"`
		Amount     decimal.Decimal   `json:"amount" binding:"required"`
		RewardType models.RewardType `json:"reward_type" binding:"required"`
		Comment    string            `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.RewardType != models.RewardTypeMoney && input.RewardType != models.RewardTypeExtraDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown reward type"})
		return
	}
	if input.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
		return
	}

	reward, err := h.ledger.CreateDirectReward(input.ReferrerID, input.Amount, input.RewardType, input.Comment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reward"})
		return
	}
	c.JSON(http.StatusCreated, reward)
}

// validateGlobalDiscount enforces the settings-boundary ranges
func validateGlobalDiscount(discountType models.DiscountType, value decimal.Decimal) string {
	switch discountType {
	case models.DiscountTypePercent:
		if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(100)) {
			return "percent discount must be between 0 and 100"
		}
	case models.DiscountTypeFixed:
		if value.IsNegative() {
			return "fixed discount must not be negative"
		}
	default:
		return "unknown discount type"
	}
	return ""
}

// validateReferralProgram checks every enum field against its closed set
func validateReferralProgram(level models.ProgramLevel, rewardType models.RewardType, accrual models.AccrualStrategy, reward models.RewardStrategy, mode models.BalanceMode) string {
	if level != models.ProgramLevelOne && level != models.ProgramLevelTwo {
		return "unknown program level"
	}
	if rewardType != models.RewardTypeMoney && rewardType != models.RewardTypeExtraDays {
		return "unknown reward type"
	}
	if accrual != models.AccrualOnFirstPayment && accrual != models.AccrualOnEachPayment {
		return "unknown accrual strategy"
	}
	if reward != models.RewardStrategyAmount && reward != models.RewardStrategyPercent {
		return "unknown reward strategy"
	}
	if mode != models.BalanceModeCombined && mode != models.BalanceModeSeparate {
		return "unknown balance mode"
	}
	return ""
}

func percentInRange(v int) bool {
	return v >= 0 && v <= 100
}
