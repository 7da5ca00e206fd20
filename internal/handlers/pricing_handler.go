package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nexvpn/backend/internal/models"
	"github.com/nexvpn/backend/internal/services/pricing"
	"github.com/nexvpn/backend/internal/services/purchase"
)

// PricingHandler handles quote requests
type PricingHandler struct {
	db          *gorm.DB
	purchaseSvc *purchase.Service
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(db *gorm.DB, purchaseSvc *purchase.Service) *PricingHandler {
	return &PricingHandler{db: db, purchaseSvc: purchaseSvc}
}

// QuotePlan prices a plan for the authenticated user in a target currency
func (h *PricingHandler) QuotePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		PlanCode string          `json:"plan_code" binding:"required"`
		Currency models.Currency `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Currency == "" {
		input.Currency = models.CurrencyRUB
	}

	quote, err := h.purchaseSvc.QuotePlan(userID, input.PlanCode, input.Currency, time.Now())
	if err != nil {
		respondPricingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original_amount":  quote.Details.OriginalAmount,
		"final_amount":     quote.Details.FinalAmount,
		"discount_percent": quote.Details.DiscountPercent,
		"is_free":          quote.Details.IsFree(),
		"currency":         input.Currency,
	})
}

// QuoteExtraDevices prices prorated add-on device slots
func (h *PricingHandler) QuoteExtraDevices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		DeviceCount    int  `json:"device_count" binding:"required"`
		UntilPeriodEnd bool `json:"until_period_end"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, days, err := h.purchaseSvc.QuoteExtraDevices(userID, input.DeviceCount, input.UntilPeriodEnd, time.Now())
	if err != nil {
		respondPricingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"original_amount":  quote.Details.OriginalAmount,
		"final_amount":     quote.Details.FinalAmount,
		"discount_percent": quote.Details.DiscountPercent,
		"days":             days,
	})
}

// currentUserID reads the authenticated user from the request context
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr := c.GetString("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return uuid.Nil, false
	}
	return userID, true
}

// respondPricingError maps typed pricing failures to distinct responses
func respondPricingError(c *gin.Context, err error) {
	var validationErr *pricing.ValidationError
	var rateErr *pricing.MissingExchangeRateError
	switch {
	case errors.Is(err, purchase.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rateErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute quote"})
	}
}
