package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nexvpn/backend/internal/models"
	"github.com/nexvpn/backend/internal/services/balance"
	"github.com/nexvpn/backend/internal/services/purchase"
	"github.com/nexvpn/backend/internal/services/referral"
	"github.com/nexvpn/backend/internal/utils"
)

// BalanceHandler handles balance views, top-ups, and balance-paid purchases
type BalanceHandler struct {
	db          *gorm.DB
	accounts    *balance.AccountService
	ledger      *referral.LedgerService
	purchaseSvc *purchase.Service
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(db *gorm.DB, purchaseSvc *purchase.Service) *BalanceHandler {
	return &BalanceHandler{
		db:          db,
		accounts:    balance.NewAccountService(db),
		ledger:      referral.NewLedgerService(db),
		purchaseSvc: purchaseSvc,
	}
}

// GetBalance returns the main balance, pending bonus, and the spendable
// total under the configured balance mode
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	pending, err := h.ledger.GetPendingRewardsAmount(userID, models.RewardTypeMoney)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get pending rewards"})
		return
	}

	var program models.ReferralProgramSettings
	if err := h.db.First(&program).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":       user.Balance,
		"pending_bonus": pending,
		"spendable":     balance.Spendable(user.Balance, pending, program.BalanceMode),
		"balance_mode":  program.BalanceMode,
	})
}

// TopUp credits the main balance after a confirmed gateway payment
func (h *BalanceHandler) TopUp(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Amount    decimal.Decimal `json:"amount" binding:"required"`
		Reference string          `json:"reference"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Reference == "" {
		input.Reference = utils.GenerateReference("TOP")
	}

	record, err := h.accounts.Credit(userID, input.Amount, "top_up", input.Reference, "Balance top-up")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// PurchasePlan buys a subscription plan from the user's balance
func (h *BalanceHandler) PurchasePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		PlanCode string `json:"plan_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.purchaseSvc.PurchasePlanWithBalance(userID, input.PlanCode, time.Now())
	if err != nil {
		respondPurchaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// PurchaseExtraDevices buys prorated add-on devices from the balance
func (h *BalanceHandler) PurchaseExtraDevices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		DeviceCount    int  `json:"device_count" binding:"required"`
		AutoRenew      bool `json:"auto_renew"`
		UntilPeriodEnd bool `json:"until_period_end"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.purchaseSvc.PurchaseExtraDevicesWithBalance(userID, input.DeviceCount, input.AutoRenew, input.UntilPeriodEnd, time.Now())
	if err != nil {
		respondPurchaseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, device)
}

// respondPurchaseError maps purchase failures so the bot can tell an empty
// balance apart from a bad request
func respondPurchaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, balance.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient balance"})
	case errors.Is(err, purchase.ErrPlanNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
	default:
		respondPricingError(c, err)
	}
}
