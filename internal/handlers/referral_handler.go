package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexvpn/backend/internal/models"
	"github.com/nexvpn/backend/internal/services/balance"
	"github.com/nexvpn/backend/internal/services/referral"
	"github.com/nexvpn/backend/internal/utils"
)

// ReferralHandler handles referral relationships, stats, and withdrawals
type ReferralHandler struct {
	db       *gorm.DB
	ledger   *referral.LedgerService
	accounts *balance.AccountService
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(db *gorm.DB) *ReferralHandler {
	return &ReferralHandler{
		db:       db,
		ledger:   referral.NewLedgerService(db),
		accounts: balance.NewAccountService(db),
	}
}

// CreateReferral links the authenticated user to a referrer by referral
// code. Only the direct relationship is stored; second-level rewards are
// paid by walking the referrer's own relationship at accrual time.
func (h *ReferralHandler) CreateReferral(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		ReferralCode string `json:"referral_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var referrer models.User
	if err := h.db.Where("referral_code = ?", input.ReferralCode).First(&referrer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "referral code not found"})
		return
	}

	relationship, err := h.ledger.CreateReferral(referrer.ID, userID, models.ReferralLevelFirst)
	if err != nil {
		respondReferralError(c, err)
		return
	}
	c.JSON(http.StatusCreated, relationship)
}

// GetStats returns the authenticated user's referral standing
func (h *ReferralHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.ledger.GetStats(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Withdraw moves pending referral money into the main balance
func (h *ReferralHandler) Withdraw(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	withdrawn, err := h.accounts.WithdrawBonusToBalance(userID, input.Amount, utils.GenerateReference("WDR"))
	if err != nil {
		respondReferralError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": withdrawn})
}

// ApplyExtraDaysReward applies a pending extra-days reward directly to the
// user's subscription and marks it issued, in one transaction
func (h *ReferralHandler) ApplyExtraDaysReward(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward ID"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var reward models.ReferralReward
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reward, "id = ?", rewardID).Error; err != nil {
			return referral.ErrRewardAlreadyIssued
		}
		if reward.ReferrerID != userID || reward.RewardType != models.RewardTypeExtraDays {
			return referral.ErrRewardAlreadyIssued
		}

		ledger := referral.NewLedgerService(tx)
		if err := ledger.MarkRewardAsIssued(rewardID); err != nil {
			return err
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		now := time.Now()
		base := now
		if user.SubscriptionExpiresAt != nil && user.SubscriptionExpiresAt.After(now) {
			base = *user.SubscriptionExpiresAt
		}
		newExpiry := base.AddDate(0, 0, int(reward.Amount.IntPart()))
		user.SubscriptionExpiresAt = &newExpiry
		return tx.Save(&user).Error
	})
	if err != nil {
		respondReferralError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "applied"})
}

// respondReferralError maps typed referral failures to distinct responses
func respondReferralError(c *gin.Context, err error) {
	var invalidErr *referral.InvalidReferralError
	switch {
	case errors.As(err, &invalidErr):
		c.JSON(http.StatusConflict, gin.H{"error": invalidErr.Error()})
	case errors.Is(err, referral.ErrInsufficientRewardBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient reward balance"})
	case errors.Is(err, referral.ErrRewardAlreadyIssued):
		c.JSON(http.StatusConflict, gin.H{"error": "reward already issued or not found"})
	case errors.Is(err, balance.ErrInsufficientBalance):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient balance"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "referral operation failed"})
	}
}
