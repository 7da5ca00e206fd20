package referral

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexvpn/backend/internal/models"
)

// LedgerService tracks referral relationships and reward records from
// accrual through withdrawal. Reward state is one-way: pending -> issued.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new referral ledger service
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// CreateReferral persists a referral relationship after checking the
// anti-abuse invariants: no self-referral, no re-parenting of an already
// referred user, and no direct cycles (A refers B, B refers A).
func (s *LedgerService) CreateReferral(referrerID, referredID uuid.UUID, level models.ReferralLevel) (*models.ReferralRelationship, error) {
	if referrerID == referredID {
		return nil, &InvalidReferralError{ReferrerID: referrerID, ReferredID: referredID, Reason: "self-referral"}
	}

	var existing models.ReferralRelationship
	err := s.db.Where("referred_id = ?", referredID).First(&existing).Error
	if err == nil {
		return nil, &InvalidReferralError{ReferrerID: referrerID, ReferredID: referredID, Reason: "user already referred"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking existing referral: %w", err)
	}

	err = s.db.Where("referrer_id = ? AND referred_id = ?", referredID, referrerID).First(&existing).Error
	if err == nil {
		return nil, &InvalidReferralError{ReferrerID: referrerID, ReferredID: referredID, Reason: "referral cycle"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking referral cycle: %w", err)
	}

	relationship := models.ReferralRelationship{
		ReferrerID: referrerID,
		ReferredID: referredID,
		Level:      level,
	}
	if err := s.db.Create(&relationship).Error; err != nil {
		return nil, fmt.Errorf("error creating referral: %w", err)
	}
	return &relationship, nil
}

// GetRelationshipForReferred returns the relationship in which the given
// user is the referred party, or nil when the user was not referred.
func (s *LedgerService) GetRelationshipForReferred(referredID uuid.UUID) (*models.ReferralRelationship, error) {
	var relationship models.ReferralRelationship
	err := s.db.Where("referred_id = ?", referredID).First(&relationship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding referral: %w", err)
	}
	return &relationship, nil
}

// AccrueReward creates a pending reward for a referrer if the accrual
// strategy admits the payment. It returns nil without error when the gate
// rejects the accrual. Idempotency per payment is the caller's contract;
// the ledger trusts it is invoked at most once per qualifying payment.
func (s *LedgerService) AccrueReward(referrerID uuid.UUID, rewardType models.RewardType, amount decimal.Decimal, currency models.Currency, strategy models.AccrualStrategy, isFirstPayment bool, paymentReference string) (*models.ReferralReward, error) {
	return s.AccrueRewardWithTx(s.db, referrerID, rewardType, amount, currency, strategy, isFirstPayment, paymentReference)
}

// AccrueRewardWithTx is AccrueReward composed into an existing transaction
func (s *LedgerService) AccrueRewardWithTx(tx *gorm.DB, referrerID uuid.UUID, rewardType models.RewardType, amount decimal.Decimal, currency models.Currency, strategy models.AccrualStrategy, isFirstPayment bool, paymentReference string) (*models.ReferralReward, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("reward amount must not be negative, got %s", amount)
	}
	if !accrualAllowed(strategy, isFirstPayment) {
		return nil, nil
	}

	reward := models.ReferralReward{
		ReferrerID:       referrerID,
		Amount:           amount,
		Currency:         currency,
		RewardType:       rewardType,
		PaymentReference: paymentReference,
	}
	if err := tx.Create(&reward).Error; err != nil {
		return nil, fmt.Errorf("error creating referral reward: %w", err)
	}
	return &reward, nil
}

// CreateDirectReward is an admin-initiated grant that bypasses the accrual
// gate. Used for manual balance adjustments.
func (s *LedgerService) CreateDirectReward(referrerID uuid.UUID, amount decimal.Decimal, rewardType models.RewardType, comment string) (*models.ReferralReward, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("reward amount must not be negative, got %s", amount)
	}

	reward := models.ReferralReward{
		ReferrerID: referrerID,
		Amount:     amount,
		Currency:   models.CurrencyRUB,
		RewardType: rewardType,
		Comment:    comment,
	}
	if err := s.db.Create(&reward).Error; err != nil {
		return nil, fmt.Errorf("error creating direct reward: %w", err)
	}
	return &reward, nil
}

// HasRewardForPayment reports whether a reward was already accrued for the
// given payment reference. Lets re-delivered gateway callbacks stay
// idempotent.
func (s *LedgerService) HasRewardForPayment(paymentReference string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.ReferralReward{}).Where("payment_reference = ?", paymentReference).Count(&count).Error; err != nil {
		return false, fmt.Errorf("error checking reward for payment: %w", err)
	}
	return count > 0, nil
}

// GetPendingRewardsAmount sums all non-issued rewards of the given type.
// The sum is computed from the live rows on every call; nothing is cached.
func (s *LedgerService) GetPendingRewardsAmount(referrerID uuid.UUID, rewardType models.RewardType) (decimal.Decimal, error) {
	return s.GetPendingRewardsAmountWithTx(s.db, referrerID, rewardType)
}

// GetPendingRewardsAmountWithTx is GetPendingRewardsAmount inside an
// existing transaction
func (s *LedgerService) GetPendingRewardsAmountWithTx(tx *gorm.DB, referrerID uuid.UUID, rewardType models.RewardType) (decimal.Decimal, error) {
	rewards, err := s.pendingRewards(tx, referrerID, rewardType, false)
	if err != nil {
		return decimal.Zero, err
	}
	return pendingTotal(rewards), nil
}

// WithdrawPendingRewards marks pending rewards issued, oldest first, until
// the cumulative issued amount covers the request. Rewards are issued as
// whole units, so the returned total may exceed the requested amount; the
// caller must credit the surplus back. Fails without touching any row when
// the request exceeds the pending total.
func (s *LedgerService) WithdrawPendingRewards(referrerID uuid.UUID, rewardType models.RewardType, amount decimal.Decimal) (decimal.Decimal, error) {
	var withdrawn decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		withdrawn, err = s.WithdrawPendingRewardsWithTx(tx, referrerID, rewardType, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return withdrawn, nil
}

// WithdrawPendingRewardsWithTx is WithdrawPendingRewards composed into an
// existing transaction, for callers that commit the withdrawal together
// with a balance mutation
func (s *LedgerService) WithdrawPendingRewardsWithTx(tx *gorm.DB, referrerID uuid.UUID, rewardType models.RewardType, amount decimal.Decimal) (decimal.Decimal, error) {
	rewards, err := s.pendingRewards(tx, referrerID, rewardType, true)
	if err != nil {
		return decimal.Zero, err
	}

	prefix, covered, err := withdrawalPrefix(rewards, amount)
	if err != nil {
		return decimal.Zero, err
	}

	now := time.Now()
	for i := range prefix {
		result := tx.Model(&models.ReferralReward{}).
			Where("id = ? AND is_issued = ?", prefix[i].ID, false).
			Updates(map[string]interface{}{"is_issued": true, "issued_at": now})
		if result.Error != nil {
			return decimal.Zero, fmt.Errorf("error issuing reward: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return decimal.Zero, ErrRewardAlreadyIssued
		}
	}
	return covered, nil
}

// MarkRewardAsIssued transitions a single reward to issued. Used when an
// extra-days reward is applied directly to a subscription instead of being
// routed through the balance.
func (s *LedgerService) MarkRewardAsIssued(rewardID uuid.UUID) error {
	now := time.Now()
	result := s.db.Model(&models.ReferralReward{}).
		Where("id = ? AND is_issued = ?", rewardID, false).
		Updates(map[string]interface{}{"is_issued": true, "issued_at": now})
	if result.Error != nil {
		return fmt.Errorf("error issuing reward: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRewardAlreadyIssued
	}
	return nil
}

// GetStats aggregates a referrer's standing for the referral dashboard
func (s *LedgerService) GetStats(referrerID uuid.UUID) (*models.ReferralStats, error) {
	stats := models.ReferralStats{
		PendingMoney: decimal.Zero,
		PendingDays:  decimal.Zero,
		IssuedMoney:  decimal.Zero,
	}

	if err := s.db.Model(&models.ReferralRelationship{}).Where("referrer_id = ?", referrerID).Count(&stats.TotalReferrals).Error; err != nil {
		return nil, fmt.Errorf("error counting referrals: %w", err)
	}

	var rewards []models.ReferralReward
	if err := s.db.Where("referrer_id = ?", referrerID).Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("error finding rewards: %w", err)
	}

	for _, r := range rewards {
		switch {
		case !r.IsIssued && r.RewardType == models.RewardTypeMoney:
			stats.PendingMoney = stats.PendingMoney.Add(r.Amount)
		case !r.IsIssued && r.RewardType == models.RewardTypeExtraDays:
			stats.PendingDays = stats.PendingDays.Add(r.Amount)
		case r.IsIssued && r.RewardType == models.RewardTypeMoney:
			stats.IssuedMoney = stats.IssuedMoney.Add(r.Amount)
		}
	}
	return &stats, nil
}

// pendingRewardsQuery builds the pending-reward scan, oldest first,
// optionally taking row locks for a mutating caller
func (s *LedgerService) pendingRewardsQuery(tx *gorm.DB, referrerID uuid.UUID, rewardType models.RewardType, forUpdate bool) *gorm.DB {
	query := tx.Where("referrer_id = ? AND reward_type = ? AND is_issued = ?", referrerID, rewardType, false).
		Order("created_at ASC")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query
}

func (s *LedgerService) pendingRewards(tx *gorm.DB, referrerID uuid.UUID, rewardType models.RewardType, forUpdate bool) ([]models.ReferralReward, error) {
	var rewards []models.ReferralReward
	if err := s.pendingRewardsQuery(tx, referrerID, rewardType, forUpdate).Find(&rewards).Error; err != nil {
		return nil, fmt.Errorf("error finding pending rewards: %w", err)
	}
	return rewards, nil
}
