package purchase

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexvpn/backend/internal/models"
	"github.com/nexvpn/backend/internal/services/balance"
	"github.com/nexvpn/backend/internal/services/pricing"
	"github.com/nexvpn/backend/internal/services/referral"
	"github.com/nexvpn/backend/internal/utils"
)

// ErrPlanNotFound is returned when a quote or purchase names an unknown or
// inactive plan
var ErrPlanNotFound = errors.New("plan not found")

// Service drives the purchase flow: it asks the pricing engine for quotes
// and executes purchases as single transactions covering the balance debit,
// discount consumption, and referral accrual.
type Service struct {
	db        *gorm.DB
	engine    *pricing.PricingEngine
	proration *pricing.ProrationCalculator
	ledger    *referral.LedgerService
	accounts  *balance.AccountService
}

// NewService creates a new purchase service
func NewService(db *gorm.DB, minExtraDeviceDays int) *Service {
	return &Service{
		db:        db,
		engine:    pricing.NewPricingEngine(),
		proration: pricing.NewProrationCalculator(minExtraDeviceDays),
		ledger:    referral.NewLedgerService(db),
		accounts:  balance.NewAccountService(db),
	}
}

// QuotePlan prices a plan for a user in the requested currency without any
// side effects. Calling it any number of times changes nothing.
func (s *Service) QuotePlan(userID uuid.UUID, planCode string, currency models.Currency, now time.Time) (*pricing.Quote, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	plan, err := s.findPlan(s.db, planCode)
	if err != nil {
		return nil, err
	}

	global, billing, _, err := s.loadSettings(s.db)
	if err != nil {
		return nil, err
	}

	quote, err := s.engine.CalculateInCurrency(user.DiscountState(), plan.Price, currency, billing.Rates(), *global, models.ContextSubscription, now)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// QuoteExtraDevices prices add-on device slots for the remainder of the
// user's subscription, prorated and discount-adjusted.
func (s *Service) QuoteExtraDevices(userID uuid.UUID, deviceCount int, untilPeriodEnd bool, now time.Time) (*pricing.Quote, int, error) {
	if deviceCount <= 0 {
		return nil, 0, &pricing.ValidationError{Field: "device_count", Message: "must be positive"}
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, 0, fmt.Errorf("error finding user: %w", err)
	}

	global, billing, _, err := s.loadSettings(s.db)
	if err != nil {
		return nil, 0, err
	}

	expireAt := now
	if user.SubscriptionExpiresAt != nil {
		expireAt = *user.SubscriptionExpiresAt
	}

	monthly := billing.ExtraDeviceMonthlyPrice.Mul(decimal.NewFromInt(int64(deviceCount)))
	var base decimal.Decimal
	var days int
	if untilPeriodEnd {
		base, days = s.proration.UntilCurrentBillingMonthEnd(monthly, expireAt, now)
	} else {
		base, days = s.proration.UntilSubscriptionEnd(monthly, expireAt, now)
	}

	quote, err := s.engine.Calculate(user.DiscountState(), base, models.CurrencyRUB, *global, models.ContextExtraDevices, now)
	if err != nil {
		return nil, 0, err
	}
	return &quote, days, nil
}

// PurchasePlanWithBalance executes a plan purchase paid from the user's
// balance. The debit, discount consumption, subscription extension, payment
// record, and referral accrual commit in one transaction; any failure rolls
// the whole purchase back.
func (s *Service) PurchasePlanWithBalance(userID uuid.UUID, planCode string, now time.Time) (*models.Payment, error) {
	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("error finding user: %w", err)
		}

		plan, err := s.findPlan(tx, planCode)
		if err != nil {
			return err
		}

		global, _, program, err := s.loadSettings(tx)
		if err != nil {
			return err
		}

		quote, err := s.engine.Calculate(user.DiscountState(), plan.Price, models.CurrencyRUB, *global, models.ContextSubscription, now)
		if err != nil {
			return err
		}

		reference := utils.GenerateReference("PAY")
		if !quote.Details.IsFree() {
			if _, err := s.accounts.DebitWithTx(tx, userID, quote.Details.FinalAmount, program.BalanceMode, "purchase", reference, fmt.Sprintf("Plan %s", plan.Code)); err != nil {
				return err
			}
		}

		firstPayment := !user.HasCompletedPurchase

		// Reload: the debit rewrote the balance row.
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("error reloading user: %w", err)
		}

		consumeQuoteDiscount(&user, &quote)

		expiry := now
		if user.SubscriptionExpiresAt != nil && user.SubscriptionExpiresAt.After(now) {
			expiry = *user.SubscriptionExpiresAt
		}
		newExpiry := expiry.AddDate(0, 0, plan.DurationDays)
		user.SubscriptionExpiresAt = &newExpiry
		user.HasCompletedPurchase = true

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("error updating user: %w", err)
		}

		completedAt := now
		payment = &models.Payment{
			UserID:          userID,
			Amount:          quote.Details.FinalAmount,
			OriginalAmount:  quote.Details.OriginalAmount,
			DiscountPercent: quote.Details.DiscountPercent,
			Currency:        models.CurrencyRUB,
			Purpose:         models.PurposeSubscription,
			Status:          models.PaymentStatusCompleted,
			Reference:       reference,
			CompletedAt:     &completedAt,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("error creating payment: %w", err)
		}

		return s.accrueReferralRewards(tx, userID, quote.Details.FinalAmount, *program, firstPayment, reference)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// PurchaseExtraDevicesWithBalance buys prorated device slots from the
// user's balance and records the ExtraDevicePurchase row, all in one
// transaction. Like the plan path, a one-time purchase discount that
// benefited the price is consumed before the transaction commits.
func (s *Service) PurchaseExtraDevicesWithBalance(userID uuid.UUID, deviceCount int, autoRenew, untilPeriodEnd bool, now time.Time) (*models.ExtraDevicePurchase, error) {
	if deviceCount <= 0 {
		return nil, &pricing.ValidationError{Field: "device_count", Message: "must be positive"}
	}

	var device *models.ExtraDevicePurchase
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("error finding user: %w", err)
		}

		global, billing, program, err := s.loadSettings(tx)
		if err != nil {
			return err
		}

		expireAt := now
		if user.SubscriptionExpiresAt != nil {
			expireAt = *user.SubscriptionExpiresAt
		}

		monthly := billing.ExtraDeviceMonthlyPrice.Mul(decimal.NewFromInt(int64(deviceCount)))
		var base decimal.Decimal
		var days int
		if untilPeriodEnd {
			base, days = s.proration.UntilCurrentBillingMonthEnd(monthly, expireAt, now)
		} else {
			base, days = s.proration.UntilSubscriptionEnd(monthly, expireAt, now)
		}

		quote, err := s.engine.Calculate(user.DiscountState(), base, models.CurrencyRUB, *global, models.ContextExtraDevices, now)
		if err != nil {
			return err
		}

		reference := utils.GenerateReference("DEV")
		if !quote.Details.IsFree() {
			if _, err := s.accounts.DebitWithTx(tx, userID, quote.Details.FinalAmount, program.BalanceMode, "purchase", reference, fmt.Sprintf("%d extra devices for %d days", deviceCount, days)); err != nil {
				return err
			}
		}

		if quote.ConsumePurchaseDiscount {
			// Reload: the debit rewrote the balance row.
			if err := tx.First(&user, "id = ?", userID).Error; err != nil {
				return fmt.Errorf("error reloading user: %w", err)
			}
			consumeQuoteDiscount(&user, &quote)
			if err := tx.Save(&user).Error; err != nil {
				return fmt.Errorf("error updating user: %w", err)
			}
		}

		device = &models.ExtraDevicePurchase{
			UserID:      userID,
			DeviceCount: deviceCount,
			Price:       quote.Details.FinalAmount,
			AutoRenew:   autoRenew,
			PurchasedAt: now,
			ExpiresAt:   now.AddDate(0, 0, days),
			IsActive:    true,
		}
		if err := tx.Create(device).Error; err != nil {
			return fmt.Errorf("error creating device purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

// AccrueForPayment accrues referral rewards for a completed gateway
// payment. Safe to call on re-delivered callbacks: if any reward already
// exists for the payment reference nothing is accrued again.
func (s *Service) AccrueForPayment(payerID uuid.UUID, paidAmount decimal.Decimal, firstPayment bool, reference string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		ledger := referral.NewLedgerService(tx)
		exists, err := ledger.HasRewardForPayment(reference)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		_, _, program, err := s.loadSettings(tx)
		if err != nil {
			return err
		}
		return s.accrueReferralRewards(tx, payerID, paidAmount, *program, firstPayment, reference)
	})
}

// accrueReferralRewards accrues first-level (and, for a two-level program,
// second-level) rewards for a completed payment. The accrual gate and the
// reward magnitudes come from the program settings.
func (s *Service) accrueReferralRewards(tx *gorm.DB, payerID uuid.UUID, paidAmount decimal.Decimal, program models.ReferralProgramSettings, firstPayment bool, reference string) error {
	ledger := referral.NewLedgerService(tx)

	relationship, err := ledger.GetRelationshipForReferred(payerID)
	if err != nil {
		return err
	}
	if relationship == nil {
		return nil
	}

	amount := s.rewardAmount(program, models.ReferralLevelFirst, paidAmount)
	if _, err := ledger.AccrueRewardWithTx(tx, relationship.ReferrerID, program.RewardType, amount, models.CurrencyRUB, program.AccrualStrategy, firstPayment, reference); err != nil {
		return err
	}

	if program.Level != models.ProgramLevelTwo {
		return nil
	}

	parent, err := ledger.GetRelationshipForReferred(relationship.ReferrerID)
	if err != nil {
		return err
	}
	if parent == nil {
		return nil
	}

	amount = s.rewardAmount(program, models.ReferralLevelSecond, paidAmount)
	_, err = ledger.AccrueRewardWithTx(tx, parent.ReferrerID, program.RewardType, amount, models.CurrencyRUB, program.AccrualStrategy, firstPayment, reference)
	return err
}

// consumeQuoteDiscount clears the one-time purchase discount when the
// quoted price benefited from it. Every sale path that charges a quote
// must call this before committing, so the discount is spent exactly once
// no matter which kind of purchase used it.
func consumeQuoteDiscount(user *models.User, quote *pricing.Quote) {
	if !quote.ConsumePurchaseDiscount {
		return
	}
	user.PurchaseDiscountPercent = 0
	user.PurchaseDiscountExpiresAt = nil
}

// rewardAmount reads the configured magnitude for a level: a flat amount,
// or a percent share of the payment rounded to the base minor unit
func (s *Service) rewardAmount(program models.ReferralProgramSettings, level models.ReferralLevel, paidAmount decimal.Decimal) decimal.Decimal {
	value := program.RewardValueForLevel(level)
	if program.RewardStrategy == models.RewardStrategyPercent {
		return paidAmount.Mul(value).Div(decimal.NewFromInt(100)).Round(2)
	}
	return value
}

func (s *Service) findPlan(tx *gorm.DB, code string) (*models.Plan, error) {
	var plan models.Plan
	err := tx.Where("code = ? AND active = ?", code, true).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding plan: %w", err)
	}
	return &plan, nil
}

// loadSettings fetches the three settings rows the purchase flow depends
// on. Each is a single row seeded by the migrations.
func (s *Service) loadSettings(tx *gorm.DB) (*models.GlobalDiscountSettings, *models.BillingSettings, *models.ReferralProgramSettings, error) {
	var global models.GlobalDiscountSettings
	if err := tx.First(&global).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("error loading discount settings: %w", err)
	}

	var billing models.BillingSettings
	if err := tx.First(&billing).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("error loading billing settings: %w", err)
	}

	var program models.ReferralProgramSettings
	if err := tx.First(&program).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("error loading referral settings: %w", err)
	}
	return &global, &billing, &program, nil
}
