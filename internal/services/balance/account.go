package balance

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexvpn/backend/internal/models"
	"github.com/nexvpn/backend/internal/services/referral"
)

// ErrInsufficientBalance is returned when a debit exceeds the spendable
// balance for the configured mode
var ErrInsufficientBalance = errors.New("insufficient balance")

// Spendable returns the balance a user may spend right now. In combined
// mode pending referral money counts alongside the main balance; in
// separate mode it must be withdrawn explicitly first.
func Spendable(mainBalance, pendingBonus decimal.Decimal, mode models.BalanceMode) decimal.Decimal {
	if mode == models.BalanceModeCombined {
		return mainBalance.Add(pendingBonus)
	}
	return mainBalance
}

// SplitDebit computes how a debit divides between the main balance and the
// referral bonus. Main balance is always spent first; bonus funds are only
// touched in combined mode.
func SplitDebit(mainBalance, pendingBonus, amount decimal.Decimal, mode models.BalanceMode) (fromMain, fromBonus decimal.Decimal, err error) {
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("debit amount must not be negative, got %s", amount)
	}
	if amount.GreaterThan(Spendable(mainBalance, pendingBonus, mode)) {
		return decimal.Zero, decimal.Zero, ErrInsufficientBalance
	}

	if mode == models.BalanceModeSeparate {
		return amount, decimal.Zero, nil
	}

	fromMain = amount
	if mainBalance.LessThan(amount) {
		fromMain = mainBalance
	}
	return fromMain, amount.Sub(fromMain), nil
}

// AccountService reconciles a user's main balance with their referral
// bonus balance and performs atomic debits that may split across both.
type AccountService struct {
	db     *gorm.DB
	ledger *referral.LedgerService
}

// NewAccountService creates a new balance account service
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db, ledger: referral.NewLedgerService(db)}
}

// GetSpendableBalance returns the user's spendable balance under the given
// mode, read fresh from the main balance and the pending reward sum.
func (s *AccountService) GetSpendableBalance(userID uuid.UUID, mode models.BalanceMode) (decimal.Decimal, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return decimal.Zero, fmt.Errorf("error finding user: %w", err)
	}

	pending, err := s.ledger.GetPendingRewardsAmount(userID, models.RewardTypeMoney)
	if err != nil {
		return decimal.Zero, err
	}
	return Spendable(user.Balance, pending, mode), nil
}

// Credit adds funds to the user's main balance and records an audit row
func (s *AccountService) Credit(userID uuid.UUID, amount decimal.Decimal, txType, reference, description string) (*models.BalanceTransaction, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("credit amount must not be negative, got %s", amount)
	}

	var record *models.BalanceTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("error finding user: %w", err)
		}

		balanceBefore := user.Balance
		user.Balance = user.Balance.Add(amount)
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("error updating balance: %w", err)
		}

		record = &models.BalanceTransaction{
			UserID:        userID,
			Type:          txType,
			Amount:        amount,
			FromBonus:     decimal.Zero,
			Currency:      models.CurrencyRUB,
			Reference:     reference,
			Description:   description,
			BalanceBefore: balanceBefore,
			BalanceAfter:  user.Balance,
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("error creating transaction record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// WithdrawBonusToBalance moves pending referral money into the main
// balance: the reward issuance and the balance credit commit together.
// Returns the amount actually moved, which may exceed the request because
// rewards are issued as whole units.
func (s *AccountService) WithdrawBonusToBalance(userID uuid.UUID, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	var withdrawn decimal.Decimal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("error finding user: %w", err)
		}

		var err error
		withdrawn, err = s.ledger.WithdrawPendingRewardsWithTx(tx, userID, models.RewardTypeMoney, amount)
		if err != nil {
			return err
		}

		balanceBefore := user.Balance
		user.Balance = user.Balance.Add(withdrawn)
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("error updating balance: %w", err)
		}

		record := &models.BalanceTransaction{
			UserID:        userID,
			Type:          "referral_withdrawal",
			Amount:        withdrawn,
			FromBonus:     withdrawn,
			Currency:      models.CurrencyRUB,
			Reference:     reference,
			Description:   "Referral bonus withdrawal",
			BalanceBefore: balanceBefore,
			BalanceAfter:  user.Balance,
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("error creating transaction record: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return withdrawn, nil
}

// Debit removes funds atomically: the balance decrement and the issuance of
// any bonus rewards spent commit together in one transaction, so concurrent
// purchase attempts cannot double-spend.
func (s *AccountService) Debit(userID uuid.UUID, amount decimal.Decimal, mode models.BalanceMode, txType, reference, description string) (*models.BalanceTransaction, error) {
	var record *models.BalanceTransaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = s.DebitWithTx(tx, userID, amount, mode, txType, reference, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DebitWithTx is Debit composed into an existing transaction, for callers
// that commit the debit alongside other purchase writes
func (s *AccountService) DebitWithTx(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, mode models.BalanceMode, txType, reference, description string) (*models.BalanceTransaction, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	pending, err := s.ledger.GetPendingRewardsAmountWithTx(tx, userID, models.RewardTypeMoney)
	if err != nil {
		return nil, err
	}

	fromMain, fromBonus, err := SplitDebit(user.Balance, pending, amount, mode)
	if err != nil {
		return nil, err
	}

	balanceBefore := user.Balance
	newBalance := user.Balance.Sub(fromMain)

	if fromBonus.IsPositive() {
		withdrawn, err := s.ledger.WithdrawPendingRewardsWithTx(tx, userID, models.RewardTypeMoney, fromBonus)
		if err != nil {
			return nil, err
		}
		// Rewards are issued as whole units; any surplus over what the
		// debit needed lands back on the main balance.
		newBalance = newBalance.Add(withdrawn.Sub(fromBonus))
	}

	user.Balance = newBalance
	if err := tx.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("error updating balance: %w", err)
	}

	record := &models.BalanceTransaction{
		UserID:        userID,
		Type:          txType,
		Amount:        amount.Neg(),
		FromBonus:     fromBonus,
		Currency:      models.CurrencyRUB,
		Reference:     reference,
		Description:   description,
		BalanceBefore: balanceBefore,
		BalanceAfter:  user.Balance,
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, fmt.Errorf("error creating transaction record: %w", err)
	}
	return record, nil
}
