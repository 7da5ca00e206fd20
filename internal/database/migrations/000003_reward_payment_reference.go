package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// AddRewardPaymentReferenceIndex backs the per-payment accrual idempotency
// check with a composite index
func AddRewardPaymentReferenceIndex() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_reward_payment_reference",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE INDEX IF NOT EXISTS idx_referral_rewards_payment_referrer
				ON referral_rewards (payment_reference, referrer_id)
				WHERE payment_reference <> ''
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP INDEX IF EXISTS idx_referral_rewards_payment_referrer").Error
		},
	}
}
