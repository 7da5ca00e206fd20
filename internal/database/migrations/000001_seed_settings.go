package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/nexvpn/backend/internal/models"
)

// SeedSettings ensures the three singleton settings rows exist so the
// pricing and referral services can always load them
func SeedSettings() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_seed_settings",
		Migrate: func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.GlobalDiscountSettings{}).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Create(&models.GlobalDiscountSettings{
					Enabled:             false,
					DiscountType:        models.DiscountTypePercent,
					ApplyToSubscription: true,
					ApplyToExtraDevices: true,
				}).Error; err != nil {
					return err
				}
			}

			if err := tx.Model(&models.ReferralProgramSettings{}).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Create(&models.ReferralProgramSettings{
					Level:           models.ProgramLevelOne,
					RewardType:      models.RewardTypeMoney,
					AccrualStrategy: models.AccrualOnFirstPayment,
					RewardStrategy:  models.RewardStrategyAmount,
					RewardConfig:    models.JSON{"first": 50.0, "second": 20.0},
					BalanceMode:     models.BalanceModeCombined,
				}).Error; err != nil {
					return err
				}
			}

			if err := tx.Model(&models.BillingSettings{}).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				if err := tx.Create(&models.BillingSettings{
					MinExtraDeviceDays: 10,
				}).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return nil
		},
	}
}
