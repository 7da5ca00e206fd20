package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nexvpn/backend/internal/models"
)

// SeedPlans creates the default storefront plans on an empty deployment
func SeedPlans() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_seed_plans",
		Migrate: func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Plan{}).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return nil
			}

			plans := []models.Plan{
				{Name: "1 Month", DurationDays: 30, Price: decimal.NewFromInt(300), DevicesIncluded: 1, Active: true},
				{Name: "3 Months", DurationDays: 90, Price: decimal.NewFromInt(810), DevicesIncluded: 1, Active: true},
				{Name: "6 Months", DurationDays: 180, Price: decimal.NewFromInt(1530), DevicesIncluded: 1, Active: true},
				{Name: "12 Months", DurationDays: 360, Price: decimal.NewFromInt(2880), DevicesIncluded: 1, Active: true},
			}
			for i := range plans {
				plans[i].Code = slug.Make(plans[i].Name)
				if err := tx.Create(&plans[i]).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DELETE FROM plans").Error
		},
	}
}
