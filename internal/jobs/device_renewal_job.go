package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexvpn/backend/internal/models"
	"github.com/nexvpn/backend/internal/queue"
	"github.com/nexvpn/backend/internal/services/balance"
	"github.com/nexvpn/backend/internal/services/pricing"
	"github.com/nexvpn/backend/internal/utils"
)

// DeviceRenewalJobType is the job type for the extra-device expiry sweep
const DeviceRenewalJobType queue.JobType = "device_renewal_check"

// DeviceRenewalJob deactivates expired extra-device purchases and renews
// the ones flagged auto-renew by charging a discounted month from the
// balance
type DeviceRenewalJob struct {
	db       *gorm.DB
	queue    *queue.RedisQueue
	accounts *balance.AccountService
	engine   *pricing.PricingEngine
}

// NewDeviceRenewalJob creates a new device renewal job handler
func NewDeviceRenewalJob(db *gorm.DB, q *queue.RedisQueue) *DeviceRenewalJob {
	return &DeviceRenewalJob{
		db:       db,
		queue:    q,
		accounts: balance.NewAccountService(db),
		engine:   pricing.NewPricingEngine(),
	}
}

// EnqueueSweep queues one expiry sweep; the scheduler calls this daily
func (j *DeviceRenewalJob) EnqueueSweep(ctx context.Context) error {
	_, err := j.queue.Enqueue(ctx, DeviceRenewalJobType, struct{}{}, 1)
	return err
}

// Process walks all expired active purchases and renews or deactivates each
func (j *DeviceRenewalJob) Process(ctx context.Context, job *queue.Job) error {
	now := time.Now()

	var expired []models.ExtraDevicePurchase
	if err := j.db.Where("is_active = ? AND expires_at <= ?", true, now).Find(&expired).Error; err != nil {
		return fmt.Errorf("failed to find expired device purchases: %w", err)
	}

	for i := range expired {
		device := &expired[i]
		if !device.AutoRenew {
			j.deactivate(device)
			continue
		}
		if err := j.renew(device, now); err != nil {
			log.Printf("Auto-renew failed for device purchase %s: %v", device.ID, err)
			j.deactivate(device)
		}
	}
	return nil
}

// renew charges a month for the device slots, priced through the engine so
// the same discounts the initial purchase got apply to every renewal, and
// pushes the expiry out by 30 days, in one transaction
func (j *DeviceRenewalJob) renew(device *models.ExtraDevicePurchase, now time.Time) error {
	return j.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", device.UserID).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		var billing models.BillingSettings
		if err := tx.First(&billing).Error; err != nil {
			return fmt.Errorf("failed to load billing settings: %w", err)
		}
		var global models.GlobalDiscountSettings
		if err := tx.First(&global).Error; err != nil {
			return fmt.Errorf("failed to load discount settings: %w", err)
		}
		var program models.ReferralProgramSettings
		if err := tx.First(&program).Error; err != nil {
			return fmt.Errorf("failed to load referral settings: %w", err)
		}

		quote, err := j.renewalQuote(user, billing, global, device.DeviceCount, now)
		if err != nil {
			return err
		}

		reference := utils.GenerateReference("DEV")
		if !quote.Details.IsFree() {
			if _, err := j.accounts.DebitWithTx(tx, device.UserID, quote.Details.FinalAmount, program.BalanceMode, "purchase", reference, fmt.Sprintf("Auto-renew %d extra devices", device.DeviceCount)); err != nil {
				return err
			}
		}

		if quote.ConsumePurchaseDiscount {
			// Reload: the debit rewrote the balance row.
			if err := tx.First(&user, "id = ?", device.UserID).Error; err != nil {
				return fmt.Errorf("failed to reload user: %w", err)
			}
			user.PurchaseDiscountPercent = 0
			user.PurchaseDiscountExpiresAt = nil
			if err := tx.Save(&user).Error; err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
		}

		device.Price = quote.Details.FinalAmount
		device.ExpiresAt = device.ExpiresAt.AddDate(0, 0, 30)
		if device.ExpiresAt.Before(now) {
			device.ExpiresAt = now.AddDate(0, 0, 30)
		}
		if err := tx.Save(device).Error; err != nil {
			return fmt.Errorf("failed to update device purchase: %w", err)
		}
		return nil
	})
}

// renewalQuote prices one renewal month of device slots for the user
func (j *DeviceRenewalJob) renewalQuote(user models.User, billing models.BillingSettings, global models.GlobalDiscountSettings, deviceCount int, now time.Time) (pricing.Quote, error) {
	monthly := billing.ExtraDeviceMonthlyPrice.Mul(decimal.NewFromInt(int64(deviceCount)))
	return j.engine.Calculate(user.DiscountState(), monthly, models.CurrencyRUB, global, models.ContextExtraDevices, now)
}

func (j *DeviceRenewalJob) deactivate(device *models.ExtraDevicePurchase) {
	device.IsActive = false
	if err := j.db.Save(device).Error; err != nil {
		log.Printf("Failed to deactivate device purchase %s: %v", device.ID, err)
	}
}
