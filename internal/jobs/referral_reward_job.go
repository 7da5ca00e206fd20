package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nexvpn/backend/internal/queue"
	"github.com/nexvpn/backend/internal/services/purchase"
)

// ReferralRewardJobType is the job type for accruing referral rewards
const ReferralRewardJobType queue.JobType = "accrue_referral_reward"

// ReferralRewardJobPayload carries the completed payment a reward may be
// owed for
type ReferralRewardJobPayload struct {
	PayerID          uuid.UUID       `json:"payer_id"`
	Amount           decimal.Decimal `json:"amount"`
	IsFirstPayment   bool            `json:"is_first_payment"`
	PaymentReference string          `json:"payment_reference"`
}

// ReferralRewardJob accrues referral rewards for payments confirmed by
// gateway callbacks
type ReferralRewardJob struct {
	db          *gorm.DB
	queue       *queue.RedisQueue
	purchaseSvc *purchase.Service
}

// NewReferralRewardJob creates a new referral reward job handler
func NewReferralRewardJob(db *gorm.DB, q *queue.RedisQueue, purchaseSvc *purchase.Service) *ReferralRewardJob {
	return &ReferralRewardJob{db: db, queue: q, purchaseSvc: purchaseSvc}
}

// Enqueue queues an accrual for a completed payment
func (j *ReferralRewardJob) Enqueue(ctx context.Context, payload ReferralRewardJobPayload) error {
	_, err := j.queue.Enqueue(ctx, ReferralRewardJobType, payload, 3)
	return err
}

// Process accrues the reward. The purchase service checks the payment
// reference first, so re-delivered jobs accrue nothing twice.
func (j *ReferralRewardJob) Process(ctx context.Context, job *queue.Job) error {
	var payload ReferralRewardJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal referral reward payload: %w", err)
	}

	if err := j.purchaseSvc.AccrueForPayment(payload.PayerID, payload.Amount, payload.IsFirstPayment, payload.PaymentReference); err != nil {
		return fmt.Errorf("failed to accrue referral reward: %w", err)
	}

	log.Printf("Processed referral accrual for payment %s", payload.PaymentReference)
	return nil
}
