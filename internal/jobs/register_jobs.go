package jobs

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/nexvpn/backend/internal/queue"
	"github.com/nexvpn/backend/internal/services/purchase"
)

// RegisterAllJobHandlers wires every job handler into the worker and
// schedules the recurring sweeps
func RegisterAllJobHandlers(worker *queue.Worker, q *queue.RedisQueue, db *gorm.DB, purchaseSvc *purchase.Service) error {
	rewardJob := NewReferralRewardJob(db, q, purchaseSvc)
	worker.RegisterHandler(ReferralRewardJobType, rewardJob.Process)

	renewalJob := NewDeviceRenewalJob(db, q)
	worker.RegisterHandler(DeviceRenewalJobType, renewalJob.Process)

	return worker.ScheduleDaily("03:00", func() {
		if err := renewalJob.EnqueueSweep(context.Background()); err != nil {
			log.Printf("Failed to enqueue device renewal sweep: %v", err)
		}
	})
}
