package referral

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"

	"github.com/nexvpn/backend/internal/models"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestCreateReferralRejectsSelfReferral(t *testing.T) {
	svc := NewLedgerService(nil)

	_, err := svc.CreateReferral(uuid.Nil, uuid.Nil, models.ReferralLevelFirst)

	var invalidErr *InvalidReferralError
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "self-referral", invalidErr.Reason)
}

func TestPendingRewardsQueryLocksRowsForUpdate(t *testing.T) {
	db := dryRunDB(t)
	svc := NewLedgerService(db)

	var rewards []models.ReferralReward
	result := svc.pendingRewardsQuery(db, uuid.New(), models.RewardTypeMoney, true).Find(&rewards)
	require.NoError(t, result.Error)

	assert.Contains(t, result.Statement.SQL.String(), "FOR UPDATE",
		"a mutating withdrawal must take row locks on the pending rewards")
}

func TestPendingRewardsQueryReadPathSkipsLock(t *testing.T) {
	db := dryRunDB(t)
	svc := NewLedgerService(db)

	var rewards []models.ReferralReward
	result := svc.pendingRewardsQuery(db, uuid.New(), models.RewardTypeMoney, false).Find(&rewards)
	require.NoError(t, result.Error)

	assert.NotContains(t, result.Statement.SQL.String(), "FOR UPDATE")
}
