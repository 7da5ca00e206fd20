package referral

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInsufficientRewardBalance is returned when a withdrawal asks for more
// than the pending total
var ErrInsufficientRewardBalance = errors.New("insufficient reward balance")

// ErrRewardAlreadyIssued is returned when a single-reward issuance targets
// a reward that is already issued or does not exist
var ErrRewardAlreadyIssued = errors.New("reward already issued or not found")

// InvalidReferralError is returned when a referral relationship would
// violate an anti-abuse invariant
type InvalidReferralError struct {
	ReferrerID uuid.UUID
	ReferredID uuid.UUID
	Reason     string
}

func (e *InvalidReferralError) Error() string {
	return fmt.Sprintf("invalid referral %s -> %s: %s", e.ReferrerID, e.ReferredID, e.Reason)
}
