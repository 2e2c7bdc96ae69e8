package membership

import (
	"time"

	"github.com/pkg/errors"
)

// Subscription is the stored subscription state of a gym.
// Status is what was last stored (trial at redemption, or what billing reported since);
// the effective status is always recomputed with CurrentStatus.
type Subscription struct {
	Plan      Plan      `json:"plan"`
	Status    Status    `json:"status"`
	TrialEnd  time.Time `json:"trial_end"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSubscription starts the trial granted by `code` at `createdAt`.
func NewSubscription(code AccessCode, createdAt time.Time) (Subscription, error) {
	trialEnd, err := ComputeTrialEnd(createdAt, code.TrialDays)
	if err != nil {
		return Subscription{}, err
	}
	return Subscription{
		Plan:      code.Plan,
		Status:    StatusTrial,
		TrialEnd:  trialEnd,
		CreatedAt: createdAt.UTC(),
	}, nil
}

func (s Subscription) CurrentStatus(now time.Time) (Status, error) {
	if now.Before(s.CreatedAt) {
		return "", errors.Wrapf(ErrInvalidInput, "now (%s) is before creation (%s)", now.UTC(), s.CreatedAt)
	}
	return ClassifyStatus(now, s.TrialEnd, s.Status)
}

// TrialDaysRemaining is the number of whole days left in the trial, 0 once it is over.
func (s Subscription) TrialDaysRemaining(now time.Time) int {
	if s.TrialEnd.IsZero() || !now.Before(s.TrialEnd) {
		return 0
	}
	return int(s.TrialEnd.Sub(now) / (24 * time.Hour))
}
