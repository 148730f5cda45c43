package creators

import "time"

type AccessState string

const (
	AccessTrial   AccessState = "trial"
	AccessFull    AccessState = "full"
	AccessLimited AccessState = "limited"
	AccessLocked  AccessState = "locked"
)

// ComputeAccessState decides what a creator may do in the dashboard.
//
//   - trial: trial window still open
//   - full: paid and current
//   - limited: payment failed, still writable while Stripe retries
//   - locked: trial over or subscription ended
func ComputeAccessState(now time.Time, c Creator) AccessState {
	switch c.SubscriptionStatus {
	case StatusTrial:
		if c.TrialEndsAt == nil || now.Before(*c.TrialEndsAt) {
			return AccessTrial
		}
		return AccessLocked

	case StatusActive:
		return AccessFull

	case StatusPastDue:
		return AccessLimited

	case StatusCanceled:
		// paid-through access until the period closes
		if c.CurrentPeriodEnd != nil && now.Before(*c.CurrentPeriodEnd) {
			return AccessFull
		}
		return AccessLocked

	default:
		return AccessLocked
	}
}

// CanWrite reports whether the state allows creating or changing resources.
func (s AccessState) CanWrite() bool {
	return s != AccessLocked
}
