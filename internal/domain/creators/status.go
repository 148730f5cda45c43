package creators

const (
	RoleCreator       = "saas_creator"
	RolePlatformOwner = "platform_owner"
)

const (
	StatusTrial    = "trial"
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusPastDue  = "past_due"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusTrial, StatusActive, StatusCanceled, StatusPastDue:
		return true
	}
	return false
}

// StatusFromStripe maps a Stripe subscription status onto the creator's
// platform subscription status.
func StatusFromStripe(s string) string {
	switch s {
	case "active":
		return StatusActive
	case "trialing":
		return StatusTrial
	case "past_due", "unpaid", "incomplete":
		return StatusPastDue
	case "canceled", "incomplete_expired", "paused":
		return StatusCanceled
	default:
		return StatusPastDue
	}
}
