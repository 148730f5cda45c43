package users

import (
	"math"
	"time"

	"saas-template/internal/domain/creators"
	"saas-template/internal/infra/authprovider"
)

func BuildUserDTO(u *authprovider.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Confirmed: u.Confirmed(),
		CreatedAt: u.CreatedAt,
	}
}

func BuildCreatorDTO(c *creators.Creator) *CreatorDTO {
	if c == nil {
		return nil
	}
	return &CreatorDTO{
		ID:                  c.ID,
		CompanyName:         c.CompanyName,
		ProductURL:          c.ProductURL,
		Role:                c.Role,
		StripeConnected:     c.StripeConnected(),
		OnboardingCompleted: c.OnboardingCompleted,
	}
}

func BuildAccessDTO(now time.Time, c *creators.Creator) *AccessDTO {
	if c == nil {
		return nil
	}
	state := creators.ComputeAccessState(now, *c)
	dto := &AccessDTO{
		State:              string(state),
		CanWrite:           state.CanWrite() || c.IsPlatformOwner(),
		SubscriptionStatus: c.SubscriptionStatus,
		TrialEndsAt:        c.TrialEndsAt,
		CurrentPeriodEnd:   c.CurrentPeriodEnd,
	}
	if c.SubscriptionStatus == creators.StatusTrial && c.TrialEndsAt != nil {
		days := trialDaysLeft(now, *c.TrialEndsAt)
		dto.TrialDaysLeft = &days
	}
	return dto
}

// trialDaysLeft rounds partial days up, never below zero.
func trialDaysLeft(now, end time.Time) int {
	left := end.Sub(now).Hours() / 24
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left))
}
