package users

import "time"

type ProfileResponse struct {
	User    UserDTO     `json:"user"`
	Creator *CreatorDTO `json:"creator"`
	Access  *AccessDTO  `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

/* ---------- CREATOR ---------- */

type CreatorDTO struct {
	ID                  string  `json:"id"`
	CompanyName         string  `json:"company_name"`
	ProductURL          *string `json:"product_url"`
	Role                string  `json:"role"`
	StripeConnected     bool    `json:"stripe_connected"`
	OnboardingCompleted bool    `json:"onboarding_completed"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State              string     `json:"state"` // trial|full|limited|locked
	CanWrite           bool       `json:"can_write"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at"`
	TrialDaysLeft      *int       `json:"trial_days_left"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
}
