package creators

import "time"

type Creator struct {
	ID     string `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_creators_user_id" json:"user_id"`

	CompanyName string  `gorm:"size:255;not null" json:"company_name"`
	ProductURL  *string `json:"product_url"`
	Role        string  `gorm:"type:varchar(20);not null;default:'saas_creator'" json:"role"`

	// Stripe Connect credentials for the creator's own account.
	StripeAccountID    *string `gorm:"column:stripe_account_id;uniqueIndex:idx_creators_stripe_account_id" json:"stripe_account_id"`
	StripeAccessToken  *string `gorm:"column:stripe_access_token" json:"-"`
	StripeRefreshToken *string `gorm:"column:stripe_refresh_token" json:"-"`

	OnboardingCompleted bool `gorm:"not null;default:false" json:"onboarding_completed"`

	// The creator's subscription to the platform itself.
	SubscriptionStatus   string     `gorm:"type:varchar(20);not null;default:'trial'" json:"subscription_status"`
	TrialEndsAt          *time.Time `json:"trial_ends_at"`
	StripeCustomerID     *string    `gorm:"column:stripe_customer_id;uniqueIndex:idx_creators_stripe_customer_id" json:"-"`
	StripeSubscriptionID *string    `gorm:"column:stripe_subscription_id;uniqueIndex:idx_creators_stripe_subscription_id" json:"-"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StripeConnected reports whether the creator finished the Connect handshake.
func (c *Creator) StripeConnected() bool {
	return c != nil && c.StripeAccountID != nil && *c.StripeAccountID != ""
}

func (c *Creator) IsPlatformOwner() bool {
	return c != nil && c.Role == RolePlatformOwner
}
