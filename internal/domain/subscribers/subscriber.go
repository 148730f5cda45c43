package subscribers

import (
	"time"

	"saas-template/internal/domain/products"
)

const (
	StatusActive   = "active"
	StatusCanceled = "canceled"
	StatusPastDue  = "past_due"
	StatusTrialing = "trialing"
)

type Subscriber struct {
	ID        string            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID string            `gorm:"type:uuid;not null;uniqueIndex:idx_subscribers_product_email" json:"product_id"`
	Product   *products.Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Email        string  `gorm:"not null;uniqueIndex:idx_subscribers_product_email" json:"email"`
	CustomerName *string `json:"customer_name"`

	PricingTierID *string               `gorm:"type:uuid;index" json:"pricing_tier_id"`
	PricingTier   *products.PricingTier `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	StripeCustomerID     *string `gorm:"column:stripe_customer_id;index" json:"stripe_customer_id"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_subscribers_stripe_subscription_id" json:"stripe_subscription_id"`

	SubscriptionStatus string     `gorm:"type:varchar(20);not null;default:'trialing'" json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at"`
	CurrentPeriodStart *time.Time `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusCanceled, StatusPastDue, StatusTrialing:
		return true
	}
	return false
}

// StatusFromStripe folds Stripe's subscription statuses into the four the
// dashboard knows about.
func StatusFromStripe(s string) string {
	switch s {
	case "active":
		return StatusActive
	case "trialing":
		return StatusTrialing
	case "canceled", "incomplete_expired":
		return StatusCanceled
	default:
		return StatusPastDue
	}
}
