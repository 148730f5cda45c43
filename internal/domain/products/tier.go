package products

import (
	"time"

	"github.com/lib/pq"
)

const (
	IntervalMonth   = "month"
	IntervalYear    = "year"
	IntervalOneTime = "one-time"
)

type PricingTier struct {
	ID        string   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID string   `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description *string `json:"description"`

	// minor units (cents)
	PriceAmount     int64  `gorm:"not null" json:"price_amount"`
	PriceCurrency   string `gorm:"type:varchar(3);not null;default:'USD'" json:"price_currency"`
	BillingInterval string `gorm:"type:varchar(10);not null" json:"billing_interval"`

	StripeProductID *string `gorm:"column:stripe_product_id" json:"-"`
	StripePriceID   *string `gorm:"column:stripe_price_id;index" json:"stripe_price_id"`

	Features pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"features"`
	IsActive bool           `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidInterval(s string) bool {
	switch s {
	case IntervalMonth, IntervalYear, IntervalOneTime:
		return true
	}
	return false
}

// Recurring reports whether the tier bills on a schedule.
func (t *PricingTier) Recurring() bool {
	return t.BillingInterval == IntervalMonth || t.BillingInterval == IntervalYear
}

// StripeInterval returns the Stripe recurring interval, or "" for one-time tiers.
func (t *PricingTier) StripeInterval() string {
	if !t.Recurring() {
		return ""
	}
	return t.BillingInterval
}
