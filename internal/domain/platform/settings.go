package platform

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

type Settings struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// minor units
	SubscriptionPrice    int64  `gorm:"column:platform_subscription_price;not null;default:2900" json:"platform_subscription_price"`
	SubscriptionCurrency string `gorm:"column:platform_subscription_currency;type:varchar(3);not null;default:'USD'" json:"platform_subscription_currency"`
	BillingInterval      string `gorm:"column:platform_billing_interval;type:varchar(10);not null;default:'month'" json:"platform_billing_interval"`
	TrialDays            int    `gorm:"column:platform_trial_days;not null;default:14" json:"platform_trial_days"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Settings) TableName() string {
	return "platform_settings"
}

func DefaultSettings() Settings {
	return Settings{
		ID:                   SettingsID,
		SubscriptionPrice:    2900,
		SubscriptionCurrency: "USD",
		BillingInterval:      "month",
		TrialDays:            14,
	}
}

// LoadSettings reads the singleton row, falling back to the defaults when it
// has not been seeded yet.
func LoadSettings(ctx context.Context, db *gorm.DB) (Settings, error) {
	var s Settings
	err := db.WithContext(ctx).First(&s, SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

// TrialEnd is when a trial started at now ends.
func (s Settings) TrialEnd(now time.Time) time.Time {
	return now.AddDate(0, 0, s.TrialDays)
}
