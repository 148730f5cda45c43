package subscribers

import "time"

// UsageMetric rows are append-only.
type UsageMetric struct {
	ID           string      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubscriberID string      `gorm:"type:uuid;not null;index:idx_usage_subscriber_recorded" json:"subscriber_id"`
	Subscriber   *Subscriber `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ProductID    string      `gorm:"type:uuid;not null;index" json:"product_id"`

	MetricName  string  `gorm:"not null" json:"metric_name"`
	MetricValue float64 `gorm:"not null" json:"metric_value"`
	MetricUnit  *string `json:"metric_unit"`

	RecordedAt time.Time `gorm:"not null;index:idx_usage_subscriber_recorded" json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}
