package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/domain/billing"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/products"
	"saas-template/internal/domain/subscribers"

	"github.com/gin-gonic/gin"
)

type Stats struct {
	TotalCreators    int64 `json:"total_creators"`
	ActiveCreators   int64 `json:"active_creators"`
	TrialCreators    int64 `json:"trial_creators"`
	TotalProducts    int64 `json:"total_products"`
	TotalSubscribers int64 `json:"total_subscribers"`
	MonthlyRevenue   int64 `json:"monthly_revenue"` // minor units

	// tiers are summed regardless of currency; rendered as USD
	MonthlyRevenueDisplay string    `json:"monthly_revenue_display"`
	CreatedAt             time.Time `json:"created_at"`
}

// revenueBucket is one (interval, price) pair with its count of active
// subscribers.
type revenueBucket struct {
	BillingInterval string
	PriceAmount     int64
	Subscribers     int64
}

// GET /api/platform/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := collectStats(c.Request.Context())
	if err != nil {
		respond.Internal(c, err, "collect platform stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func collectStats(ctx context.Context) (*Stats, error) {
	db := database.DB.WithContext(ctx)
	s := &Stats{CreatedAt: time.Now().UTC()}

	err := db.Model(&creators.Creator{}).
		Select(
			"COUNT(*) AS total_creators, "+
				"COUNT(*) FILTER (WHERE subscription_status = ?) AS active_creators, "+
				"COUNT(*) FILTER (WHERE subscription_status = ?) AS trial_creators",
			creators.StatusActive, creators.StatusTrial,
		).
		Scan(s).Error
	if err != nil {
		return nil, fmt.Errorf("count creators: %w", err)
	}

	if err := db.Model(&products.Product{}).Count(&s.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if err := db.Model(&subscribers.Subscriber{}).Count(&s.TotalSubscribers).Error; err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}

	var buckets []revenueBucket
	err = db.Table("subscribers").
		Select("pricing_tiers.billing_interval, pricing_tiers.price_amount, COUNT(*) AS subscribers").
		Joins("JOIN pricing_tiers ON pricing_tiers.id = subscribers.pricing_tier_id").
		Where("subscribers.subscription_status = ? AND pricing_tiers.is_active", subscribers.StatusActive).
		Group("pricing_tiers.billing_interval, pricing_tiers.price_amount").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	s.MonthlyRevenue = monthlyRevenue(buckets)
	s.MonthlyRevenueDisplay = billing.FormatAmount(s.MonthlyRevenue, "USD")

	return s, nil
}

// monthlyRevenue normalises recurring revenue to a month. Yearly totals are
// summed before dividing so truncation happens once.
func monthlyRevenue(buckets []revenueBucket) int64 {
	var monthly, yearly int64
	for _, b := range buckets {
		switch b.BillingInterval {
		case products.IntervalMonth:
			monthly += b.PriceAmount * b.Subscribers
		case products.IntervalYear:
			yearly += b.PriceAmount * b.Subscribers
		}
	}
	return monthly + yearly/12
}
