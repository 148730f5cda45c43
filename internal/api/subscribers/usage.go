package subscribers

import (
	"net/http"
	"strings"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/subscribers"

	"github.com/gin-gonic/gin"
)

type recordUsageInput struct {
	MetricName  string     `json:"metric_name" binding:"required,min=1,max=100"`
	MetricValue *float64   `json:"metric_value" binding:"required"`
	MetricUnit  *string    `json:"metric_unit" binding:"omitempty,max=50"`
	RecordedAt  *time.Time `json:"recorded_at"`
}

// POST /api/subscribers/:subscriberId/usage
func (h *Handler) RecordUsage(c *gin.Context) {
	var input recordUsageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	sub := ownedSubscriber(c)
	if sub == nil {
		return
	}

	h.saveUsage(c, sub, input)
}

type ingestUsageInput struct {
	SubscriberEmail string `json:"subscriber_email" binding:"required,email"`
	recordUsageInput
}

// POST /api/products/:productId/usage
//
// Called by the creator's own backend with the product API key; the
// subscriber is addressed by email since the product never sees our ids.
func (h *Handler) IngestUsage(c *gin.Context) {
	var input ingestUsageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	p := middleware.CurrentProduct(c)
	var sub subscribers.Subscriber
	err := database.DB.WithContext(c.Request.Context()).
		Where("product_id = ? AND email = ?", p.ID, strings.ToLower(strings.TrimSpace(input.SubscriberEmail))).
		First(&sub).Error
	if err != nil {
		respond.DBError(c, err, "Subscriber")
		return
	}

	h.saveUsage(c, &sub, input.recordUsageInput)
}

func (h *Handler) saveUsage(c *gin.Context, sub *subscribers.Subscriber, input recordUsageInput) {
	recordedAt := h.now().UTC()
	if input.RecordedAt != nil {
		recordedAt = input.RecordedAt.UTC()
	}

	metric := subscribers.UsageMetric{
		SubscriberID: sub.ID,
		ProductID:    sub.ProductID,
		MetricName:   input.MetricName,
		MetricValue:  *input.MetricValue,
		MetricUnit:   input.MetricUnit,
		RecordedAt:   recordedAt,
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&metric).Error; err != nil {
		respond.DBError(c, err, "Usage metric")
		return
	}

	c.JSON(http.StatusCreated, metric)
}

// GET /api/subscribers/:subscriberId/usage?start_date&end_date&metric_name
//
// Dates are RFC 3339 timestamps or YYYY-MM-DD days; a bare end day is
// inclusive.
func (h *Handler) ListUsage(c *gin.Context) {
	start, ok := parseDateParam(c, "start_date", false)
	if !ok {
		return
	}
	end, ok := parseDateParam(c, "end_date", true)
	if !ok {
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		respond.BadRequest(c, "end_date must not be before start_date")
		return
	}

	sub := ownedSubscriber(c)
	if sub == nil {
		return
	}

	q := database.DB.WithContext(c.Request.Context()).
		Where("subscriber_id = ?", sub.ID)
	if start != nil {
		q = q.Where("recorded_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("recorded_at < ?", *end)
	}
	if name := c.Query("metric_name"); name != "" {
		q = q.Where("metric_name = ?", name)
	}

	metrics := []subscribers.UsageMetric{}
	if err := q.Order("recorded_at DESC").Find(&metrics).Error; err != nil {
		respond.Internal(c, err, "list usage metrics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

// parseDateParam returns nil for an absent parameter. With endOfDay a bare
// date is moved to the start of the following day.
func parseDateParam(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		respond.BadRequest(c, "Invalid "+name+", expected YYYY-MM-DD or RFC 3339")
		return nil, false
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t, true
}
