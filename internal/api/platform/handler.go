// Package platform serves the platform owner's cross-tenant views: global
// settings, every creator and aggregate statistics.
package platform

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/platform"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GET /api/platform/settings
func (h *Handler) GetSettings(c *gin.Context) {
	s, err := platform.LoadSettings(c.Request.Context(), database.DB)
	if err != nil {
		respond.Internal(c, err, "load platform settings")
		return
	}
	c.JSON(http.StatusOK, s)
}

type updateSettingsInput struct {
	SubscriptionPrice    *int64  `json:"platform_subscription_price" binding:"omitempty,min=0"`
	SubscriptionCurrency *string `json:"platform_subscription_currency" binding:"omitempty,currency"`
	BillingInterval      *string `json:"platform_billing_interval" binding:"omitempty,oneof=month year"`
	TrialDays            *int    `json:"platform_trial_days" binding:"omitempty,min=0,max=365"`
}

// PATCH /api/platform/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var input updateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	s, err := platform.LoadSettings(ctx, database.DB)
	if err != nil {
		respond.Internal(c, err, "load platform settings")
		return
	}

	if input.SubscriptionPrice != nil {
		s.SubscriptionPrice = *input.SubscriptionPrice
	}
	if input.SubscriptionCurrency != nil {
		s.SubscriptionCurrency = strings.ToUpper(*input.SubscriptionCurrency)
	}
	if input.BillingInterval != nil {
		s.BillingInterval = *input.BillingInterval
	}
	if input.TrialDays != nil {
		s.TrialDays = *input.TrialDays
	}

	if err := database.DB.WithContext(ctx).Save(&s).Error; err != nil {
		respond.Internal(c, err, "save platform settings")
		return
	}
	c.JSON(http.StatusOK, s)
}

type pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func intQuery(c *gin.Context, key string, def, min, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// GET /api/platform/creators?page&limit&status
func (h *Handler) ListCreators(c *gin.Context) {
	page := intQuery(c, "page", 1, 1, math.MaxInt32)
	limit := intQuery(c, "limit", 10, 1, 100)

	q := database.DB.WithContext(c.Request.Context()).Model(&creators.Creator{})
	if status := c.Query("status"); status != "" {
		if !creators.ValidStatus(status) {
			respond.BadRequest(c, "Invalid status filter")
			return
		}
		q = q.Where("subscription_status = ?", status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Internal(c, err, "count creators")
		return
	}

	list := []creators.Creator{}
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&list).Error; err != nil {
		respond.Internal(c, err, "list creators")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"creators": list,
		"pagination": pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	})
}

// creatorDetail shows the owner which Stripe credentials exist without
// exposing them.
type creatorDetail struct {
	creators.Creator
	StripeAccessToken    *string `json:"stripe_access_token"`
	StripeRefreshToken   *string `json:"stripe_refresh_token"`
	StripeCustomerID     *string `json:"stripe_customer_id"`
	StripeSubscriptionID *string `json:"stripe_subscription_id"`
}

func redact(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	r := "***"
	return &r
}

func newCreatorDetail(cr creators.Creator) creatorDetail {
	return creatorDetail{
		Creator:              cr,
		StripeAccessToken:    redact(cr.StripeAccessToken),
		StripeRefreshToken:   redact(cr.StripeRefreshToken),
		StripeCustomerID:     cr.StripeCustomerID,
		StripeSubscriptionID: cr.StripeSubscriptionID,
	}
}

func loadCreator(c *gin.Context) *creators.Creator {
	id, ok := respond.ParamID(c, "creatorId", "creator")
	if !ok {
		return nil
	}
	var cr creators.Creator
	if err := database.DB.WithContext(c.Request.Context()).First(&cr, "id = ?", id).Error; err != nil {
		respond.DBError(c, err, "Creator")
		return nil
	}
	return &cr
}

// GET /api/platform/creators/:creatorId
func (h *Handler) GetCreator(c *gin.Context) {
	cr := loadCreator(c)
	if cr == nil {
		return
	}
	c.JSON(http.StatusOK, newCreatorDetail(*cr))
}

type updateCreatorInput struct {
	SubscriptionStatus string     `json:"subscription_status" binding:"required,creator_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at"`
}

// PATCH /api/platform/creators/:creatorId
func (h *Handler) UpdateCreator(c *gin.Context) {
	var input updateCreatorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	cr := loadCreator(c)
	if cr == nil {
		return
	}

	updates := map[string]interface{}{"subscription_status": input.SubscriptionStatus}
	if input.TrialEndsAt != nil {
		updates["trial_ends_at"] = *input.TrialEndsAt
	}
	if err := database.DB.WithContext(c.Request.Context()).
		Model(cr).
		Updates(updates).Error; err != nil {
		respond.DBError(c, err, "Creator")
		return
	}

	c.JSON(http.StatusOK, newCreatorDetail(*cr))
}
