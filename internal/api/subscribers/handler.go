// Package subscribers serves a creator's end customers: subscriber records,
// their usage metrics and the per-product white-label branding.
package subscribers

import (
	"net/http"
	"strings"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/domain/platform"
	"saas-template/internal/domain/subscribers"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	now func() time.Time
}

func NewHandler() *Handler {
	return &Handler{now: time.Now}
}

func queryProductID(c *gin.Context) (string, bool) {
	raw := c.Query("product_id")
	if raw == "" {
		respond.BadRequest(c, "product_id is required")
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respond.BadRequest(c, "Invalid product id")
		return "", false
	}
	return id.String(), true
}

// GET /api/subscribers?product_id=
func (h *Handler) List(c *gin.Context) {
	productID, ok := queryProductID(c)
	if !ok {
		return
	}
	if ownedProductByID(c, productID) == nil {
		return
	}

	q := database.DB.WithContext(c.Request.Context()).
		Where("product_id = ?", productID)
	if status := c.Query("status"); status != "" {
		if !subscribers.ValidStatus(status) {
			respond.BadRequest(c, "Invalid status filter")
			return
		}
		q = q.Where("subscription_status = ?", status)
	}

	list := []subscribers.Subscriber{}
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		respond.Internal(c, err, "list subscribers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": list})
}

type createSubscriberInput struct {
	Email         string  `json:"email" binding:"required,email"`
	CustomerName  *string `json:"customer_name" binding:"omitempty,max=255"`
	PricingTierID *string `json:"pricing_tier_id" binding:"omitempty,uuid"`
}

// POST /api/subscribers?product_id=
func (h *Handler) Create(c *gin.Context) {
	productID, ok := queryProductID(c)
	if !ok {
		return
	}

	var input createSubscriberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	if ownedProductByID(c, productID) == nil {
		return
	}
	if input.PricingTierID != nil {
		ok, err := tierBelongsTo(c, *input.PricingTierID, productID)
		if err != nil {
			respond.Internal(c, err, "check pricing tier")
			return
		}
		if !ok {
			respond.BadRequest(c, "pricing_tier_id does not belong to this product")
			return
		}
	}

	ctx := c.Request.Context()
	settings, err := platform.LoadSettings(ctx, database.DB)
	if err != nil {
		respond.Internal(c, err, "load platform settings")
		return
	}

	trialEnd := settings.TrialEnd(h.now())
	sub := subscribers.Subscriber{
		ProductID:          productID,
		Email:              strings.ToLower(input.Email),
		CustomerName:       input.CustomerName,
		PricingTierID:      input.PricingTierID,
		SubscriptionStatus: subscribers.StatusTrialing,
		TrialEndsAt:        &trialEnd,
	}
	if err := database.DB.WithContext(ctx).Create(&sub).Error; err != nil {
		respond.DBError(c, err, "Subscriber")
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// GET /api/subscribers/:subscriberId
func (h *Handler) Get(c *gin.Context) {
	sub := ownedSubscriber(c)
	if sub == nil {
		return
	}
	c.JSON(http.StatusOK, sub)
}

type updateSubscriberInput struct {
	Email              *string `json:"email" binding:"omitempty,email"`
	CustomerName       *string `json:"customer_name" binding:"omitempty,max=255"`
	PricingTierID      *string `json:"pricing_tier_id" binding:"omitempty,uuid"`
	SubscriptionStatus *string `json:"subscription_status" binding:"omitempty,subscriber_status"`
}

// PATCH /api/subscribers/:subscriberId
func (h *Handler) Update(c *gin.Context) {
	var input updateSubscriberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	sub := ownedSubscriber(c)
	if sub == nil {
		return
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		updates["email"] = strings.ToLower(*input.Email)
	}
	if input.CustomerName != nil {
		updates["customer_name"] = *input.CustomerName
	}
	if input.PricingTierID != nil {
		ok, err := tierBelongsTo(c, *input.PricingTierID, sub.ProductID)
		if err != nil {
			respond.Internal(c, err, "check pricing tier")
			return
		}
		if !ok {
			respond.BadRequest(c, "pricing_tier_id does not belong to this product")
			return
		}
		updates["pricing_tier_id"] = *input.PricingTierID
	}
	if input.SubscriptionStatus != nil {
		updates["subscription_status"] = *input.SubscriptionStatus
	}

	if len(updates) > 0 {
		if err := database.DB.WithContext(c.Request.Context()).
			Model(sub).
			Updates(updates).Error; err != nil {
			respond.DBError(c, err, "Subscriber")
			return
		}
	}

	c.JSON(http.StatusOK, sub)
}
