// Package subscriptions manages a creator's own subscription to the platform:
// Stripe Checkout for the platform price, the billing portal and cancellation.
package subscriptions

import (
	"errors"
	"net/http"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/creators"
	"saas-template/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	stripeapi "github.com/stripe/stripe-go/v75"
)

// Billing is the slice of the Stripe gateway this package needs.
type Billing interface {
	Ready() bool
	GetPlatformPlan(priceID string) (*stripe.PlatformPlan, error)
	EnsureCustomer(existingID, email string, metadata map[string]string) (string, error)
	CreateCheckoutSession(req stripe.CheckoutRequest) (string, error)
	CreatePortalSession(customerID, returnURL string) (string, error)
	CancelAtPeriodEnd(subscriptionID string) (*stripeapi.Subscription, error)
}

type Handler struct {
	billing Billing
	priceID string
	webURL  string
	now     func() time.Time
}

func NewHandler(billing Billing, priceID, webURL string) *Handler {
	return &Handler{billing: billing, priceID: priceID, webURL: webURL, now: time.Now}
}

type subscriptionDTO struct {
	Status           string     `json:"status"`
	AccessState      string     `json:"access_state"`
	CanWrite         bool       `json:"can_write"`
	TrialEndsAt      *time.Time `json:"trial_ends_at"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	HasCustomer      bool       `json:"has_customer"`
	HasSubscription  bool       `json:"has_subscription"`
}

func buildDTO(now time.Time, c *creators.Creator) subscriptionDTO {
	state := creators.ComputeAccessState(now, *c)
	return subscriptionDTO{
		Status:           c.SubscriptionStatus,
		AccessState:      string(state),
		CanWrite:         state.CanWrite(),
		TrialEndsAt:      c.TrialEndsAt,
		CurrentPeriodEnd: c.CurrentPeriodEnd,
		HasCustomer:      c.StripeCustomerID != nil && *c.StripeCustomerID != "",
		HasSubscription:  c.StripeSubscriptionID != nil && *c.StripeSubscriptionID != "",
	}
}

// GET /api/subscriptions
func (h *Handler) Get(c *gin.Context) {
	creator := middleware.CurrentCreator(c)
	c.JSON(http.StatusOK, gin.H{"subscription": buildDTO(h.now(), creator)})
}

// GET /api/subscriptions/plan
func (h *Handler) GetPlan(c *gin.Context) {
	if !h.billing.Ready() || h.priceID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Platform billing not configured"})
		return
	}
	plan, err := h.billing.GetPlatformPlan(h.priceID)
	if err != nil {
		log.Error().Err(err).Str("price_id", h.priceID).Msg("fetch platform plan failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch platform plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// POST /api/subscriptions/checkout
func (h *Handler) Checkout(c *gin.Context) {
	if !h.billing.Ready() || h.priceID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Platform billing not configured"})
		return
	}

	creator := middleware.CurrentCreator(c)
	if creator.SubscriptionStatus == creators.StatusActive && creator.StripeSubscriptionID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Subscription already active"})
		return
	}

	existing := ""
	if creator.StripeCustomerID != nil {
		existing = *creator.StripeCustomerID
	}
	customerID, err := h.billing.EnsureCustomer(existing, c.GetString(middleware.ContextEmail), map[string]string{
		"creator_id": creator.ID,
	})
	if err != nil {
		log.Error().Err(err).Str("creator_id", creator.ID).Msg("ensure stripe customer failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create Stripe customer"})
		return
	}

	if customerID != existing {
		if err := database.DB.WithContext(c.Request.Context()).
			Model(creator).
			Update("stripe_customer_id", customerID).Error; err != nil {
			respond.Internal(c, err, "store stripe customer")
			return
		}
	}

	url, err := h.billing.CreateCheckoutSession(stripe.CheckoutRequest{
		CustomerID:  customerID,
		PriceID:     h.priceID,
		Recurring:   true,
		SuccessURL:  h.webURL + "/dashboard/subscription?checkout=success",
		CancelURL:   h.webURL + "/dashboard/subscription?checkout=canceled",
		ReferenceID: creator.ID,
		Metadata:    map[string]string{"creator_id": creator.ID},
	})
	if err != nil {
		log.Error().Err(err).Str("creator_id", creator.ID).Msg("create platform checkout failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// POST /api/subscriptions/portal
func (h *Handler) Portal(c *gin.Context) {
	creator := middleware.CurrentCreator(c)
	if creator.StripeCustomerID == nil || *creator.StripeCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}

	url, err := h.billing.CreatePortalSession(*creator.StripeCustomerID, h.webURL+"/dashboard/subscription")
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, stripe.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		log.Error().Err(err).Str("creator_id", creator.ID).Msg("create billing portal failed")
		c.JSON(status, gin.H{"error": "Failed to create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// POST /api/subscriptions/cancel
func (h *Handler) Cancel(c *gin.Context) {
	creator := middleware.CurrentCreator(c)
	if creator.StripeSubscriptionID == nil || *creator.StripeSubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active subscription to cancel"})
		return
	}

	sub, err := h.billing.CancelAtPeriodEnd(*creator.StripeSubscriptionID)
	if err != nil {
		log.Error().Err(err).Str("creator_id", creator.ID).Msg("cancel platform subscription failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	updates := map[string]interface{}{
		"subscription_status": creators.StatusFromStripe(string(sub.Status)),
	}
	if sub.CurrentPeriodEnd > 0 {
		updates["current_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if err := database.DB.WithContext(c.Request.Context()).Model(creator).Updates(updates).Error; err != nil {
		respond.Internal(c, err, "store canceled subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":              "Subscription cancelled successfully",
		"cancel_at_period_end": sub.CancelAtPeriodEnd,
		"subscription":         buildDTO(h.now(), creator),
	})
}
