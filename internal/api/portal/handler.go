// Package portal is the public, unauthenticated page a creator's customers
// land on: product details, active tiers, branding and checkout.
package portal

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/domain/billing"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/products"
	"saas-template/internal/domain/subscribers"
	"saas-template/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Checkout interface {
	Ready() bool
	CreateCheckoutSession(req stripe.CheckoutRequest) (string, error)
}

type Handler struct {
	checkout Checkout
	webURL   string
	now      func() time.Time
}

func NewHandler(checkout Checkout, webURL string) *Handler {
	return &Handler{checkout: checkout, webURL: webURL, now: time.Now}
}

type portalProduct struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	ProductURL  string  `json:"product_url"`
}

type portalTier struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	PriceAmount     int64    `json:"price_amount"`
	PriceCurrency   string   `json:"price_currency"`
	PriceDisplay    string   `json:"price_display"`
	BillingInterval string   `json:"billing_interval"`
	Features        []string `json:"features"`
	Purchasable     bool     `json:"purchasable"`
}

type portalBranding struct {
	CompanyName    string  `json:"company_name"`
	PrimaryColor   string  `json:"primary_color"`
	SecondaryColor string  `json:"secondary_color"`
	LogoURL        *string `json:"logo_url"`
	SupportEmail   *string `json:"support_email"`
	CustomCSS      *string `json:"custom_css"`
	CustomDomain   *string `json:"custom_domain"`
}

// activeProduct loads a product that is open to the public. Inactive and
// unknown products both answer 404.
func activeProduct(c *gin.Context) *products.Product {
	id, ok := respond.ParamID(c, "productId", "product")
	if !ok {
		return nil
	}

	var p products.Product
	err := database.DB.WithContext(c.Request.Context()).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		respond.DBError(c, err, "Product")
		return nil
	}
	return &p
}

// GET /api/portal/:productId
func (h *Handler) GetProduct(c *gin.Context) {
	p := activeProduct(c)
	if p == nil {
		return
	}
	ctx := c.Request.Context()

	var tiers []products.PricingTier
	if err := database.DB.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", p.ID, true).
		Order("price_amount ASC").
		Find(&tiers).Error; err != nil {
		respond.Internal(c, err, "list portal tiers")
		return
	}

	wl := products.DefaultWhitelabel(*p)
	err := database.DB.WithContext(ctx).Where("product_id = ?", p.ID).First(&wl).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respond.Internal(c, err, "load portal branding")
		return
	}

	out := make([]portalTier, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, portalTier{
			ID:              t.ID,
			Name:            t.Name,
			Description:     t.Description,
			PriceAmount:     t.PriceAmount,
			PriceCurrency:   t.PriceCurrency,
			PriceDisplay:    billing.FormatAmount(t.PriceAmount, t.PriceCurrency),
			BillingInterval: t.BillingInterval,
			Features:        []string(t.Features),
			Purchasable:     t.StripePriceID != nil && *t.StripePriceID != "",
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"product": portalProduct{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			ProductURL:  p.ProductURL,
		},
		"tiers": out,
		"branding": portalBranding{
			CompanyName:    wl.CompanyName,
			PrimaryColor:   wl.PrimaryColor,
			SecondaryColor: wl.SecondaryColor,
			LogoURL:        wl.LogoURL,
			SupportEmail:   wl.SupportEmail,
			CustomCSS:      wl.CustomCSS,
			CustomDomain:   wl.CustomDomain,
		},
	})
}

type checkoutInput struct {
	Email         string  `json:"email" binding:"required,email"`
	CustomerName  *string `json:"customer_name" binding:"omitempty,max=255"`
	PricingTierID string  `json:"pricing_tier_id" binding:"required,uuid"`
}

// POST /api/portal/:productId/checkout
func (h *Handler) Checkout(c *gin.Context) {
	p := activeProduct(c)
	if p == nil {
		return
	}

	var input checkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}
	ctx := c.Request.Context()

	var tier products.PricingTier
	if err := database.DB.WithContext(ctx).
		Where("id = ? AND product_id = ? AND is_active = ?", input.PricingTierID, p.ID, true).
		First(&tier).Error; err != nil {
		respond.DBError(c, err, "Pricing tier")
		return
	}
	if tier.StripePriceID == nil || *tier.StripePriceID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "Pricing tier is not available for purchase"})
		return
	}

	var creator creators.Creator
	if err := database.DB.WithContext(ctx).First(&creator, "id = ?", p.CreatorID).Error; err != nil {
		respond.Internal(c, err, "load product creator")
		return
	}
	if !creator.StripeConnected() || !h.checkout.Ready() {
		c.JSON(http.StatusConflict, gin.H{"error": "This product is not accepting payments yet"})
		return
	}
	if !creator.IsPlatformOwner() && !creators.ComputeAccessState(h.now(), creator).CanWrite() {
		c.JSON(http.StatusForbidden, gin.H{"error": "This product is not accepting new subscribers"})
		return
	}

	subscriber := subscribers.Subscriber{
		ProductID:          p.ID,
		Email:              strings.ToLower(strings.TrimSpace(input.Email)),
		CustomerName:       input.CustomerName,
		PricingTierID:      &tier.ID,
		SubscriptionStatus: subscribers.StatusTrialing,
	}
	if err := database.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"customer_name", "pricing_tier_id", "updated_at"}),
	}).Create(&subscriber).Error; err != nil {
		respond.Internal(c, err, "upsert portal subscriber")
		return
	}

	base := h.webURL + "/portal/" + p.ID
	url, err := h.checkout.CreateCheckoutSession(stripe.CheckoutRequest{
		AccountID:     *creator.StripeAccountID,
		CustomerEmail: subscriber.Email,
		PriceID:       *tier.StripePriceID,
		Recurring:     tier.Recurring(),
		SuccessURL:    base + "?checkout=success",
		CancelURL:     base + "?checkout=canceled",
		ReferenceID:   subscriber.ID,
		Metadata: map[string]string{
			"subscriber_id":   subscriber.ID,
			"product_id":      p.ID,
			"pricing_tier_id": tier.ID,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("product_id", p.ID).Str("tier_id", tier.ID).Msg("portal checkout failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
