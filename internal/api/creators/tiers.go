package creators

import (
	"net/http"
	"strings"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/products"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type tierResponse struct {
	products.PricingTier
	Warning string `json:"warning,omitempty"`
}

const stripeSyncWarning = "Pricing tier saved but could not be synced to Stripe"

// GET /api/creators/products/:productId/tiers
func (h *Handler) ListTiers(c *gin.Context) {
	p := ownedProduct(c)
	if p == nil {
		return
	}

	tiers := []products.PricingTier{}
	if err := database.DB.WithContext(c.Request.Context()).
		Where("product_id = ?", p.ID).
		Order("price_amount ASC").
		Find(&tiers).Error; err != nil {
		respond.Internal(c, err, "list pricing tiers")
		return
	}
	c.JSON(http.StatusOK, tiers)
}

type createTierInput struct {
	Name            string   `json:"name" binding:"required,min=1,max=255"`
	Description     *string  `json:"description" binding:"omitempty,max=2000"`
	PriceAmount     *int64   `json:"price_amount" binding:"required,min=0"`
	PriceCurrency   string   `json:"price_currency" binding:"omitempty,currency"`
	BillingInterval string   `json:"billing_interval" binding:"required,billing_interval"`
	Features        []string `json:"features" binding:"omitempty,dive,min=1,max=255"`
	IsActive        *bool    `json:"is_active"`
}

// POST /api/creators/products/:productId/tiers
func (h *Handler) CreateTier(c *gin.Context) {
	var input createTierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	p := ownedProduct(c)
	if p == nil {
		return
	}

	currency := strings.ToUpper(input.PriceCurrency)
	if currency == "" {
		currency = "USD"
	}
	features := input.Features
	if features == nil {
		features = []string{}
	}

	tier := products.PricingTier{
		ProductID:       p.ID,
		Name:            input.Name,
		Description:     input.Description,
		PriceAmount:     *input.PriceAmount,
		PriceCurrency:   currency,
		BillingInterval: input.BillingInterval,
		Features:        pq.StringArray(features),
		IsActive:        true,
	}
	if input.IsActive != nil {
		tier.IsActive = *input.IsActive
	}

	db := database.DB.WithContext(c.Request.Context())
	if err := db.Create(&tier).Error; err != nil {
		respond.DBError(c, err, "Pricing tier")
		return
	}

	resp := tierResponse{PricingTier: tier}
	if h.syncTier(c, middleware.CurrentCreator(c), p, &tier) {
		resp.PricingTier = tier
	} else if h.shouldSync(middleware.CurrentCreator(c)) {
		resp.Warning = stripeSyncWarning
	}

	c.JSON(http.StatusCreated, resp)
}

type updateTierInput struct {
	Name            *string   `json:"name" binding:"omitempty,min=1,max=255"`
	Description     *string   `json:"description" binding:"omitempty,max=2000"`
	PriceAmount     *int64    `json:"price_amount" binding:"omitempty,min=0"`
	PriceCurrency   *string   `json:"price_currency" binding:"omitempty,currency"`
	BillingInterval *string   `json:"billing_interval" binding:"omitempty,billing_interval"`
	Features        *[]string `json:"features"`
	IsActive        *bool     `json:"is_active"`
}

// PATCH /api/creators/products/:productId/tiers/:tierId
//
// Stripe prices are immutable, so a change to amount, currency or interval
// creates a new price first and then archives the old one.
func (h *Handler) UpdateTier(c *gin.Context) {
	var input updateTierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	p := ownedProduct(c)
	if p == nil {
		return
	}
	tier := ownedTier(c, p)
	if tier == nil {
		return
	}

	updates := map[string]interface{}{}
	repriced := false
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceAmount != nil && *input.PriceAmount != tier.PriceAmount {
		updates["price_amount"] = *input.PriceAmount
		repriced = true
	}
	if input.PriceCurrency != nil && !strings.EqualFold(*input.PriceCurrency, tier.PriceCurrency) {
		updates["price_currency"] = strings.ToUpper(*input.PriceCurrency)
		repriced = true
	}
	if input.BillingInterval != nil && *input.BillingInterval != tier.BillingInterval {
		updates["billing_interval"] = *input.BillingInterval
		repriced = true
	}
	if input.Features != nil {
		updates["features"] = pq.StringArray(*input.Features)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.WithContext(c.Request.Context()).
			Model(tier).
			Updates(updates).Error; err != nil {
			respond.DBError(c, err, "Pricing tier")
			return
		}
	}

	resp := tierResponse{PricingTier: *tier}
	creator := middleware.CurrentCreator(c)
	if repriced && h.shouldSync(creator) {
		oldPrice := ""
		if tier.StripePriceID != nil {
			oldPrice = *tier.StripePriceID
		}
		if !h.syncTier(c, creator, p, tier) {
			// the old price no longer matches the tier; leave it unpurchasable
			h.clearTierPrice(c, tier)
			resp.Warning = stripeSyncWarning
		}
		resp.PricingTier = *tier
		h.archivePrice(creator, tier.ID, oldPrice)
	}

	c.JSON(http.StatusOK, resp)
}

// DELETE /api/creators/products/:productId/tiers/:tierId
func (h *Handler) DeleteTier(c *gin.Context) {
	p := ownedProduct(c)
	if p == nil {
		return
	}
	tier := ownedTier(c, p)
	if tier == nil {
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Delete(tier).Error; err != nil {
		respond.DBError(c, err, "Pricing tier")
		return
	}

	if creator := middleware.CurrentCreator(c); h.shouldSync(creator) {
		if tier.StripePriceID != nil {
			h.archivePrice(creator, tier.ID, *tier.StripePriceID)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pricing tier deleted"})
}

func (h *Handler) shouldSync(creator *creators.Creator) bool {
	return h.catalog != nil && h.catalog.Ready() && creator.StripeConnected()
}

// syncTier creates the Stripe product and price for tier on the creator's
// connected account and stores their ids. Failures are logged; the tier
// stays without a price.
func (h *Handler) syncTier(c *gin.Context, creator *creators.Creator, p *products.Product, tier *products.PricingTier) bool {
	if !h.shouldSync(creator) {
		return false
	}

	productID, priceID, err := h.catalog.CreateTierPrice(*creator.StripeAccountID, p, tier)
	if err != nil {
		log.Warn().Err(err).Str("tier_id", tier.ID).Msg("stripe price sync failed")
		return false
	}

	if err := database.DB.WithContext(c.Request.Context()).
		Model(tier).
		Updates(map[string]interface{}{
			"stripe_product_id": productID,
			"stripe_price_id":   priceID,
		}).Error; err != nil {
		log.Error().Err(err).Str("tier_id", tier.ID).Str("price_id", priceID).Msg("store stripe price id")
		return false
	}
	return true
}

// clearTierPrice drops the Stripe ids of a tier whose price could not be
// replaced.
func (h *Handler) clearTierPrice(c *gin.Context, tier *products.PricingTier) {
	if err := database.DB.WithContext(c.Request.Context()).
		Model(tier).
		Updates(map[string]interface{}{
			"stripe_product_id": nil,
			"stripe_price_id":   nil,
		}).Error; err != nil {
		log.Error().Err(err).Str("tier_id", tier.ID).Msg("clear stale stripe price id")
		return
	}
	tier.StripeProductID = nil
	tier.StripePriceID = nil
}

func (h *Handler) archivePrice(creator *creators.Creator, tierID, priceID string) {
	if priceID == "" {
		return
	}
	if err := h.catalog.ArchivePrice(*creator.StripeAccountID, priceID); err != nil {
		log.Warn().Err(err).Str("tier_id", tierID).Msg("archive stripe price failed")
	}
}
