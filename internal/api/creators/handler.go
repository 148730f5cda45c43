// Package creators serves the creator dashboard: the creator profile, its
// products and their pricing tiers. Every lookup is scoped to the caller's
// creator row.
package creators

import (
	"net/http"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/platform"
	"saas-template/internal/domain/products"

	"github.com/gin-gonic/gin"
)

// Catalog mirrors pricing tiers into a connected Stripe account.
type Catalog interface {
	Ready() bool
	CreateTierPrice(accountID string, p *products.Product, tier *products.PricingTier) (productID, priceID string, err error)
	ArchivePrice(accountID, priceID string) error
}

type Handler struct {
	catalog Catalog
	now     func() time.Time
}

func NewHandler(catalog Catalog) *Handler {
	return &Handler{catalog: catalog, now: time.Now}
}

// GET /api/creators/me
func (h *Handler) GetMe(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentCreator(c))
}

type createCreatorInput struct {
	CompanyName string  `json:"company_name" binding:"required,min=1,max=255"`
	ProductURL  *string `json:"product_url" binding:"omitempty,url"`
}

// POST /api/creators
func (h *Handler) Create(c *gin.Context) {
	var input createCreatorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	settings, err := platform.LoadSettings(ctx, database.DB)
	if err != nil {
		respond.Internal(c, err, "load platform settings")
		return
	}

	trialEnd := settings.TrialEnd(h.now())
	creator := creators.Creator{
		UserID:             c.GetString(middleware.ContextUserID),
		CompanyName:        input.CompanyName,
		ProductURL:         input.ProductURL,
		Role:               creators.RoleCreator,
		SubscriptionStatus: creators.StatusTrial,
		TrialEndsAt:        &trialEnd,
	}
	if err := database.DB.WithContext(ctx).Create(&creator).Error; err != nil {
		respond.DBError(c, err, "Creator profile")
		return
	}

	c.JSON(http.StatusCreated, creator)
}

type updateCreatorInput struct {
	CompanyName         *string `json:"company_name" binding:"omitempty,min=1,max=255"`
	ProductURL          *string `json:"product_url" binding:"omitempty,url"`
	OnboardingCompleted *bool   `json:"onboarding_completed"`
}

// PATCH /api/creators/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var input updateCreatorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if input.CompanyName != nil {
		updates["company_name"] = *input.CompanyName
	}
	if input.ProductURL != nil {
		updates["product_url"] = *input.ProductURL
	}
	if input.OnboardingCompleted != nil {
		updates["onboarding_completed"] = *input.OnboardingCompleted
	}

	creator := middleware.CurrentCreator(c)
	if len(updates) == 0 {
		c.JSON(http.StatusOK, creator)
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).
		Model(creator).
		Updates(updates).Error; err != nil {
		respond.DBError(c, err, "Creator profile")
		return
	}

	c.JSON(http.StatusOK, creator)
}
