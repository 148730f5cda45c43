package subscribers

import (
	"errors"
	"net/http"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/domain/products"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func whitelabelProduct(c *gin.Context) *products.Product {
	productID, ok := respond.ParamID(c, "productId", "product")
	if !ok {
		return nil
	}
	return ownedProductByID(c, productID)
}

// GET /api/whitelabel/:productId
//
// Unconfigured products answer with the default branding and configured=false.
func (h *Handler) GetWhitelabel(c *gin.Context) {
	p := whitelabelProduct(c)
	if p == nil {
		return
	}

	var wl products.WhitelabelConfig
	err := database.DB.WithContext(c.Request.Context()).
		Where("product_id = ?", p.ID).
		First(&wl).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusOK, whitelabelResponse{WhitelabelConfig: products.DefaultWhitelabel(*p)})
	case err != nil:
		respond.Internal(c, err, "load whitelabel config")
	default:
		c.JSON(http.StatusOK, whitelabelResponse{WhitelabelConfig: wl, Configured: true})
	}
}

type whitelabelResponse struct {
	products.WhitelabelConfig
	Configured bool `json:"configured"`
}

type createWhitelabelInput struct {
	CustomDomain   *string `json:"custom_domain" binding:"omitempty,fqdn"`
	PrimaryColor   string  `json:"primary_color" binding:"omitempty,hexcolor"`
	SecondaryColor string  `json:"secondary_color" binding:"omitempty,hexcolor"`
	LogoURL        *string `json:"logo_url" binding:"omitempty,url"`
	CompanyName    string  `json:"company_name" binding:"required,min=1,max=255"`
	SupportEmail   *string `json:"support_email" binding:"omitempty,email"`
	CustomCSS      *string `json:"custom_css" binding:"omitempty,max=20000"`
}

// POST /api/whitelabel/:productId
func (h *Handler) CreateWhitelabel(c *gin.Context) {
	var input createWhitelabelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	p := whitelabelProduct(c)
	if p == nil {
		return
	}

	wl := products.DefaultWhitelabel(*p)
	wl.CompanyName = input.CompanyName
	wl.CustomDomain = input.CustomDomain
	wl.LogoURL = input.LogoURL
	wl.SupportEmail = input.SupportEmail
	wl.CustomCSS = input.CustomCSS
	if input.PrimaryColor != "" {
		wl.PrimaryColor = input.PrimaryColor
	}
	if input.SecondaryColor != "" {
		wl.SecondaryColor = input.SecondaryColor
	}

	if err := database.DB.WithContext(c.Request.Context()).Create(&wl).Error; err != nil {
		respond.DBError(c, err, "Whitelabel config")
		return
	}

	c.JSON(http.StatusCreated, whitelabelResponse{WhitelabelConfig: wl, Configured: true})
}

type updateWhitelabelInput struct {
	CustomDomain   *string `json:"custom_domain" binding:"omitempty,fqdn"`
	PrimaryColor   *string `json:"primary_color" binding:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondary_color" binding:"omitempty,hexcolor"`
	LogoURL        *string `json:"logo_url" binding:"omitempty,url"`
	CompanyName    *string `json:"company_name" binding:"omitempty,min=1,max=255"`
	SupportEmail   *string `json:"support_email" binding:"omitempty,email"`
	CustomCSS      *string `json:"custom_css" binding:"omitempty,max=20000"`
}

// PATCH /api/whitelabel/:productId
func (h *Handler) UpdateWhitelabel(c *gin.Context) {
	var input updateWhitelabelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	p := whitelabelProduct(c)
	if p == nil {
		return
	}

	var wl products.WhitelabelConfig
	db := database.DB.WithContext(c.Request.Context())
	if err := db.Where("product_id = ?", p.ID).First(&wl).Error; err != nil {
		respond.DBError(c, err, "Whitelabel config")
		return
	}

	updates := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	set("custom_domain", input.CustomDomain)
	set("primary_color", input.PrimaryColor)
	set("secondary_color", input.SecondaryColor)
	set("logo_url", input.LogoURL)
	set("company_name", input.CompanyName)
	set("support_email", input.SupportEmail)
	set("custom_css", input.CustomCSS)

	if len(updates) > 0 {
		if err := db.Model(&wl).Updates(updates).Error; err != nil {
			respond.DBError(c, err, "Whitelabel config")
			return
		}
	}

	c.JSON(http.StatusOK, whitelabelResponse{WhitelabelConfig: wl, Configured: true})
}
