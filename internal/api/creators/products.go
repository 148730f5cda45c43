package creators

import (
	"net/http"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/products"

	"github.com/gin-gonic/gin"
)

// productWithKey is returned exactly once per key, on create and rotate.
type productWithKey struct {
	products.Product
	APIKey string `json:"api_key"`
}

// GET /api/creators/products
func (h *Handler) ListProducts(c *gin.Context) {
	list := []products.Product{}
	if err := database.DB.WithContext(c.Request.Context()).
		Where("creator_id = ?", middleware.CurrentCreator(c).ID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		respond.Internal(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, list)
}

type createProductInput struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ProductURL  string  `json:"product_url" binding:"required,url"`
	WebhookURL  *string `json:"webhook_url" binding:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

// POST /api/creators/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var input createProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	key, hash, hint, err := products.NewAPIKey()
	if err != nil {
		respond.Internal(c, err, "generate product api key")
		return
	}

	p := products.Product{
		CreatorID:   middleware.CurrentCreator(c).ID,
		Name:        input.Name,
		Description: input.Description,
		ProductURL:  input.ProductURL,
		WebhookURL:  input.WebhookURL,
		APIKeyHash:  &hash,
		APIKeyHint:  &hint,
		IsActive:    true,
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}

	if err := database.DB.WithContext(c.Request.Context()).Create(&p).Error; err != nil {
		respond.DBError(c, err, "Product")
		return
	}

	c.JSON(http.StatusCreated, productWithKey{Product: p, APIKey: key})
}

// GET /api/creators/products/:productId
func (h *Handler) GetProduct(c *gin.Context) {
	p := ownedProduct(c)
	if p == nil {
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateProductInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	ProductURL  *string `json:"product_url" binding:"omitempty,url"`
	WebhookURL  *string `json:"webhook_url" binding:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

// PATCH /api/creators/products/:productId
func (h *Handler) UpdateProduct(c *gin.Context) {
	var input updateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	p := ownedProduct(c)
	if p == nil {
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ProductURL != nil {
		updates["product_url"] = *input.ProductURL
	}
	if input.WebhookURL != nil {
		updates["webhook_url"] = *input.WebhookURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.WithContext(c.Request.Context()).
			Model(p).
			Updates(updates).Error; err != nil {
			respond.DBError(c, err, "Product")
			return
		}
	}

	c.JSON(http.StatusOK, p)
}

// DELETE /api/creators/products/:productId
//
// Tiers, subscribers, usage and branding go with it through FK cascades.
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, ok := respond.ParamID(c, "productId", "product")
	if !ok {
		return
	}

	res := database.DB.WithContext(c.Request.Context()).
		Where("id = ? AND creator_id = ?", productID, middleware.CurrentCreator(c).ID).
		Delete(&products.Product{})
	if res.Error != nil {
		respond.DBError(c, res.Error, "Product")
		return
	}
	if res.RowsAffected == 0 {
		respond.NotFound(c, "Product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// POST /api/creators/products/:productId/rotate-key
func (h *Handler) RotateProductKey(c *gin.Context) {
	p := ownedProduct(c)
	if p == nil {
		return
	}

	key, hash, hint, err := products.NewAPIKey()
	if err != nil {
		respond.Internal(c, err, "generate product api key")
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).
		Model(p).
		Updates(map[string]interface{}{"api_key_hash": hash, "api_key_hint": hint}).Error; err != nil {
		respond.DBError(c, err, "Product")
		return
	}

	c.JSON(http.StatusOK, productWithKey{Product: *p, APIKey: key})
}
