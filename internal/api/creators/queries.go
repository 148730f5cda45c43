package creators

import (
	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/products"

	"github.com/gin-gonic/gin"
)

// ownedProduct loads :productId if it belongs to the caller. It writes the
// error response itself and returns nil on failure.
func ownedProduct(c *gin.Context) *products.Product {
	productID, ok := respond.ParamID(c, "productId", "product")
	if !ok {
		return nil
	}

	var p products.Product
	err := database.DB.WithContext(c.Request.Context()).
		Where("id = ? AND creator_id = ?", productID, middleware.CurrentCreator(c).ID).
		First(&p).Error
	if err != nil {
		respond.DBError(c, err, "Product")
		return nil
	}
	return &p
}

// ownedTier loads :tierId under an already owned product.
func ownedTier(c *gin.Context, p *products.Product) *products.PricingTier {
	tierID, ok := respond.ParamID(c, "tierId", "pricing tier")
	if !ok {
		return nil
	}

	var t products.PricingTier
	err := database.DB.WithContext(c.Request.Context()).
		Where("id = ? AND product_id = ?", tierID, p.ID).
		First(&t).Error
	if err != nil {
		respond.DBError(c, err, "Pricing tier")
		return nil
	}
	return &t
}
