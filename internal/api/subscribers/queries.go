package subscribers

import (
	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/products"
	"saas-template/internal/domain/subscribers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// creatorProducts is the subquery of product ids owned by the caller.
func creatorProducts(c *gin.Context) *gorm.DB {
	return database.DB.Model(&products.Product{}).
		Select("id").
		Where("creator_id = ?", middleware.CurrentCreator(c).ID)
}

// ownedProductByID loads a product if it belongs to the caller. It writes the
// error response itself and returns nil on failure.
func ownedProductByID(c *gin.Context, productID string) *products.Product {
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

// ownedSubscriber loads :subscriberId when its product belongs to the caller.
func ownedSubscriber(c *gin.Context) *subscribers.Subscriber {
	id, ok := respond.ParamID(c, "subscriberId", "subscriber")
	if !ok {
		return nil
	}

	var s subscribers.Subscriber
	err := database.DB.WithContext(c.Request.Context()).
		Where("id = ? AND product_id IN (?)", id, creatorProducts(c)).
		First(&s).Error
	if err != nil {
		respond.DBError(c, err, "Subscriber")
		return nil
	}
	return &s
}

// tierBelongsTo reports whether tierID is a pricing tier of productID.
func tierBelongsTo(c *gin.Context, tierID, productID string) (bool, error) {
	var n int64
	err := database.DB.WithContext(c.Request.Context()).
		Model(&products.PricingTier{}).
		Where("id = ? AND product_id = ?", tierID, productID).
		Count(&n).Error
	return n > 0, err
}
