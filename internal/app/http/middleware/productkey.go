package middleware

import (
	"net/http"
	"strings"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/domain/products"

	"github.com/gin-gonic/gin"
)

const (
	ContextProduct = "product"
	APIKeyHeader   = "X-API-Key"
)

// RequireProductKey authenticates a creator's own backend by the product API
// key. Unknown, inactive and mismatched products all answer 401.
func RequireProductKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing API key"})
			return
		}
		id, ok := respond.ParamID(c, "productId", "product")
		if !ok {
			c.Abort()
			return
		}

		var p products.Product
		err := database.DB.WithContext(c.Request.Context()).
			Where("id = ? AND is_active = ?", id, true).
			Limit(1).
			Find(&p).Error
		if err != nil {
			respond.Internal(c, err, "load product for api key")
			c.Abort()
			return
		}
		if p.ID == "" || !p.VerifyAPIKey(key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		c.Set(ContextProduct, &p)
		c.Next()
	}
}

// CurrentProduct returns the product stored by RequireProductKey.
func CurrentProduct(c *gin.Context) *products.Product {
	v, ok := c.Get(ContextProduct)
	if !ok {
		return nil
	}
	p, _ := v.(*products.Product)
	return p
}
