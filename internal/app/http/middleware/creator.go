package middleware

import (
	"errors"
	"net/http"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/domain/creators"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const ContextCreator = "creator"

// LoadCreator attaches the caller's creator profile. Callers without one get 404.
func LoadCreator() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var creator creators.Creator
		err := database.DB.WithContext(c.Request.Context()).
			Where("user_id = ?", userID).
			First(&creator).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Creator profile not found"})
			return
		}
		if err != nil {
			respond.Internal(c, err, "load creator")
			c.Abort()
			return
		}

		c.Set(ContextCreator, &creator)
		c.Next()
	}
}

// CurrentCreator returns the creator stored by LoadCreator.
func CurrentCreator(c *gin.Context) *creators.Creator {
	v, ok := c.Get(ContextCreator)
	if !ok {
		return nil
	}
	creator, _ := v.(*creators.Creator)
	return creator
}

// RequirePlatformOwner must run after LoadCreator.
func RequirePlatformOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		creator := CurrentCreator(c)
		if creator == nil || !creator.IsPlatformOwner() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "This action requires platform owner privileges",
			})
			return
		}
		c.Next()
	}
}

// RequireWriteAccess blocks mutations for creators whose platform trial or
// subscription no longer allows them. Must run after LoadCreator.
func RequireWriteAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		creator := CurrentCreator(c)
		if creator == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if creator.IsPlatformOwner() {
			c.Next()
			return
		}

		state := creators.ComputeAccessState(time.Now(), *creator)
		if !state.CanWrite() {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":        "Your platform subscription does not allow changes",
				"access_state": state,
			})
			return
		}
		c.Next()
	}
}
