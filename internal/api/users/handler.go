package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/creators"
	"saas-template/internal/infra/authprovider"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserProvider reads and updates the caller's provider account.
type UserProvider interface {
	GetUser(ctx context.Context, accessToken string) (*authprovider.User, error)
	UpdateEmail(ctx context.Context, accessToken, email string) (*authprovider.User, error)
}

type Handler struct {
	provider UserProvider
}

func NewHandler(provider UserProvider) *Handler {
	return &Handler{provider: provider}
}

// GET /api/users/profile
func (h *Handler) GetProfile(c *gin.Context) {
	token := c.GetString(middleware.ContextAccessToken)

	user, err := h.provider.GetUser(c.Request.Context(), token)
	if err != nil {
		if pe, ok := authprovider.AsError(err); ok && pe.Status == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		log.Error().Err(err).Msg("fetch provider user")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not load profile"})
		return
	}

	var creator creators.Creator
	var found *creators.Creator
	err = database.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		First(&creator).Error
	switch {
	case err == nil:
		found = &creator
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		respond.Internal(c, err, "load creator for profile")
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User:    BuildUserDTO(user),
		Creator: BuildCreatorDTO(found),
		Access:  BuildAccessDTO(time.Now(), found),
	})
}

// PUT /api/users/profile
//
// Email changes go through the provider, which sends its own confirmation.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BadRequest(c, "Invalid email")
		return
	}

	token := c.GetString(middleware.ContextAccessToken)
	user, err := h.provider.UpdateEmail(c.Request.Context(), token, input.Email)
	if err != nil {
		if pe, ok := authprovider.AsError(err); ok && pe.Status < 500 {
			respond.BadRequest(c, pe.Message)
			return
		}
		log.Error().Err(err).Msg("update provider user")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": BuildUserDTO(user)})
}
