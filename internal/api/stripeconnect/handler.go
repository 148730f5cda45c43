// Package stripeconnect links a creator's own Stripe account to the platform
// through Connect OAuth (standard accounts).
package stripeconnect

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"saas-template/database"
	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/products"
	"saas-template/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Connector interface {
	ConnectAuthorizeURL(redirectURI, state string) string
	ExchangeConnectCode(code string) (*stripe.ConnectCredentials, error)
	Deauthorize(accountID string) error
}

type Handler struct {
	connector Connector
	clientID  string
	apiURL    string
	webURL    string
	now       func() time.Time
}

func NewHandler(connector Connector, clientID, apiURL, webURL string) *Handler {
	return &Handler{
		connector: connector,
		clientID:  clientID,
		apiURL:    apiURL,
		webURL:    webURL,
		now:       time.Now,
	}
}

func (h *Handler) redirectURI() string {
	return h.apiURL + "/api/stripe/callback"
}

// GET /api/stripe/connect
func (h *Handler) Connect(c *gin.Context) {
	if h.clientID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe client ID not configured"})
		return
	}

	creator := middleware.CurrentCreator(c)
	state, err := stripe.EncodeState(creator.ID, h.now())
	if err != nil {
		respond.Internal(c, err, "encode connect state")
		return
	}

	c.JSON(http.StatusOK, gin.H{"authUrl": h.connector.ConnectAuthorizeURL(h.redirectURI(), state)})
}

// GET /api/stripe/callback
//
// Public: Stripe redirects the browser here, so the creator comes from the
// state parameter rather than a bearer token.
func (h *Handler) Callback(c *gin.Context) {
	if desc := c.Query("error_description"); desc != "" {
		log.Warn().Str("error", c.Query("error")).Str("description", desc).Msg("stripe connect denied")
		c.Redirect(http.StatusFound, h.webURL+"/dashboard/onboarding?stripe_error="+url.QueryEscape(desc))
		return
	}

	code, rawState := c.Query("code"), c.Query("state")
	if code == "" || rawState == "" {
		respond.BadRequest(c, "Missing code or state parameter")
		return
	}

	state, err := stripe.DecodeState(rawState, h.now())
	if err != nil {
		if errors.Is(err, stripe.ErrStateExpired) {
			respond.BadRequest(c, "State parameter expired")
			return
		}
		respond.BadRequest(c, "Invalid state parameter")
		return
	}

	ctx := c.Request.Context()
	var creator creators.Creator
	if err := database.DB.WithContext(ctx).First(&creator, "id = ?", state.CreatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.NotFound(c, "Creator")
			return
		}
		respond.Internal(c, err, "load creator for connect callback")
		return
	}

	creds, err := h.connector.ExchangeConnectCode(code)
	if err != nil {
		log.Error().Err(err).Str("creator_id", creator.ID).Msg("stripe connect exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to connect Stripe account"})
		return
	}

	if err := database.DB.WithContext(ctx).Model(&creator).Updates(map[string]interface{}{
		"stripe_account_id":    creds.AccountID,
		"stripe_access_token":  creds.AccessToken,
		"stripe_refresh_token": creds.RefreshToken,
	}).Error; err != nil {
		respond.DBError(c, err, "Stripe account")
		return
	}

	log.Info().Str("creator_id", creator.ID).Str("account_id", creds.AccountID).Msg("stripe account connected")
	c.Redirect(http.StatusFound, h.webURL+"/dashboard/onboarding?stripe_connected=true")
}

// POST /api/stripe/disconnect
func (h *Handler) Disconnect(c *gin.Context) {
	creator := middleware.CurrentCreator(c)
	if !creator.StripeConnected() {
		respond.BadRequest(c, "No Stripe account connected")
		return
	}

	if err := h.connector.Deauthorize(*creator.StripeAccountID); err != nil {
		// the account may already have revoked access; clear locally regardless
		log.Warn().Err(err).Str("creator_id", creator.ID).Msg("stripe deauthorize failed")
	}

	// tier prices live on the disconnected account and cannot be reused
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(creator).Updates(map[string]interface{}{
			"stripe_account_id":    nil,
			"stripe_access_token":  nil,
			"stripe_refresh_token": nil,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&products.PricingTier{}).
			Where("product_id IN (?)", database.DB.Model(&products.Product{}).Select("id").Where("creator_id = ?", creator.ID)).
			Updates(map[string]interface{}{
				"stripe_product_id": nil,
				"stripe_price_id":   nil,
			}).Error
	})
	if err != nil {
		respond.Internal(c, err, "clear stripe credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stripe account disconnected successfully"})
}
