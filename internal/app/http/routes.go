package routes

import (
	"net/http"
	"time"

	authapi "saas-template/internal/api/auth"
	creatorsapi "saas-template/internal/api/creators"
	platformapi "saas-template/internal/api/platform"
	"saas-template/internal/api/portal"
	"saas-template/internal/api/stripeconnect"
	stripewebhooks "saas-template/internal/api/stripewebhook"
	subscribersapi "saas-template/internal/api/subscribers"
	"saas-template/internal/api/subscriptions"
	"saas-template/internal/api/users"
	"saas-template/internal/api/validation"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/infra/authprovider"
	"saas-template/internal/infra/stripe"
	"saas-template/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const webhookPath = "/api/stripe/webhook"

// AuthClient is everything the auth and users handlers need from the
// identity provider.
type AuthClient interface {
	authapi.Provider
	users.UserProvider
}

// Deps carries the external clients and settings the handlers are built from.
type Deps struct {
	Verifier authprovider.TokenVerifier
	Auth     AuthClient
	Mailer   authapi.ResetMailer
	Stripe   stripe.Gateway

	APIURL               string
	WebURL               string
	SecureCookies        bool
	PlatformPriceID      string
	WebhookSecret        string
	ConnectWebhookSecret string
	AuthRateLimit        float64
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	validation.Register()

	r.Use(middleware.SanitizeAndCleanInputMiddleware(webhookPath))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	requireAuth := middleware.AuthMiddleware(d.Verifier)
	withCreator := []gin.HandlerFunc{requireAuth, middleware.LoadCreator()}
	canWrite := middleware.RequireWriteAccess()

	// auth (public, rate limited)
	authH := authapi.NewHandler(d.Auth, d.Mailer, d.APIURL, d.WebURL, d.SecureCookies)
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(middleware.NewIPRateLimiter(d.AuthRateLimit, 5)))
	authGroup.POST("/signup", authH.SignUp)
	authGroup.POST("/signin", authH.SignIn)
	authGroup.POST("/signout", requireAuth, authH.SignOut)
	authGroup.POST("/resend-confirmation", authH.ResendConfirmation)
	authGroup.POST("/password-reset", authH.RequestPasswordReset)
	authGroup.GET("/google", authH.GoogleStart)
	authGroup.GET("/callback", authH.Callback)

	// users
	usersH := users.NewHandler(d.Auth)
	usersGroup := api.Group("/users", requireAuth)
	usersGroup.GET("/profile", usersH.GetProfile)
	usersGroup.PUT("/profile", usersH.UpdateProfile)

	// creators
	creatorsH := creatorsapi.NewHandler(d.Stripe)
	api.POST("/creators", requireAuth, creatorsH.Create)
	creatorsGroup := api.Group("/creators", withCreator...)
	creatorsGroup.GET("/me", creatorsH.GetMe)
	creatorsGroup.PATCH("/me", creatorsH.UpdateMe)
	creatorsGroup.GET("/products", creatorsH.ListProducts)
	creatorsGroup.POST("/products", canWrite, creatorsH.CreateProduct)
	creatorsGroup.GET("/products/:productId", creatorsH.GetProduct)
	creatorsGroup.PATCH("/products/:productId", canWrite, creatorsH.UpdateProduct)
	creatorsGroup.DELETE("/products/:productId", canWrite, creatorsH.DeleteProduct)
	creatorsGroup.POST("/products/:productId/rotate-key", canWrite, creatorsH.RotateProductKey)
	creatorsGroup.GET("/products/:productId/tiers", creatorsH.ListTiers)
	creatorsGroup.POST("/products/:productId/tiers", canWrite, creatorsH.CreateTier)
	creatorsGroup.PATCH("/products/:productId/tiers/:tierId", canWrite, creatorsH.UpdateTier)
	creatorsGroup.DELETE("/products/:productId/tiers/:tierId", canWrite, creatorsH.DeleteTier)

	// subscribers, usage and white-label
	subsH := subscribersapi.NewHandler()
	subsGroup := api.Group("/subscribers", withCreator...)
	subsGroup.GET("", subsH.List)
	subsGroup.POST("", canWrite, subsH.Create)
	subsGroup.GET("/:subscriberId", subsH.Get)
	subsGroup.PATCH("/:subscriberId", canWrite, subsH.Update)
	subsGroup.POST("/:subscriberId/usage", canWrite, subsH.RecordUsage)
	subsGroup.GET("/:subscriberId/usage", subsH.ListUsage)

	// usage reported by the creator's product, keyed by its API key
	api.POST("/products/:productId/usage", middleware.RequireProductKey(), subsH.IngestUsage)

	wlGroup := api.Group("/whitelabel", withCreator...)
	wlGroup.GET("/:productId", subsH.GetWhitelabel)
	wlGroup.POST("/:productId", canWrite, subsH.CreateWhitelabel)
	wlGroup.PATCH("/:productId", canWrite, subsH.UpdateWhitelabel)

	// platform owner
	platformH := platformapi.NewHandler()
	platformGroup := api.Group("/platform", withCreator...)
	platformGroup.Use(middleware.RequirePlatformOwner())
	platformGroup.GET("/settings", platformH.GetSettings)
	platformGroup.PATCH("/settings", platformH.UpdateSettings)
	platformGroup.GET("/creators", platformH.ListCreators)
	platformGroup.GET("/creators/:creatorId", platformH.GetCreator)
	platformGroup.PATCH("/creators/:creatorId", platformH.UpdateCreator)
	platformGroup.GET("/stats", platformH.GetStats)

	// the creator's own platform subscription
	subscriptionH := subscriptions.NewHandler(d.Stripe, d.PlatformPriceID, d.WebURL)
	subscriptionGroup := api.Group("/subscriptions", withCreator...)
	subscriptionGroup.GET("", subscriptionH.Get)
	subscriptionGroup.GET("/plan", subscriptionH.GetPlan)
	subscriptionGroup.POST("/checkout", subscriptionH.Checkout)
	subscriptionGroup.POST("/portal", subscriptionH.Portal)
	subscriptionGroup.POST("/cancel", subscriptionH.Cancel)

	// Stripe Connect and webhooks
	connectH := stripeconnect.NewHandler(d.Stripe, d.Stripe.ClientID, d.APIURL, d.WebURL)
	webhookH := stripewebhooks.NewHandler(d.WebhookSecret, d.ConnectWebhookSecret)
	stripeGroup := api.Group("/stripe")
	stripeGroup.GET("/callback", connectH.Callback)
	stripeGroup.POST("/webhook", webhookH.Webhook)
	stripeGroup.GET("/connect", append(withCreator, canWrite, connectH.Connect)...)
	stripeGroup.POST("/disconnect", append(withCreator, canWrite, connectH.Disconnect)...)

	// public customer portal
	portalH := portal.NewHandler(d.Stripe, d.WebURL)
	portalGroup := api.Group("/portal")
	portalGroup.GET("/:productId", portalH.GetProduct)
	portalGroup.POST("/:productId/checkout", middleware.RateLimit(middleware.NewIPRateLimiter(d.AuthRateLimit, 10)), portalH.Checkout)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found - " + c.Request.URL.Path})
	})
}
