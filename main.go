package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saas-template/config"
	"saas-template/database"
	routes "saas-template/internal/app/http"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/infra/authprovider"
	"saas-template/internal/infra/email"
	"saas-template/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// audience carried by the provider's user access tokens
const tokenAudience = "authenticated"

func main() {
	config.LoadLogging()
	logger := config.NewLogger(config.LOG_LEVEL, config.LOG_FORMAT)

	root := &cobra.Command{
		Use:           "saas-api",
		Short:         "Multi-tenant SaaS billing API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(logger), migrateCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and seed platform settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			db, err := database.Open(config.DB_URL)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func serveCmd(logger zerolog.Logger) *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			database.InitDB(config.DB_URL)
			if autoMigrate {
				if err := database.Migrate(database.DB); err != nil {
					return err
				}
			}

			stripe.Configure(config.STRIPE_SECRET_KEY, config.STRIPE_CLIENT_ID)
			if !stripe.Ready() {
				log.Warn().Msg("STRIPE_SECRET_KEY not set; Stripe features disabled")
			}

			verifier, err := newVerifier(cmd.Context())
			if err != nil {
				return err
			}

			if config.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			r := gin.New()
			r.Use(gin.Recovery(), middleware.RequestLogger(logger))
			r.Use(cors.New(cors.Config{
				AllowOrigins:     []string{config.CORS_ORIGIN},
				AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			}))

			routes.RegisterRoutes(r, routes.Deps{
				Verifier:             verifier,
				Auth:                 authprovider.New(config.AUTH_URL, config.AUTH_ANON_KEY, config.AUTH_SERVICE_ROLE_KEY),
				Mailer:               email.NewService(config.RESEND_API_KEY, config.EMAIL_FROM, logger),
				Stripe:               stripe.Gateway{ClientID: config.STRIPE_CLIENT_ID},
				APIURL:               config.API_URL,
				WebURL:               config.WEB_URL,
				SecureCookies:        config.IsProduction(),
				PlatformPriceID:      config.STRIPE_PLATFORM_PRICE_ID,
				WebhookSecret:        config.STRIPE_WEBHOOK_SECRET,
				ConnectWebhookSecret: config.STRIPE_CONNECT_WEBHOOK_SECRET,
				AuthRateLimit:        config.AUTH_RATE_LIMIT,
			})

			return run(cmd.Context(), r)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply migrations before serving")
	return cmd
}

func newVerifier(ctx context.Context) (authprovider.TokenVerifier, error) {
	if config.AUTH_OIDC_ISSUER != "" {
		return authprovider.NewOIDCVerifier(ctx, config.AUTH_OIDC_ISSUER, tokenAudience)
	}
	return authprovider.NewSecretVerifier(config.AUTH_JWT_SECRET, tokenAudience)
}

// run serves until SIGINT/SIGTERM, then drains in-flight requests.
func run(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + config.PORT,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", config.PORT).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
