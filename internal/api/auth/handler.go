package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"saas-template/internal/api/respond"
	"saas-template/internal/app/http/middleware"
	"saas-template/internal/infra/authprovider"
	"saas-template/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Provider is the part of the auth provider client the handlers use.
type Provider interface {
	checker
	SignUp(ctx context.Context, email, password, redirectTo string) (*authprovider.SignUpResult, error)
	Resend(ctx context.Context, email, redirectTo string) error
	SignOut(ctx context.Context, accessToken string) error
	GenerateRecoveryLink(ctx context.Context, email, redirectTo string) (string, error)
	ExchangeCodeForSession(ctx context.Context, code, verifier string) (*authprovider.Session, error)
	AuthorizeURL(provider, redirectTo, codeChallenge string) string
}

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, resetLink string) error
}

type Handler struct {
	provider      Provider
	mailer        ResetMailer
	apiURL        string
	webURL        string
	secureCookies bool
}

func NewHandler(provider Provider, mailer ResetMailer, apiURL, webURL string, secureCookies bool) *Handler {
	return &Handler{
		provider:      provider,
		mailer:        mailer,
		apiURL:        apiURL,
		webURL:        webURL,
		secureCookies: secureCookies,
	}
}

const (
	msgExists            = "An account with this email already exists. Please sign in instead."
	msgExistsUnconfirmed = "An account with this email exists but hasn't been confirmed. Please check your email or request a new confirmation email."
	msgMaybeExists       = "An account with this email might already exist. Please sign in or reset your password."
	msgResetRequested    = "If an account exists for this email, a password reset link has been sent."
)

type credentialsInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// signupInput leaves the password unchecked at bind time so a short or
// missing password gets the length message rather than the email one.
type signupInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

type emailInput struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *Handler) confirmRedirect() string {
	if h.webURL == "" {
		return ""
	}
	return h.webURL + "/sign-in?confirmed=true"
}

// POST /api/auth/signup
func (h *Handler) SignUp(c *gin.Context) {
	var input signupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		metrics.SignupOutcomes.WithLabelValues("invalid").Inc()
		respond.BadRequest(c, "Please enter a valid email address.")
		return
	}
	if len(input.Password) < 8 {
		metrics.SignupOutcomes.WithLabelValues("invalid").Inc()
		respond.BadRequest(c, "Password must be at least 8 characters long.")
		return
	}

	ctx := c.Request.Context()
	masked := MaskEmail(input.Email)

	switch CheckExistence(ctx, h.provider, input.Email) {
	case Exists:
		metrics.SignupOutcomes.WithLabelValues("exists").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": msgExists})
		return
	case ExistsUnconfirmed:
		metrics.SignupOutcomes.WithLabelValues("exists_unconfirmed").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": msgExistsUnconfirmed, "code": "not_confirmed"})
		return
	case MaybeExists:
		metrics.SignupOutcomes.WithLabelValues("maybe_exists").Inc()
		c.JSON(http.StatusConflict, gin.H{"error": msgMaybeExists})
		return
	}

	res, err := h.provider.SignUp(ctx, input.Email, input.Password, h.confirmRedirect())
	if err != nil {
		if IsDuplicateSignup(err) {
			metrics.SignupOutcomes.WithLabelValues("duplicate").Inc()
			c.JSON(http.StatusConflict, gin.H{"error": msgExists})
			return
		}
		metrics.SignupOutcomes.WithLabelValues("failed").Inc()
		if pe, ok := authprovider.AsError(err); ok && pe.Status < 500 {
			log.Info().Str("email", masked).Str("reason", pe.Message).Msg("signup rejected by provider")
			respond.BadRequest(c, pe.Message)
			return
		}
		log.Error().Err(err).Str("email", masked).Msg("signup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Sign-up is temporarily unavailable"})
		return
	}

	user := res.User
	// The provider answers a repeated sign-up for an unconfirmed address with
	// an obfuscated user that has no identities.
	if user != nil && user.ID != "" && len(user.Identities) == 0 && !user.Confirmed() {
		metrics.SignupOutcomes.WithLabelValues("duplicate").Inc()
		log.Info().Str("email", masked).Msg("signup returned identity-less user, treating as duplicate")
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists. Please sign in with your password."})
		return
	}

	if !user.Confirmed() {
		metrics.SignupOutcomes.WithLabelValues("pending").Inc()
		c.JSON(http.StatusCreated, gin.H{
			"status":  "pending",
			"email":   input.Email,
			"message": "Check your email to confirm your account.",
		})
		return
	}

	metrics.SignupOutcomes.WithLabelValues("confirmed").Inc()
	c.JSON(http.StatusCreated, gin.H{"status": "confirmed", "session": res.Session})
}

// POST /api/auth/signin
func (h *Handler) SignIn(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.ValidationError(c, err)
		return
	}

	session, err := h.provider.SignInWithPassword(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		pe, ok := authprovider.AsError(err)
		switch {
		case !ok || pe.Status >= 500:
			log.Error().Err(err).Str("email", MaskEmail(input.Email)).Msg("signin failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Sign-in is temporarily unavailable"})
		case pe.Contains("email not confirmed"):
			c.JSON(http.StatusForbidden, gin.H{"error": "Email not confirmed", "code": "not_confirmed"})
		case pe.Contains("email not found"):
			c.JSON(http.StatusNotFound, gin.H{"error": "No account found with this email. Please sign up first."})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": pe.Message})
		}
		return
	}

	c.JSON(http.StatusOK, session)
}

// POST /api/auth/signout
func (h *Handler) SignOut(c *gin.Context) {
	token := c.GetString(middleware.ContextAccessToken)
	if err := h.provider.SignOut(c.Request.Context(), token); err != nil {
		// The token is dropped client side either way.
		log.Warn().Err(err).Msg("provider logout failed")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// POST /api/auth/resend-confirmation
func (h *Handler) ResendConfirmation(c *gin.Context) {
	var input emailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BadRequest(c, "Missing or invalid email")
		return
	}

	err := h.provider.Resend(c.Request.Context(), input.Email, h.confirmRedirect())
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"status": "resent"})
		return
	}

	pe, ok := authprovider.AsError(err)
	switch {
	case ok && pe.Contains("already confirmed"):
		c.JSON(http.StatusOK, gin.H{"status": "already_confirmed"})
	case ok && pe.Contains("not found"):
		c.JSON(http.StatusNotFound, gin.H{"status": "not_found", "error": "No account found with this email"})
	case ok && pe.Contains("already exists", "already in use", "already taken", "user already"):
		c.JSON(http.StatusOK, gin.H{"status": "exists", "message": "An account with this email already exists. Please sign in with your password."})
	default:
		log.Warn().Err(err).Str("email", MaskEmail(input.Email)).Msg("resend confirmation failed")
		c.JSON(http.StatusBadGateway, gin.H{"status": "send_failed", "error": "Could not resend the confirmation email"})
	}
}

// POST /api/auth/password-reset
//
// The answer is the same whether or not the address is registered.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var input emailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BadRequest(c, "Missing or invalid email")
		return
	}

	ctx := c.Request.Context()
	masked := MaskEmail(input.Email)

	redirect := ""
	if h.webURL != "" {
		redirect = h.webURL + "/reset-password"
	}
	link, err := h.provider.GenerateRecoveryLink(ctx, input.Email, redirect)
	switch {
	case errors.Is(err, authprovider.ErrAdminUnavailable):
		log.Warn().Msg("password reset requested but provider admin API is not configured")
	case err != nil:
		log.Info().Err(err).Str("email", masked).Msg("no recovery link generated")
	default:
		if err := h.mailer.SendPasswordReset(ctx, input.Email, link); err != nil {
			log.Error().Err(err).Str("email", masked).Msg("failed to send password reset email")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": msgResetRequested})
}

// sessionRedirect builds the dashboard URL handed the session in the fragment,
// which browsers do not send to servers.
func (h *Handler) sessionRedirect(s *authprovider.Session) string {
	frag := url.Values{
		"access_token":  {s.AccessToken},
		"refresh_token": {s.RefreshToken},
		"expires_in":    {strconv.Itoa(s.ExpiresIn)},
		"token_type":    {s.TokenType},
	}
	return h.webURL + "/dashboard#" + frag.Encode()
}
