package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	verifierCookie = "pkce_verifier"
	verifierMaxAge = 600 // seconds
	cookiePath     = "/api/auth"
)

func (h *Handler) callbackURL() string {
	return h.apiURL + "/api/auth/callback"
}

// GET /api/auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	verifier := oauth2.GenerateVerifier()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(verifierCookie, verifier, verifierMaxAge, cookiePath, "", h.secureCookies, true)

	target := h.provider.AuthorizeURL("google", h.callbackURL(), oauth2.S256ChallengeFromVerifier(verifier))
	c.Redirect(http.StatusFound, target)
}

// GET /api/auth/callback
func (h *Handler) Callback(c *gin.Context) {
	if desc := c.Query("error_description"); desc != "" {
		h.callbackFailed(c, http.StatusUnauthorized, desc)
		return
	}

	code := c.Query("code")
	if code == "" {
		h.callbackFailed(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	verifier, err := c.Cookie(verifierCookie)
	if err != nil || verifier == "" {
		h.callbackFailed(c, http.StatusBadRequest, "Sign-in session expired, please try again")
		return
	}

	session, err := h.provider.ExchangeCodeForSession(c.Request.Context(), code, verifier)
	if err != nil {
		log.Warn().Err(err).Msg("oauth code exchange failed")
		h.callbackFailed(c, http.StatusUnauthorized, "Could not complete sign-in")
		return
	}

	c.SetCookie(verifierCookie, "", -1, cookiePath, "", h.secureCookies, true)

	if h.webURL == "" {
		c.JSON(http.StatusOK, session)
		return
	}
	c.Redirect(http.StatusFound, h.sessionRedirect(session))
}

func (h *Handler) callbackFailed(c *gin.Context, status int, msg string) {
	if h.webURL == "" {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	q := url.Values{"error": {msg}}
	c.Redirect(http.StatusFound, h.webURL+"/sign-in?"+q.Encode())
}
