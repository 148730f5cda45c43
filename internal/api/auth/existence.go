package auth

import (
	"context"
	"strings"

	"saas-template/internal/infra/authprovider"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Existence is the verdict of the pre-sign-up existence check.
type Existence string

const (
	Unknown           Existence = "unknown"
	Exists            Existence = "exists"
	ExistsUnconfirmed Existence = "exists_unconfirmed"
	MaybeExists       Existence = "maybe_exists"
)

// listPageSize bounds the admin lookup to a single page.
const listPageSize = 1000

// checker is the subset of the provider the existence check talks to.
type checker interface {
	ListUsers(ctx context.Context, page, perPage int) ([]authprovider.User, error)
	SignInWithOTP(ctx context.Context, email string, createUser bool) error
	SignInWithPassword(ctx context.Context, email, password string) (*authprovider.Session, error)
}

// CheckExistence runs the provider lookups in order and stops at the first
// conclusive answer. Lookups are best effort; their failures only move on to
// the next lookup. The result can be stale by the time sign-up runs.
func CheckExistence(ctx context.Context, p checker, email string) Existence {
	logger := log.With().Str("email", MaskEmail(email)).Logger()

	users, err := p.ListUsers(ctx, 1, listPageSize)
	switch {
	case err != nil:
		logger.Debug().Err(err).Msg("signup check: admin listing unavailable")
	default:
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				logger.Info().Msg("signup check: admin listing found user")
				return Exists
			}
		}
	}

	err = p.SignInWithOTP(ctx, email, false)
	if err == nil {
		logger.Info().Msg("signup check: otp accepted, user exists")
		return Exists
	}
	if !otpMeansAbsent(err) {
		logger.Info().Err(err).Msg("signup check: otp refused ambiguously")
		return MaybeExists
	}

	_, err = p.SignInWithPassword(ctx, email, "checkonly-"+uuid.NewString())
	if err != nil {
		if pe, ok := authprovider.AsError(err); ok {
			switch {
			case pe.Contains("invalid login credentials"):
				logger.Info().Msg("signup check: credentials rejected, user exists")
				return Exists
			case pe.Contains("email not confirmed"):
				logger.Info().Msg("signup check: user exists unconfirmed")
				return ExistsUnconfirmed
			}
		}
		logger.Debug().Err(err).Msg("signup check: password attempt inconclusive")
	}

	return Unknown
}

// otpMeansAbsent reports whether an OTP refusal should let the check continue:
// the provider said the user is unknown, or the failure says nothing about
// the user (rate limiting, transport errors).
func otpMeansAbsent(err error) bool {
	pe, ok := authprovider.AsError(err)
	if !ok {
		// transport failure, context cancellation
		return true
	}
	return pe.Contains(
		"not found",
		"signups not allowed",
		"signup is disabled",
		"rate limit",
		"network",
	)
}

var duplicateMarkers = []string{
	"email already",
	"already registered",
	"duplicate",
	"already exists",
	"already in use",
	"already taken",
	"user already",
	"already signed up",
	"already been registered",
}

// IsDuplicateSignup classifies a provider sign-up error as "email taken".
func IsDuplicateSignup(err error) bool {
	pe, ok := authprovider.AsError(err)
	if !ok {
		return false
	}
	if pe.Contains(duplicateMarkers...) {
		return true
	}
	return pe.Status == 400 && pe.Contains("email")
}

// MaskEmail keeps the first three characters for log correlation.
func MaskEmail(email string) string {
	r := []rune(email)
	if len(r) <= 3 {
		return "***"
	}
	return string(r[:3]) + "..."
}
