// Package stripe holds the Stripe calls shared by the billing handlers:
// Connect OAuth, catalog sync for pricing tiers and checkout sessions.
package stripe

import (
	"errors"

	stripeapi "github.com/stripe/stripe-go/v75"
)

var ErrNotConfigured = errors.New("stripe secret key not configured")

// Configure sets the process-wide Stripe credentials.
func Configure(secretKey, clientID string) {
	stripeapi.Key = secretKey
	stripeapi.ClientID = clientID
}

// Ready reports whether a secret key has been configured.
func Ready() bool {
	return stripeapi.Key != ""
}
