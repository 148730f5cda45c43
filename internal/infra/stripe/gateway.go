package stripe

import (
	"saas-template/internal/domain/products"

	stripeapi "github.com/stripe/stripe-go/v75"
)

// Gateway binds the package functions to the configured platform account so
// handlers can depend on narrow interfaces instead of package globals.
type Gateway struct {
	ClientID string
}

func (Gateway) Ready() bool { return Ready() }

func (Gateway) CreateTierPrice(accountID string, p *products.Product, tier *products.PricingTier) (string, string, error) {
	return CreateTierPrice(accountID, p, tier)
}

func (Gateway) ArchivePrice(accountID, priceID string) error {
	return ArchivePrice(accountID, priceID)
}

func (Gateway) CreateCheckoutSession(req CheckoutRequest) (string, error) {
	return CreateCheckoutSession(req)
}

func (Gateway) EnsureCustomer(existingID, email string, metadata map[string]string) (string, error) {
	return EnsureCustomer(existingID, email, metadata)
}

func (Gateway) CreatePortalSession(customerID, returnURL string) (string, error) {
	return CreatePortalSession(customerID, returnURL)
}

func (Gateway) CancelAtPeriodEnd(subscriptionID string) (*stripeapi.Subscription, error) {
	return CancelAtPeriodEnd(subscriptionID)
}

func (g Gateway) ConnectAuthorizeURL(redirectURI, state string) string {
	return ConnectAuthorizeURL(g.ClientID, redirectURI, state)
}

func (Gateway) ExchangeConnectCode(code string) (*ConnectCredentials, error) {
	return ExchangeConnectCode(code)
}

func (g Gateway) Deauthorize(accountID string) error {
	return Deauthorize(g.ClientID, accountID)
}

func (Gateway) GetPlatformPlan(priceID string) (*PlatformPlan, error) {
	return GetPlatformPlan(priceID)
}
