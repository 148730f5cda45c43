package stripe

import (
	"fmt"
	"strings"

	"saas-template/internal/domain/products"

	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/price"
	"github.com/stripe/stripe-go/v75/product"
)

// CreateTierPrice mirrors a pricing tier into the creator's connected account
// as a Stripe product plus price. It returns (productID, priceID).
func CreateTierPrice(accountID string, p *products.Product, tier *products.PricingTier) (string, string, error) {
	if !Ready() {
		return "", "", ErrNotConfigured
	}

	prodParams := &stripeapi.ProductParams{
		Name: stripeapi.String(p.Name + " - " + tier.Name),
	}
	if tier.Description != nil && *tier.Description != "" {
		prodParams.Description = stripeapi.String(*tier.Description)
	}
	prodParams.AddMetadata("product_id", p.ID)
	prodParams.AddMetadata("pricing_tier_id", tier.ID)
	prodParams.SetStripeAccount(accountID)

	sp, err := product.New(prodParams)
	if err != nil {
		return "", "", fmt.Errorf("create stripe product: %w", err)
	}

	priceParams := &stripeapi.PriceParams{
		Product:    stripeapi.String(sp.ID),
		Currency:   stripeapi.String(strings.ToLower(tier.PriceCurrency)),
		UnitAmount: stripeapi.Int64(tier.PriceAmount),
	}
	if interval := tier.StripeInterval(); interval != "" {
		priceParams.Recurring = &stripeapi.PriceRecurringParams{
			Interval: stripeapi.String(interval),
		}
	}
	priceParams.AddMetadata("pricing_tier_id", tier.ID)
	priceParams.SetStripeAccount(accountID)

	pr, err := price.New(priceParams)
	if err != nil {
		return sp.ID, "", fmt.Errorf("create stripe price: %w", err)
	}
	return sp.ID, pr.ID, nil
}

// ArchivePrice deactivates a price; Stripe prices cannot be deleted.
func ArchivePrice(accountID, priceID string) error {
	if !Ready() {
		return ErrNotConfigured
	}
	params := &stripeapi.PriceParams{Active: stripeapi.Bool(false)}
	params.SetStripeAccount(accountID)
	if _, err := price.Update(priceID, params); err != nil {
		return fmt.Errorf("archive stripe price %s: %w", priceID, err)
	}
	return nil
}
