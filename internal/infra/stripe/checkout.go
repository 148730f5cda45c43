package stripe

import (
	"fmt"
	"strings"

	"saas-template/internal/domain/billing"

	stripeapi "github.com/stripe/stripe-go/v75"
	portalsession "github.com/stripe/stripe-go/v75/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/customer"
	"github.com/stripe/stripe-go/v75/price"
	"github.com/stripe/stripe-go/v75/subscription"
)

// CheckoutRequest describes a subscription checkout. AccountID, when set,
// runs the session on a connected account instead of the platform.
type CheckoutRequest struct {
	AccountID     string
	CustomerID    string
	CustomerEmail string
	PriceID       string
	Recurring     bool
	TrialDays     int
	SuccessURL    string
	CancelURL     string
	ReferenceID   string
	Metadata      map[string]string
}

func CreateCheckoutSession(req CheckoutRequest) (string, error) {
	if !Ready() {
		return "", ErrNotConfigured
	}

	mode := stripeapi.CheckoutSessionModePayment
	if req.Recurring {
		mode = stripeapi.CheckoutSessionModeSubscription
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(string(mode)),
		SuccessURL: stripeapi.String(req.SuccessURL),
		CancelURL:  stripeapi.String(req.CancelURL),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{Price: stripeapi.String(req.PriceID), Quantity: stripeapi.Int64(1)},
		},
		Metadata: req.Metadata,
	}
	if req.ReferenceID != "" {
		params.ClientReferenceID = stripeapi.String(req.ReferenceID)
	}
	if req.CustomerID != "" {
		params.Customer = stripeapi.String(req.CustomerID)
	} else if req.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(req.CustomerEmail)
	}
	if req.Recurring {
		params.SubscriptionData = &stripeapi.CheckoutSessionSubscriptionDataParams{
			Metadata: req.Metadata,
		}
		if req.TrialDays > 0 {
			params.SubscriptionData.TrialPeriodDays = stripeapi.Int64(int64(req.TrialDays))
		}
	}
	if req.AccountID != "" {
		params.SetStripeAccount(req.AccountID)
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.URL, nil
}

// EnsureCustomer creates a platform customer when existingID is empty.
func EnsureCustomer(existingID, email string, metadata map[string]string) (string, error) {
	if existingID != "" {
		return existingID, nil
	}
	if !Ready() {
		return "", ErrNotConfigured
	}
	cus, err := customer.New(&stripeapi.CustomerParams{
		Email:    stripeapi.String(email),
		Metadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cus.ID, nil
}

func CreatePortalSession(customerID, returnURL string) (string, error) {
	if !Ready() {
		return "", ErrNotConfigured
	}
	p, err := portalsession.New(&stripeapi.BillingPortalSessionParams{
		Customer:  stripeapi.String(customerID),
		ReturnURL: stripeapi.String(returnURL),
	})
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return p.URL, nil
}

// CancelAtPeriodEnd schedules a platform subscription to end with the
// current billing period.
func CancelAtPeriodEnd(subscriptionID string) (*stripeapi.Subscription, error) {
	if !Ready() {
		return nil, ErrNotConfigured
	}
	sub, err := subscription.Update(subscriptionID, &stripeapi.SubscriptionParams{
		CancelAtPeriodEnd: stripeapi.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("cancel subscription %s: %w", subscriptionID, err)
	}
	return sub, nil
}

// PlatformPlan is the display form of the platform's subscription price.
type PlatformPlan struct {
	PriceID     string  `json:"price_id"`
	ProductName string  `json:"product_name"`
	Currency    string  `json:"currency"`
	UnitAmount  int64   `json:"unit_amount"` // cents
	Amount      float64 `json:"amount"`
	Display     string  `json:"display"`
	Interval    string  `json:"interval"`
}

func GetPlatformPlan(priceID string) (*PlatformPlan, error) {
	if !Ready() {
		return nil, ErrNotConfigured
	}
	params := &stripeapi.PriceParams{}
	params.AddExpand("product")
	p, err := price.Get(priceID, params)
	if err != nil {
		return nil, fmt.Errorf("get price %s: %w", priceID, err)
	}

	plan := &PlatformPlan{
		PriceID:    p.ID,
		Currency:   strings.ToUpper(string(p.Currency)),
		UnitAmount: p.UnitAmount,
		Amount:     billing.FromStripeAmount(p.UnitAmount, string(p.Currency)),
		Display:    billing.FormatAmount(p.UnitAmount, string(p.Currency)),
	}
	if p.Product != nil {
		plan.ProductName = p.Product.Name
	}
	if p.Recurring != nil {
		plan.Interval = string(p.Recurring.Interval)
	}
	return plan, nil
}
