package stripewebhooks

import (
	"context"

	"saas-template/database"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/subscribers"

	"github.com/stripe/stripe-go/v75"
)

// handleCheckoutSessionCompleted links the Stripe customer and subscription
// created by Checkout to the local row named in the session metadata. Status
// for subscription-mode sessions is left to the subscription events.
func handleCheckoutSessionCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := decodeObject(event, &session); err != nil {
		return err
	}

	subID := ""
	if session.Subscription != nil {
		subID = session.Subscription.ID
	}
	customer := customerID(session.Customer)

	if forSubscriber(event.Account, session.Metadata) {
		subscriber, err := findSubscriber(ctx, event.Account, session.Metadata["subscriber_id"], subID)
		if err != nil || subscriber == nil {
			return err
		}

		updates := map[string]interface{}{}
		if customer != "" {
			updates["stripe_customer_id"] = customer
		}
		if subID != "" {
			updates["stripe_subscription_id"] = subID
		} else if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			// one-time purchase
			updates["subscription_status"] = subscribers.StatusActive
		}
		if len(updates) == 0 {
			return nil
		}
		return database.DB.WithContext(ctx).
			Model(&subscribers.Subscriber{}).
			Where("id = ?", subscriber.ID).
			Updates(updates).Error
	}

	creatorID := session.Metadata["creator_id"]
	if creatorID == "" {
		creatorID = session.ClientReferenceID
	}
	creator, err := findCreator(ctx, creatorID, subID, customer)
	if err != nil || creator == nil {
		return err
	}

	updates := map[string]interface{}{}
	if customer != "" {
		updates["stripe_customer_id"] = customer
	}
	if subID != "" {
		updates["stripe_subscription_id"] = subID
	}
	if len(updates) == 0 {
		return nil
	}
	return database.DB.WithContext(ctx).
		Model(&creators.Creator{}).
		Where("id = ?", creator.ID).
		Updates(updates).Error
}
