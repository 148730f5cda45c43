package stripewebhooks

import (
	"context"

	"saas-template/database"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/subscribers"

	"github.com/stripe/stripe-go/v75"
)

func handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	return applyInvoice(ctx, event, creators.StatusActive, subscribers.StatusActive)
}

func handleInvoiceFailed(ctx context.Context, event stripe.Event) error {
	return applyInvoice(ctx, event, creators.StatusPastDue, subscribers.StatusPastDue)
}

// applyInvoice moves the subscription behind an invoice to the given status.
// Invoices without a subscription (one-time payments) are ignored.
func applyInvoice(ctx context.Context, event stripe.Event, creatorStatus, subscriberStatus string) error {
	var inv stripe.Invoice
	if err := decodeObject(event, &inv); err != nil {
		return err
	}
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		return nil
	}
	subID := inv.Subscription.ID

	if forSubscriber(event.Account, inv.Metadata) {
		subscriber, err := findSubscriber(ctx, event.Account, inv.Metadata["subscriber_id"], subID)
		if err != nil || subscriber == nil {
			return err
		}
		return database.DB.WithContext(ctx).
			Model(&subscribers.Subscriber{}).
			Where("id = ?", subscriber.ID).
			Update("subscription_status", subscriberStatus).Error
	}

	creator, err := findCreator(ctx, inv.Metadata["creator_id"], subID, customerID(inv.Customer))
	if err != nil || creator == nil {
		return err
	}
	return database.DB.WithContext(ctx).
		Model(&creators.Creator{}).
		Where("id = ?", creator.ID).
		Update("subscription_status", creatorStatus).Error
}
