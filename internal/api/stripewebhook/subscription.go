package stripewebhooks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saas-template/database"
	"saas-template/internal/domain/creators"
	"saas-template/internal/domain/products"
	"saas-template/internal/domain/subscribers"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

func handleSubscriptionChanged(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := decodeObject(event, &sub); err != nil {
		return err
	}
	return applySubscription(ctx, event.Account, &sub, string(sub.Status))
}

func handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := decodeObject(event, &sub); err != nil {
		return err
	}
	return applySubscription(ctx, event.Account, &sub, string(stripe.SubscriptionStatusCanceled))
}

// forSubscriber reports whether an object belongs to a subscriber of a
// creator's product rather than to a creator's platform subscription.
func forSubscriber(account string, metadata map[string]string) bool {
	return account != "" || metadata["subscriber_id"] != ""
}

func applySubscription(ctx context.Context, account string, sub *stripe.Subscription, stripeStatus string) error {
	if sub.ID == "" {
		return fmt.Errorf("%w: subscription without id", errMalformed)
	}

	if forSubscriber(account, sub.Metadata) {
		return updateSubscriberSubscription(ctx, account, sub, stripeStatus)
	}
	return updateCreatorSubscription(ctx, sub, stripeStatus)
}

func updateCreatorSubscription(ctx context.Context, sub *stripe.Subscription, stripeStatus string) error {
	creator, err := findCreator(ctx, sub.Metadata["creator_id"], sub.ID, customerID(sub.Customer))
	if err != nil || creator == nil {
		return err
	}

	updates := map[string]interface{}{
		"subscription_status":    creators.StatusFromStripe(stripeStatus),
		"stripe_subscription_id": sub.ID,
	}
	if id := customerID(sub.Customer); id != "" {
		updates["stripe_customer_id"] = id
	}
	if sub.CurrentPeriodEnd > 0 {
		updates["current_period_end"] = unix(sub.CurrentPeriodEnd)
	}
	if sub.TrialEnd > 0 {
		updates["trial_ends_at"] = unix(sub.TrialEnd)
	}

	return database.DB.WithContext(ctx).
		Model(&creators.Creator{}).
		Where("id = ?", creator.ID).
		Updates(updates).Error
}

func updateSubscriberSubscription(ctx context.Context, account string, sub *stripe.Subscription, stripeStatus string) error {
	subscriber, err := findSubscriber(ctx, account, sub.Metadata["subscriber_id"], sub.ID)
	if err != nil || subscriber == nil {
		return err
	}

	updates := map[string]interface{}{
		"subscription_status":    subscribers.StatusFromStripe(stripeStatus),
		"stripe_subscription_id": sub.ID,
	}
	if id := customerID(sub.Customer); id != "" {
		updates["stripe_customer_id"] = id
	}
	if sub.CurrentPeriodStart > 0 {
		updates["current_period_start"] = unix(sub.CurrentPeriodStart)
	}
	if sub.CurrentPeriodEnd > 0 {
		updates["current_period_end"] = unix(sub.CurrentPeriodEnd)
	}
	if sub.TrialEnd > 0 {
		updates["trial_ends_at"] = unix(sub.TrialEnd)
	}

	return database.DB.WithContext(ctx).
		Model(&subscribers.Subscriber{}).
		Where("id = ?", subscriber.ID).
		Updates(updates).Error
}

// findCreator resolves the platform customer behind an event. A creator that
// no longer exists is acknowledged, not retried.
func findCreator(ctx context.Context, creatorID, subscriptionID, customer string) (*creators.Creator, error) {
	q := database.DB.WithContext(ctx)
	switch {
	case creatorID != "":
		q = q.Where("id = ?", creatorID)
	case subscriptionID != "":
		q = q.Where("stripe_subscription_id = ?", subscriptionID)
	case customer != "":
		q = q.Where("stripe_customer_id = ?", customer)
	default:
		log.Warn().Msg("stripe event carries no creator reference")
		return nil, nil
	}

	var creator creators.Creator
	err := q.First(&creator).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("creator_id", creatorID).Str("subscription_id", subscriptionID).Msg("stripe event for unknown creator")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load creator: %w", err)
	}
	return &creator, nil
}

// findSubscriber resolves the subscriber behind an event. Events sent on
// behalf of a connected account only match subscribers of that account's
// creator; metadata on a connected account is under the creator's control.
func findSubscriber(ctx context.Context, account, subscriberID, subscriptionID string) (*subscribers.Subscriber, error) {
	q := database.DB.WithContext(ctx)
	switch {
	case subscriberID != "":
		q = q.Where("id = ?", subscriberID)
	case subscriptionID != "":
		q = q.Where("stripe_subscription_id = ?", subscriptionID)
	default:
		log.Warn().Msg("stripe event carries no subscriber reference")
		return nil, nil
	}
	if account != "" {
		q = q.Where("product_id IN (?)", accountProducts(account))
	}

	var subscriber subscribers.Subscriber
	err := q.First(&subscriber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("account", account).Str("subscriber_id", subscriberID).Str("subscription_id", subscriptionID).Msg("stripe event for unknown subscriber")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load subscriber: %w", err)
	}
	return &subscriber, nil
}

// accountProducts is the subquery of product ids owned by the creator
// connected as account.
func accountProducts(account string) *gorm.DB {
	return database.DB.Model(&products.Product{}).
		Select("products.id").
		Joins("JOIN creators ON creators.id = products.creator_id").
		Where("creators.stripe_account_id = ?", account)
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
