package stripewebhooks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"saas-template/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

const maxBodyBytes = 65536

var errNoSecret = errors.New("no webhook secret configured")

// Handler receives Stripe events for the platform account and, through the
// Connect endpoint, for creators' connected accounts.
type Handler struct {
	secrets []string
}

// NewHandler takes the platform endpoint secret and the Connect endpoint
// secret. Either may be empty; signatures are tried in that order.
func NewHandler(platformSecret, connectSecret string) *Handler {
	h := &Handler{}
	for _, s := range []string{platformSecret, connectSecret} {
		if s != "" {
			h.secrets = append(h.secrets, s)
		}
	}
	return h
}

type eventHandler func(ctx context.Context, event stripe.Event) error

func (h *Handler) handlers() map[string]eventHandler {
	return map[string]eventHandler{
		"customer.subscription.created": handleSubscriptionChanged,
		"customer.subscription.updated": handleSubscriptionChanged,
		"customer.subscription.deleted": handleSubscriptionDeleted,
		"invoice.payment_succeeded":     handleInvoicePaid,
		"invoice.payment_failed":        handleInvoiceFailed,
		"checkout.session.completed":    handleCheckoutSessionCompleted,
	}
}

// POST /api/stripe/webhook
func (h *Handler) Webhook(c *gin.Context) {
	sig := c.GetHeader("Stripe-Signature")
	if sig == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing Stripe signature"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := h.verify(payload, sig)
	if errors.Is(err, errNoSecret) {
		log.Error().Msg("stripe webhook received but no endpoint secret is configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret not configured"})
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("stripe signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	eventType := string(event.Type)
	logger := log.With().Str("event_id", event.ID).Str("type", eventType).Str("account", event.Account).Logger()

	handle, ok := h.handlers()[eventType]
	if !ok {
		// acknowledge so Stripe stops retrying
		metrics.StripeWebhookEvents.WithLabelValues(eventType, "ignored").Inc()
		logger.Debug().Msg("unhandled stripe event")
		c.JSON(http.StatusOK, gin.H{"received": true, "status": "ignored"})
		return
	}

	if err := handle(c.Request.Context(), event); err != nil {
		metrics.StripeWebhookEvents.WithLabelValues(eventType, "failed").Inc()
		logger.Error().Err(err).Msg("stripe event handling failed")
		if errors.Is(err, errMalformed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	metrics.StripeWebhookEvents.WithLabelValues(eventType, "handled").Inc()
	logger.Info().Msg("stripe event handled")
	c.JSON(http.StatusOK, gin.H{"received": true, "status": "handled"})
}

func (h *Handler) verify(payload []byte, sig string) (stripe.Event, error) {
	if len(h.secrets) == 0 {
		return stripe.Event{}, errNoSecret
	}
	var lastErr error
	for _, secret := range h.secrets {
		event, err := webhook.ConstructEventWithOptions(payload, sig, secret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err == nil {
			return event, nil
		}
		lastErr = err
	}
	return stripe.Event{}, lastErr
}

var errMalformed = errors.New("malformed event payload")

func decodeObject(event stripe.Event, into any) error {
	if err := json.Unmarshal(event.Data.Raw, into); err != nil {
		return errors.Join(errMalformed, err)
	}
	return nil
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
