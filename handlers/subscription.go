package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/logger"
	"github.com/jime0083/BatsuGaku/middleware"
)

// CreateCheckoutSession starts a Stripe subscription checkout for the
// authenticated user and returns the hosted payment page URL.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	uid := authedUserID(c)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(h.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(h.CheckoutSuccessURL),
		CancelURL:         stripe.String(h.CheckoutCancelURL),
		ClientReferenceID: stripe.String(uid),
	}

	s, err := session.New(params)
	if err != nil {
		respondError(c, fmt.Errorf("create checkout session: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": s.URL, "session_id": s.ID})
}

// StripeWebhook applies verified billing events to the subscription flag.
// The verifier middleware has already authenticated the event.
func (h *Handler) StripeWebhook(c *gin.Context) {
	v, ok := c.Get(middleware.StripeEventKey)
	if !ok {
		respondError(c, fmt.Errorf("stripe event missing from context"))
		return
	}
	event := v.(stripe.Event)

	ctx := c.Request.Context()

	var err error
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err = json.Unmarshal(event.Data.Raw, &sess); err != nil {
			break
		}
		uid := sess.ClientReferenceID
		if uid == "" {
			logger.Get().Warn("checkout session without client reference id",
				zap.String("event_id", event.ID))
			break
		}
		if sess.Customer != nil {
			if err = h.Store.SetStripeCustomer(ctx, uid, sess.Customer.ID); err != nil {
				break
			}
		}
		err = h.Store.SetSubscription(ctx, uid, true)

	case "invoice.paid":
		var inv stripe.Invoice
		if err = json.Unmarshal(event.Data.Raw, &inv); err != nil {
			break
		}
		if inv.Customer != nil {
			err = h.Store.SetSubscriptionByCustomer(ctx, inv.Customer.ID, true)
		}

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err = json.Unmarshal(event.Data.Raw, &inv); err != nil {
			break
		}
		if inv.Customer != nil {
			err = h.Store.SetSubscriptionByCustomer(ctx, inv.Customer.ID, false)
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err = json.Unmarshal(event.Data.Raw, &sub); err != nil {
			break
		}
		if sub.Customer != nil {
			err = h.Store.SetSubscriptionByCustomer(ctx, sub.Customer.ID, false)
		}

	default:
		logger.Get().Debug("unhandled stripe event",
			zap.String("type", string(event.Type)))
	}

	if err != nil {
		respondError(c, fmt.Errorf("handle stripe event %s: %w", event.Type, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
