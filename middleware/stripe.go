package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/jime0083/BatsuGaku/logger"
)

// StripeEventKey is where the verified event lands on the context.
const StripeEventKey = "stripe_event"

// StripeWebhookVerifier authenticates inbound Stripe events before the
// subscription handler sees them.
func StripeWebhookVerifier(webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Get().Error("failed to read stripe webhook body", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		event, err := webhook.ConstructEvent(b, c.Request.Header.Get("Stripe-Signature"), webhookSecret)
		if err != nil {
			logger.Get().Warn("stripe webhook signature verification failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set(StripeEventKey, event)
		c.Next()
	}
}
