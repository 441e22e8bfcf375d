package api

import (
	"mutual_aid/internal/ops" // Operations layer
	"net/http"                // HTTP status codes

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// ProviderWebhookRequest is the payload the payment provider delivers on
// each successful subscription charge
type ProviderWebhookRequest struct {
	SubscriptionID string          `json:"subscription_id" binding:"required"` // Which subscription was charged
	Amount         decimal.Decimal `json:"amount" binding:"required"`          // Amount that was charged
	PaymentID      string          `json:"payment_id" binding:"required"`      // Provider payment reference
}

// ProviderWebhookHandler applies one provider charge to the matching
// agreement. Delivery is at-least-once with no ordering guarantee, so a
// replayed payment id is acknowledged without effect. An unknown
// subscription is answered with 404 so the provider's own retry policy
// takes over.
func ProviderWebhookHandler(db *gorm.DB, webhookToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Shared-secret check; full signature verification lives at the
		// provider integration layer in front of this service
		if webhookToken != "" && c.GetHeader("X-Webhook-Token") != webhookToken {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook token"})
			return
		}
		var req ProviderWebhookRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
			return
		}
		// Resolve the agreement and apply the matching ledger operation
		txn, err := ops.HandleProviderPayment(db, req.SubscriptionID, req.Amount, req.PaymentID)
		if err != nil {
			// Log the failed delivery with context
			logrus.WithFields(logrus.Fields{
				"subscription_id":     req.SubscriptionID,
				"external_payment_id": req.PaymentID,
				"error":               err.Error(),
			}).Error("Provider webhook failed")
			respondOpsError(c, err)
			return
		}
		// A nil transaction means the charge was already recorded; the
		// replay is acknowledged so the provider stops redelivering
		if txn == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Already processed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment processed", "transaction": txn})
	}
}
