package api

import (
	"mutual_aid/internal/notify" // In-app notifications
	"mutual_aid/internal/ops"    // Operations layer
	"net/http"                   // HTTP status codes
	"strconv"                    // String conversion
	"time"                       // Next payment dates

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateAgreementRequest represents a new recurring top-up or donation
type CreateAgreementRequest struct {
	SubscriptionID  string          `json:"subscription_id" binding:"required"`   // Subscription id from the provider
	PlanID          string          `json:"plan_id" binding:"required"`           // Billing plan id from the provider
	Amount          decimal.Decimal `json:"amount" binding:"required"`            // Amount charged per period
	Type            string          `json:"type" binding:"required"`              // TOP_UP or DONATE
	NextPaymentDate time.Time       `json:"next_payment_date" binding:"required"` // First upcoming charge
}

// CreateAgreementHandler stores a standing instruction after the user set
// up a subscription at the payment provider
func CreateAgreementHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateAgreementRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Resolve the user's wallet
		wallet, err := ops.GetWalletByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Persist the agreement through the operations layer
		agreement, err := ops.CreateAgreement(db, wallet.ID, req.SubscriptionID, req.PlanID, req.Amount, req.Type, req.NextPaymentDate)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Return the created agreement
		c.JSON(http.StatusCreated, gin.H{"message": "Agreement created", "agreement": agreement})
	}
}

// ListAgreementsHandler returns the authenticated user's standing instructions
func ListAgreementsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Fetch through the operations layer
		agreements, err := ops.ListAgreementsByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"agreements": agreements}) // Return the list
	}
}

// UpdateAgreementRequest represents a partial agreement update; omitted
// fields stay unchanged
type UpdateAgreementRequest struct {
	Amount          *decimal.Decimal `json:"amount"`            // New per-period amount
	PlanID          *string          `json:"plan_id"`           // New provider plan id
	NextPaymentDate *time.Time       `json:"next_payment_date"` // Advanced charge date
}

// agreementOwnedBy checks that an agreement is funded by the user's wallet
func agreementOwnedBy(db *gorm.DB, agreementID, userID uint) (bool, error) {
	agreement, err := ops.GetAgreementByID(db, agreementID)
	if err != nil {
		return false, err
	}
	wallet, err := ops.GetWalletByID(db, agreement.WalletID)
	if err != nil {
		return false, err
	}
	return wallet.UserID == userID, nil
}

// UpdateAgreementHandler applies a partial update to the user's agreement
func UpdateAgreementHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the agreement id from the path
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agreement id"})
			return
		}
		var req UpdateAgreementRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Only the owner may update their agreement
		owned, err := agreementOwnedBy(db, uint(id), userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		if !owned {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your agreement"})
			return
		}
		// Apply the patch through the operations layer
		agreement, err := ops.UpdateAgreement(db, uint(id), ops.AgreementPatch{
			Amount:          req.Amount,
			ExternalPlanID:  req.PlanID,
			NextPaymentDate: req.NextPaymentDate,
		})
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Return the updated agreement
		c.JSON(http.StatusOK, gin.H{"message": "Agreement updated", "agreement": agreement})
	}
}

// CancelAgreementHandler deletes the user's standing instruction and
// notifies them about the cancellation
func CancelAgreementHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the agreement id from the path
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid agreement id"})
			return
		}
		// Only the owner may cancel their agreement
		owned, err := agreementOwnedBy(db, uint(id), userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		if !owned {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your agreement"})
			return
		}
		// Delete through the operations layer; it returns the owner for
		// the cancellation notice
		owner, err := ops.CancelAgreement(db, uint(id))
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Fire-and-forget cancellation notice
		if err := notify.Send(db, owner.ID, "Recurring payment cancelled",
			"Your recurring payment agreement was cancelled."); err != nil {
			logrus.WithField("user_id", owner.ID).Warn("Could not notify user about cancellation")
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Agreement cancelled"})
	}
}
