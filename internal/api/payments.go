package api

import (
	"mutual_aid/internal/domain" // Importing domain models
	"mutual_aid/internal/notify" // In-app notifications
	"mutual_aid/internal/ops"    // Operations layer
	"net/http"                   // HTTP status codes

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// TransferRequest represents a peer payment request
type TransferRequest struct {
	ToUsername  string          `json:"to_username" binding:"required"` // Target username
	Amount      decimal.Decimal `json:"amount" binding:"required"`      // Transfer amount
	Description string          `json:"description"`                    // Optional context shown in history
}

// TransferHandler allows a user to pay another user from their wallet
func TransferHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		fromUserID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req TransferRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var toUser domain.User // Find target user
		// Query user by username
		if err := db.Where("username = ?", req.ToUsername).First(&toUser).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
			return
		}
		// Prevent transferring to self
		if toUser.ID == fromUserID {
			// If trying to transfer to self, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot transfer to yourself"})
			return
		}
		// Resolve both wallets
		fromWallet, err := ops.GetWalletByUserID(db, fromUserID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		toWallet, err := ops.GetWalletByUserID(db, toUser.ID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Debit, credit and ledger entry as one atomic unit
		txn, err := ops.RecordPeerPayment(db, fromWallet.ID, toWallet.ID, req.Amount, req.Description)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Tell the recipient money arrived; never unwinds the payment
		if err := notify.Send(db, toUser.ID, "Payment received",
			"You received "+req.Amount.String()+" from a neighbour."); err != nil {
			logrus.WithField("user_id", toUser.ID).Warn("Could not notify payment recipient")
		}
		// Invalidate wallet and transaction history cache for both users
		invalidateUserCaches(c, fromUserID, toUser.ID)
		// Return the ledger entry
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful", "transaction": txn})
	}
}

// AmountRequest represents a single-amount payment request
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"` // Payment amount
}

// WithdrawHandler debits the user's wallet and records a WITHDRAW entry
func WithdrawHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req AmountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		// Resolve the user's wallet
		wallet, err := ops.GetWalletByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Debit and ledger entry as one atomic unit
		txn, err := ops.RecordWithdrawal(db, wallet.ID, req.Amount)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Invalidate wallet and transaction history cache
		invalidateUserCaches(c, userID)
		// Return the ledger entry
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal successful", "transaction": txn})
	}
}

// DonateHandler donates from the user's wallet to the community fund
func DonateHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req AmountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		// Resolve the user's wallet
		wallet, err := ops.GetWalletByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// A direct donation is funded from the wallet balance
		txn, err := ops.RecordDonation(db, wallet.ID, req.Amount, false, nil)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Invalidate wallet and transaction history cache
		invalidateUserCaches(c, userID)
		// Return the ledger entry
		c.JSON(http.StatusOK, gin.H{"message": "Donation successful", "transaction": txn})
	}
}

// TopUpRequest represents a wallet top-up settled by the payment provider
type TopUpRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`     // Amount charged at the provider
	PaymentID string          `json:"payment_id" binding:"required"` // Provider payment reference
}

// TopUpHandler credits the user's wallet with a charge already settled by
// the external payment provider
func TopUpHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req TopUpRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Resolve the user's wallet
		wallet, err := ops.GetWalletByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Credit and ledger entry as one atomic unit, guarded against
		// replaying the same provider payment
		txn, err := ops.RecordTopUp(db, wallet.ID, req.Amount, req.PaymentID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Invalidate wallet and transaction history cache
		invalidateUserCaches(c, userID)
		// Return the ledger entry
		c.JSON(http.StatusOK, gin.H{"message": "Top-up successful", "transaction": txn})
	}
}
