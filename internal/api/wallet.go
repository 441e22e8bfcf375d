package api

import (
	"context"                    // Context for Redis operations
	"mutual_aid/internal/domain" // Importing domain models
	"mutual_aid/internal/ops"    // Operations layer
	"mutual_aid/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"strconv"                    // String conversion
	"time"                       // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateWalletHandler creates a wallet for a user (one wallet per user)
func CreateWalletHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Create the wallet through the operations layer
		wallet, err := ops.CreateWallet(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Invalidate any stale wallet cache
		invalidateUserCaches(c, userID)
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Wallet created", "wallet": wallet})
	}
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := context.Background()                              // Context for Redis operations
		cacheKey := "wallet:user:" + strconv.Itoa(int(userID))   // Cache key for wallet
		var wallet domain.Wallet                                 // Wallet struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallet) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			// Return cached wallet
			c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
			return
		}
		// If not in cache, fetch through the operations layer
		fetched, err := ops.GetWalletByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, fetched, 60*time.Second)  // Cache the wallet for 60 seconds
		c.JSON(http.StatusOK, gin.H{"wallet": fetched, "cached": false}) // Return wallet info
	}
}

// SetLimitRequest represents a wallet limit update
type SetLimitRequest struct {
	Limit decimal.Decimal `json:"limit" binding:"required"` // New upper bound on the balance
}

// SetWalletLimitHandler sets an upper bound on the user's wallet balance
func SetWalletLimitHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SetLimitRequest // Bind JSON request to struct
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
		// Apply the limit through the operations layer
		updated, err := ops.SetWalletLimit(db, wallet.ID, req.Limit)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Invalidate the cached wallet
		invalidateUserCaches(c, userID)
		// Return the updated wallet
		c.JSON(http.StatusOK, gin.H{"message": "Wallet limit set", "wallet": updated})
	}
}

// ClearWalletLimitHandler removes the upper bound from the user's wallet
func ClearWalletLimitHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Resolve the user's wallet
		wallet, err := ops.GetWalletByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Clear the limit through the operations layer
		updated, err := ops.ClearWalletLimit(db, wallet.ID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Invalidate the cached wallet
		invalidateUserCaches(c, userID)
		// Return the updated wallet
		c.JSON(http.StatusOK, gin.H{"message": "Wallet limit cleared", "wallet": updated})
	}
}
