package api

import (
	"context"                    // Context for Redis operations
	"mutual_aid/internal/domain" // Importing domain models
	"mutual_aid/internal/ops"    // Operations layer
	"mutual_aid/internal/utils"  // Utility functions
	"net/http"                   // HTTP status codes
	"strconv"                    // String conversion
	"time"                       // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// GetTransactionHistoryHandler returns all transactions for the authenticated user's wallet
func GetTransactionHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
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
		page := 1      // Default page
		pageSize := 20 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		offset := (page - 1) * pageSize // Calculate offset
		// Redis cache key
		cacheKey := "txhistory:user:" + strconv.Itoa(int(userID)) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,
			})
			return
		}
		var total int64 // Total count of transactions
		// Count total transactions for pagination
		if err := db.Model(&domain.Transaction{}).
			Where("sender_wallet_id = ? OR recipient_wallet_id = ?", wallet.ID, wallet.ID).
			Count(&total).Error; err != nil {
			// If counting fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.Transaction // Slice to hold transactions
		// Fetch paginated transactions
		if err := db.Where("sender_wallet_id = ? OR recipient_wallet_id = ?", wallet.ID, wallet.ID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&transactions).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"transactions": transactions, // List of transactions
			"page":         page,         // Current page
			"page_size":    pageSize,     // Page size
			"total":        total,        // Total transactions
			"total_pages":  totalPages,   // Total pages
			"cached":       false,        // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return transaction history
	}
}

// GetTransactionHandler returns a single ledger entry; only a participant
// may read it
func GetTransactionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the transaction id from the path
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transaction id"})
			return
		}
		// Point lookup through the operations layer
		txn, err := ops.GetTransactionByID(db, uint(id))
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Resolve the caller's wallet to check participation
		wallet, err := ops.GetWalletByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// The caller must be sender or recipient
		isSender := txn.SenderWalletID != nil && *txn.SenderWalletID == wallet.ID
		isRecipient := txn.RecipientWalletID != nil && *txn.RecipientWalletID == wallet.ID
		if !isSender && !isRecipient {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant in this transaction"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction": txn}) // Return the transaction
	}
}
