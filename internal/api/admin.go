package api

import (
	"context"                    // Context for Redis operations
	"mutual_aid/internal/domain" // Importing domain models
	"mutual_aid/internal/jobs"   // Background jobs
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

// UserAdminResponse is the per-user row in the admin user listing
type UserAdminResponse struct {
	ID       uint             `json:"id"`       // User ID
	Username string           `json:"username"` // Username
	Role     string           `json:"role"`     // Role: user or admin
	WalletID uint             `json:"wallet_id"` // Wallet ID, 0 when no wallet yet
	Balance  *decimal.Decimal `json:"balance"`   // Wallet balance, nil when no wallet yet
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of users
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of users
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total user count
		// Count all users for pagination
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User // Paginated users with wallet info
		if err := db.Preload("Wallet").Order("id asc").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		// Map users to the admin response shape
		resp := make([]UserAdminResponse, 0, len(users))
		for _, u := range users {
			row := UserAdminResponse{ID: u.ID, Username: u.Username, Role: u.Role}
			// Include wallet info when the user has one
			if u.Wallet.ID != 0 {
				row.WalletID = u.Wallet.ID
				balance := u.Wallet.Balance
				row.Balance = &balance
			}
			resp = append(resp, row)
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		out := gin.H{
			"users":       resp,       // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, out, 60*time.Second)
		c.JSON(http.StatusOK, out) // Return the user listing
	}
}

// ListTransactionsHandler returns the full ledger, paginated, for audit
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:transactions:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total transaction count
		// Count all transactions for pagination
		if err := db.Model(&domain.Transaction{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.Transaction // Paginated ledger entries
		if err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&transactions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		out := gin.H{
			"transactions": transactions, // List of transactions
			"page":         page,         // Current page
			"page_size":    pageSize,     // Page size
			"total":        total,        // Total transactions
			"total_pages":  totalPages,   // Total pages
			"cached":       false,        // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, out, 60*time.Second)
		c.JSON(http.StatusOK, out) // Return the ledger listing
	}
}

// ListOpenTicketsHandler returns the moderation queue
func ListOpenTicketsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fetch through the operations layer
		tickets, err := ops.ListOpenTickets(db)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tickets": tickets}) // Return the queue
	}
}

// ResolveTicketHandler marks a ticket as handled by the calling moderator
func ResolveTicketHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the moderator's userID from context
		moderatorID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the ticket id from the path
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		// Resolve through the operations layer
		ticket, err := ops.ResolveTicket(db, id, moderatorID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Return the resolved ticket
		c.JSON(http.StatusOK, gin.H{"message": "Ticket resolved", "ticket": ticket})
	}
}

// RunMonthlyResetHandler triggers the leaderboard award and counter reset
// out of schedule; the per-month guard still applies
func RunMonthlyResetHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Run with the same lock the scheduled job uses
		if err := jobs.RunMonthlyReset(db, rdb, time.Now()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Monthly reset failed"})
			return
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Monthly reset completed"})
	}
}
