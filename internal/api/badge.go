package api

import (
	"context"                   // Context for Redis operations
	"mutual_aid/internal/ops"   // Operations layer
	"mutual_aid/internal/utils" // Utility functions
	"net/http"                  // HTTP status codes
	"time"                      // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// ListBadgesHandler returns the authenticated user's badge counters
func ListBadgesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Fetch through the operations layer
		badges, err := ops.ListBadgesByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"badges": badges}) // Return the list
	}
}

// LeaderboardHandler returns the helper ranking for a period
// (?period=MONTHLY|TOTAL, default MONTHLY), cached briefly since every
// user sees the same board
func LeaderboardHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		period := c.DefaultQuery("period", ops.PeriodMonthly) // Requested period
		ctx := context.Background()                           // Context for Redis operations
		cacheKey := "leaderboard:" + period                   // Cache key for this period
		var cached []ops.LeaderboardEntry                     // Cached entries
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"leaderboard": cached, "period": period, "cached": true})
			return
		}
		// Rank through the operations layer
		entries, err := ops.GetLeaderboard(db, period)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Cache the board for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, entries, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "period": period, "cached": false})
	}
}
