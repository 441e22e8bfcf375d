package api

import (
	"context"                   // Context for Redis operations
	"mutual_aid/internal/utils" // Cache helpers
	"strconv"                   // String conversion

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// invalidateUserCaches drops the wallet and transaction-history cache
// entries for the given users after a balance-affecting write. Paginated
// history keys are cleared for the first few pages only; deeper pages
// simply age out on their TTL.
func invalidateUserCaches(c *gin.Context, userIDs ...uint) {
	rdb, ok := c.MustGet("redisClient").(*redis.Client)
	if !ok {
		return
	}
	ctx := context.Background() // Context for Redis operations
	for _, userID := range userIDs {
		id := strconv.Itoa(int(userID))
		_ = utils.DeleteCache(ctx, rdb, "wallet:user:"+id) // Invalidate wallet cache
		// Invalidate the first 5 pages of transaction history
		for i := 1; i <= 5; i++ {
			_ = utils.DeleteCache(ctx, rdb, "txhistory:user:"+id+":page:"+strconv.Itoa(i)+":size:20")
		}
	}
}
