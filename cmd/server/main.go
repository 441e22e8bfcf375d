package main

import (
	"context"                       // context package is needed for Redis operations
	"log"                           // log package is needed for logging
	"mutual_aid/internal/api"        // Custom package for API handlers
	"mutual_aid/internal/config"     // Custom package for configuration
	"mutual_aid/internal/jobs"       // Custom package for background jobs
	"mutual_aid/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Start the monthly badge reset runner
	stopReset := jobs.StartMonthlyReset(db, redisClient)
	defer stopReset()

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.RegisterHandler(db))            // Registration endpoint
	r.GET("/user", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Provider webhook (authenticated by shared secret, not JWT)
	r.POST("/webhooks/provider", api.ProviderWebhookHandler(db, cfg.WebhookToken))

	// injectRedis makes the Redis client available to cache invalidation
	injectRedis := func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	}

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet")
	walletGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), injectRedis)
	walletGroup.POST("", api.CreateWalletHandler(db))                                   // Create wallet endpoint
	walletGroup.GET("", api.GetWalletHandler(db, redisClient))                          // Get wallet endpoint
	walletGroup.PUT("/limit", api.SetWalletLimitHandler(db))                            // Set wallet limit endpoint
	walletGroup.DELETE("/limit", api.ClearWalletLimitHandler(db))                       // Clear wallet limit endpoint
	walletGroup.POST("/transfer", api.TransferHandler(db))                              // Peer payment endpoint
	walletGroup.POST("/withdraw", api.WithdrawHandler(db))                              // Withdrawal endpoint
	walletGroup.POST("/donate", api.DonateHandler(db))                                  // Donation endpoint
	walletGroup.POST("/topup", api.TopUpHandler(db))                                    // Top-up endpoint
	walletGroup.GET("/transactions", api.GetTransactionHistoryHandler(db, redisClient)) // Transaction history endpoint
	walletGroup.GET("/transactions/:id", api.GetTransactionHandler(db))                 // Single transaction endpoint

	// Recurring agreement routes (protected by JWT)
	agreementGroup := r.Group("/agreements")
	agreementGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	agreementGroup.POST("", api.CreateAgreementHandler(db))       // Create agreement endpoint
	agreementGroup.GET("", api.ListAgreementsHandler(db))         // List agreements endpoint
	agreementGroup.PATCH("/:id", api.UpdateAgreementHandler(db))  // Update agreement endpoint
	agreementGroup.DELETE("/:id", api.CancelAgreementHandler(db)) // Cancel agreement endpoint

	// Announcement and errand routes (protected by JWT)
	announcementGroup := r.Group("/announcements")
	announcementGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), injectRedis)
	announcementGroup.POST("", api.CreateAnnouncementHandler(db))           // Post announcement endpoint
	announcementGroup.GET("", api.ListAnnouncementsHandler(db))             // List open announcements endpoint
	announcementGroup.PUT("/:id/close", api.CloseAnnouncementHandler(db))   // Close announcement endpoint
	announcementGroup.POST("/:id/offer", api.OfferHelpHandler(db))          // Offer help endpoint
	announcementGroup.PUT("/requests/:id/accept", api.AcceptRequestHandler(db))     // Accept offer endpoint
	announcementGroup.PUT("/requests/:id/complete", api.CompleteRequestHandler(db)) // Complete errand endpoint

	// Badge and leaderboard routes (protected by JWT)
	badgeGroup := r.Group("/badges")
	badgeGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	badgeGroup.GET("", api.ListBadgesHandler(db))                          // Own badges endpoint
	badgeGroup.GET("/leaderboard", api.LeaderboardHandler(db, redisClient)) // Leaderboard endpoint

	// Support ticket routes (protected by JWT)
	ticketGroup := r.Group("/tickets")
	ticketGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	ticketGroup.POST("", api.CreateTicketHandler(db))   // Create ticket endpoint
	ticketGroup.GET("", api.ListMyTicketsHandler(db))   // Own tickets endpoint

	// Notification routes (protected by JWT)
	notificationGroup := r.Group("/notifications")
	notificationGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	notificationGroup.GET("", api.ListNotificationsHandler(db))              // List notifications endpoint
	notificationGroup.PUT("/:id/read", api.MarkNotificationReadHandler(db)) // Mark read endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))               // List users endpoint
	adminGroup.GET("/transactions", api.ListTransactionsHandler(db, redisClient)) // List transactions endpoint
	adminGroup.GET("/tickets", api.ListOpenTicketsHandler(db))                    // Moderation queue endpoint
	adminGroup.PUT("/tickets/:id/resolve", api.ResolveTicketHandler(db))          // Resolve ticket endpoint
	adminGroup.POST("/badges/reset", api.RunMonthlyResetHandler(db, redisClient)) // Manual monthly reset endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
