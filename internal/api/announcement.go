package api

import (
	"mutual_aid/internal/ops" // Operations layer
	"net/http"                // HTTP status codes
	"strconv"                 // String conversion

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateAnnouncementRequest represents a new errand posting
type CreateAnnouncementRequest struct {
	Title       string `json:"title" binding:"required"` // Short summary of the errand
	Description string `json:"description"`              // Full details
}

// CreateAnnouncementHandler posts a new errand request
func CreateAnnouncementHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateAnnouncementRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Create through the operations layer
		announcement, err := ops.CreateAnnouncement(db, userID, req.Title, req.Description)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Return the created announcement
		c.JSON(http.StatusCreated, gin.H{"message": "Announcement created", "announcement": announcement})
	}
}

// ListAnnouncementsHandler returns all announcements still looking for a helper
func ListAnnouncementsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fetch through the operations layer
		announcements, err := ops.ListOpenAnnouncements(db)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"announcements": announcements}) // Return the list
	}
}

// pathID parses a positive integer id from a path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// CloseAnnouncementHandler withdraws the caller's own announcement
func CloseAnnouncementHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the announcement id from the path
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		// Close through the operations layer
		announcement, err := ops.CloseAnnouncement(db, id, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Return the closed announcement
		c.JSON(http.StatusOK, gin.H{"message": "Announcement closed", "announcement": announcement})
	}
}

// OfferHelpHandler registers the caller as a helper for an announcement
func OfferHelpHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the announcement id from the path
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		// Create the offer through the operations layer
		request, err := ops.CreateHelpRequest(db, id, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Return the created request
		c.JSON(http.StatusCreated, gin.H{"message": "Offer registered", "request": request})
	}
}

// AcceptRequestHandler lets the poster pick a pending helper
func AcceptRequestHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the request id from the path
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		// Accept through the operations layer
		request, err := ops.AcceptRequest(db, id, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Return the accepted request
		c.JSON(http.StatusOK, gin.H{"message": "Offer accepted", "request": request})
	}
}

// CompleteRequestRequest represents an errand completion, optionally with
// a tip for the helper
type CompleteRequestRequest struct {
	Tip *decimal.Decimal `json:"tip"` // Optional thank-you payment
}

// CompleteRequestHandler marks an accepted errand as done; the helper is
// rewarded with a badge and, optionally, a tip from the poster's wallet
func CompleteRequestHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the request id from the path
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req CompleteRequestRequest // Bind JSON request to struct
		// An empty body means no tip
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Complete through the operations layer
		request, err := ops.CompleteRequest(db, id, userID, req.Tip)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// A tip moved money; drop stale caches for the poster
		if req.Tip != nil {
			invalidateUserCaches(c, userID, request.HelperID)
		}
		// Return the completed request
		c.JSON(http.StatusOK, gin.H{"message": "Errand completed", "request": request})
	}
}
