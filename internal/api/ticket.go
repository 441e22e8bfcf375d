package api

import (
	"mutual_aid/internal/ops" // Operations layer
	"net/http"                // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// CreateTicketRequest represents a new complaint or support request
type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required"` // Short summary
	Body    string `json:"body" binding:"required"`    // Full complaint text
}

// CreateTicketHandler files a support ticket for the authenticated user
func CreateTicketHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req CreateTicketRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Create through the operations layer
		ticket, err := ops.CreateTicket(db, userID, req.Subject, req.Body)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		// Return the created ticket
		c.JSON(http.StatusCreated, gin.H{"message": "Ticket created", "ticket": ticket})
	}
}

// ListMyTicketsHandler returns the authenticated user's tickets
func ListMyTicketsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Fetch through the operations layer
		tickets, err := ops.ListTicketsByUserID(db, userID)
		if err != nil {
			respondOpsError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tickets": tickets}) // Return the list
	}
}
