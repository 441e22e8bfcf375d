package api

import (
	"errors"                     // Error comparison
	"mutual_aid/internal/notify" // In-app notifications
	"net/http"                   // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ListNotificationsHandler returns the authenticated user's notifications
func ListNotificationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Fetch the user's notifications
		notifications, err := notify.ListByUserID(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifications}) // Return the list
	}
}

// MarkNotificationReadHandler flags one of the caller's notifications as seen
func MarkNotificationReadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		// Parse the notification id from the path
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		// Mark as read; ownership is enforced by the query
		if err := notify.MarkRead(db, id, userID); err != nil {
			if errors.Is(err, notify.ErrNotificationNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
			return
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}
