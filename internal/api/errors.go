package api

import (
	"errors"                  // Error comparison
	"mutual_aid/internal/ops" // Operations layer sentinels
	"net/http"                // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// respondOpsError maps an operations-layer sentinel to an HTTP response.
// Anything outside the sentinel catalog is an unexpected persistence
// failure and is reported as a generic server error; the ops layer has
// already logged the details.
func respondOpsError(c *gin.Context, err error) {
	switch {
	// Missing entities
	case errors.Is(err, ops.ErrWalletNotFound),
		errors.Is(err, ops.ErrUserNotFound),
		errors.Is(err, ops.ErrTransactionNotFound),
		errors.Is(err, ops.ErrAgreementNotFound),
		errors.Is(err, ops.ErrAnnouncementNotFound),
		errors.Is(err, ops.ErrRequestNotFound),
		errors.Is(err, ops.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	// Validation failures, detected before any mutation
	case errors.Is(err, ops.ErrInvalidAmount),
		errors.Is(err, ops.ErrInsufficientFunds),
		errors.Is(err, ops.ErrLimitExceeded),
		errors.Is(err, ops.ErrLimitBelowBalance),
		errors.Is(err, ops.ErrSameWallet),
		errors.Is(err, ops.ErrInvalidBadgeType),
		errors.Is(err, ops.ErrInvalidPeriod),
		errors.Is(err, ops.ErrInvalidAgreementType),
		errors.Is(err, ops.ErrAnnouncementClosed),
		errors.Is(err, ops.ErrInvalidRequestState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	// Conflicts with existing state
	case errors.Is(err, ops.ErrWalletExists),
		errors.Is(err, ops.ErrDuplicateAgreement),
		errors.Is(err, ops.ErrDuplicateExternalEvent):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	// Ownership violations
	case errors.Is(err, ops.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// currentUserID pulls the authenticated user id set by the JWT middleware.
// Returns false (after writing the response) when the context has none.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID") // Get userID from context
	if !exists {
		// If not, return unauthorized
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID.(uint), true
}
