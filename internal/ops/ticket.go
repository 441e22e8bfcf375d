package ops

import (
	"errors" // Error comparison

	"mutual_aid/internal/domain" // Importing domain models
	"mutual_aid/internal/notify" // In-app notifications

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CreateTicket files a complaint or support request for a user
func CreateTicket(db *gorm.DB, userID uint, subject, body string) (*domain.SupportTicket, error) {
	ticket := domain.SupportTicket{
		UserID:  userID,
		Subject: subject,
		Body:    body,
		Status:  domain.TicketStatusOpen,
	}
	if err := db.Create(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTicketsByUserID returns a user's own tickets, newest first
func ListTicketsByUserID(db *gorm.DB, userID uint) ([]domain.SupportTicket, error) {
	var tickets []domain.SupportTicket
	err := db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ListOpenTickets returns every unresolved ticket for the moderation queue
func ListOpenTickets(db *gorm.DB) ([]domain.SupportTicket, error) {
	var tickets []domain.SupportTicket
	err := db.Where("status = ?", domain.TicketStatusOpen).
		Order("created_at asc").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ResolveTicket marks a ticket as handled by a moderator. Resolving an
// already-resolved ticket is a no-op. The moderator earns PEACE_MAKER and
// the reporter is notified; neither follow-up unwinds the resolution.
func ResolveTicket(db *gorm.DB, ticketID, moderatorID uint) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket
	if err := db.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	// Idempotent: a second resolve changes nothing
	if ticket.Status == domain.TicketStatusResolved {
		return &ticket, nil
	}
	if err := db.Model(&ticket).Update("status", domain.TicketStatusResolved).Error; err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatusResolved
	// Reward the moderator; failure here is logged, not propagated
	if _, err := AwardBadge(db, moderatorID, BadgePeaceMaker); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": moderatorID,
			"error":   err.Error(),
		}).Warn("Could not award badge for resolved ticket")
	}
	if err := notify.Send(db, ticket.UserID, "Ticket resolved",
		"Your support ticket \""+ticket.Subject+"\" has been resolved."); err != nil {
		logrus.WithField("user_id", ticket.UserID).Warn("Could not notify reporter about resolution")
	}
	return &ticket, nil
}
