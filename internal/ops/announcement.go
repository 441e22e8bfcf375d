package ops

import (
	"errors" // Error comparison

	"mutual_aid/internal/domain" // Importing domain models
	"mutual_aid/internal/notify" // In-app notifications

	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateAnnouncement posts a new errand request on behalf of a user
func CreateAnnouncement(db *gorm.DB, userID uint, title, description string) (*domain.Announcement, error) {
	announcement := domain.Announcement{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      domain.AnnouncementStatusOpen,
	}
	if err := db.Create(&announcement).Error; err != nil {
		return nil, err
	}
	return &announcement, nil
}

// ListOpenAnnouncements returns announcements still looking for a helper,
// newest first
func ListOpenAnnouncements(db *gorm.DB) ([]domain.Announcement, error) {
	var announcements []domain.Announcement
	err := db.Where("status = ?", domain.AnnouncementStatusOpen).
		Order("created_at desc").
		Find(&announcements).Error
	if err != nil {
		return nil, err
	}
	return announcements, nil
}

// getAnnouncement fetches an announcement or maps the miss to a sentinel
func getAnnouncement(db *gorm.DB, announcementID uint) (*domain.Announcement, error) {
	var announcement domain.Announcement
	if err := db.First(&announcement, announcementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return &announcement, nil
}

// CloseAnnouncement withdraws an open announcement; only the poster may
// close their own
func CloseAnnouncement(db *gorm.DB, announcementID, userID uint) (*domain.Announcement, error) {
	announcement, err := getAnnouncement(db, announcementID)
	if err != nil {
		return nil, err
	}
	if announcement.UserID != userID {
		return nil, ErrNotAllowed
	}
	if err := db.Model(announcement).Update("status", domain.AnnouncementStatusClosed).Error; err != nil {
		return nil, err
	}
	announcement.Status = domain.AnnouncementStatusClosed
	return announcement, nil
}

// CreateHelpRequest registers a helper's offer against an open
// announcement. Posters cannot offer to help themselves.
func CreateHelpRequest(db *gorm.DB, announcementID, helperID uint) (*domain.Request, error) {
	announcement, err := getAnnouncement(db, announcementID)
	if err != nil {
		return nil, err
	}
	if announcement.Status != domain.AnnouncementStatusOpen {
		return nil, ErrAnnouncementClosed
	}
	if announcement.UserID == helperID {
		return nil, ErrNotAllowed
	}
	request := domain.Request{
		AnnouncementID: announcementID,
		HelperID:       helperID,
		Status:         domain.RequestStatusPending,
	}
	if err := db.Create(&request).Error; err != nil {
		return nil, err
	}
	// Let the poster know someone offered to help
	if err := notify.Send(db, announcement.UserID, "New helper offer",
		"Someone offered to help with: "+announcement.Title); err != nil {
		logrus.WithField("user_id", announcement.UserID).Warn("Could not notify poster about new offer")
	}
	return &request, nil
}

// getRequestWithAnnouncement loads a request together with its announcement
func getRequestWithAnnouncement(db *gorm.DB, requestID uint) (*domain.Request, *domain.Announcement, error) {
	var request domain.Request
	if err := db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, err
	}
	announcement, err := getAnnouncement(db, request.AnnouncementID)
	if err != nil {
		return nil, nil, err
	}
	return &request, announcement, nil
}

// AcceptRequest lets the poster pick a pending helper
func AcceptRequest(db *gorm.DB, requestID, posterID uint) (*domain.Request, error) {
	request, announcement, err := getRequestWithAnnouncement(db, requestID)
	if err != nil {
		return nil, err
	}
	if announcement.UserID != posterID {
		return nil, ErrNotAllowed
	}
	if request.Status != domain.RequestStatusPending {
		return nil, ErrInvalidRequestState
	}
	if err := db.Model(request).Update("status", domain.RequestStatusAccepted).Error; err != nil {
		return nil, err
	}
	request.Status = domain.RequestStatusAccepted
	// Tell the helper they were picked
	if err := notify.Send(db, request.HelperID, "Offer accepted",
		"Your offer to help with \""+announcement.Title+"\" was accepted."); err != nil {
		logrus.WithField("user_id", request.HelperID).Warn("Could not notify helper about acceptance")
	}
	return request, nil
}

// CompleteRequest marks an accepted errand as done and closes its
// announcement. An optional tip moves from the poster's wallet to the
// helper's through the ledger; if the tip fails nothing is applied. The
// helper's GOOD_SAMARITAN badge and the completion notification follow
// after commit and never unwind the completion itself.
func CompleteRequest(db *gorm.DB, requestID, posterID uint, tip *decimal.Decimal) (*domain.Request, error) {
	var request *domain.Request
	var announcement *domain.Announcement
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		request, announcement, err = getRequestWithAnnouncement(tx, requestID)
		if err != nil {
			return err
		}
		if announcement.UserID != posterID {
			return ErrNotAllowed
		}
		if request.Status != domain.RequestStatusAccepted {
			return ErrInvalidRequestState
		}
		if err := tx.Model(request).Update("status", domain.RequestStatusCompleted).Error; err != nil {
			return err
		}
		if err := tx.Model(announcement).Update("status", domain.AnnouncementStatusClosed).Error; err != nil {
			return err
		}
		// Optional thank-you payment from poster to helper
		if tip != nil {
			if !tip.IsPositive() {
				return ErrInvalidAmount
			}
			posterWallet, err := GetWalletByUserID(tx, posterID)
			if err != nil {
				return err
			}
			helperWallet, err := GetWalletByUserID(tx, request.HelperID)
			if err != nil {
				return err
			}
			if _, err := recordPeerPaymentTx(tx, posterWallet.ID, helperWallet.ID, *tip,
				"Tip for: "+announcement.Title); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	request.Status = domain.RequestStatusCompleted
	// Reward the helper; failure here is logged, not propagated
	if _, err := AwardBadge(db, request.HelperID, BadgeGoodSamaritan); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": request.HelperID,
			"error":   err.Error(),
		}).Warn("Could not award badge for completed errand")
	}
	if err := notify.Send(db, request.HelperID, "Errand completed",
		"The errand \""+announcement.Title+"\" was marked as completed. Thank you!"); err != nil {
		logrus.WithField("user_id", request.HelperID).Warn("Could not notify helper about completion")
	}
	return request, nil
}
