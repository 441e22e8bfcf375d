package notify

import (
	"errors" // Error comparison

	"mutual_aid/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// ErrNotificationNotFound is returned when a notification does not exist
// or belongs to a different user
var ErrNotificationNotFound = errors.New("notification not found")

// Send records an in-app notification for a user. Callers treat this as
// fire-and-forget: a failure is logged and must never roll back the
// operation that triggered it.
func Send(db *gorm.DB, userID uint, title, body string) error {
	n := domain.Notification{UserID: userID, Title: title, Body: body}
	if err := db.Create(&n).Error; err != nil {
		// Log and surface, but callers only warn on this
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"title":   title,
			"error":   err.Error(),
		}).Warn("Failed to record notification")
		return err
	}
	return nil
}

// ListByUserID returns a user's notifications, newest first
func ListByUserID(db *gorm.DB, userID uint) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags a notification as seen by its owner
func MarkRead(db *gorm.DB, notificationID, userID uint) error {
	res := db.Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
