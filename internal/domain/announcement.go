package domain

// Announcement statuses
const (
	AnnouncementStatusOpen   = "OPEN"   // Still looking for a helper
	AnnouncementStatusClosed = "CLOSED" // Fulfilled or withdrawn by the poster
)

// Request statuses
const (
	RequestStatusPending   = "PENDING"   // Helper offered, poster has not decided
	RequestStatusAccepted  = "ACCEPTED"  // Poster picked this helper
	RequestStatusCompleted = "COMPLETED" // Errand done, helper rewarded
)

// Announcement Model: an errand posted by a user looking for help
type Announcement struct {
	ID          uint   `gorm:"primaryKey"`           // Primary key
	UserID      uint   `gorm:"index;not null"`       // Foreign key to the posting User
	Title       string `gorm:"size:128;not null"`    // Short summary of the errand
	Description string `gorm:"size:1024"`            // Full details
	Status      string `gorm:"size:16;default:OPEN"` // OPEN or CLOSED
	CreatedAt   int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
	// Offers made against this announcement; removed with it
	Requests []Request `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Request Model: a helper's offer to fulfil an announcement
type Request struct {
	ID             uint   `gorm:"primaryKey"`              // Primary key
	AnnouncementID uint   `gorm:"index;not null"`          // Foreign key to Announcement
	HelperID       uint   `gorm:"index;not null"`          // Foreign key to the helping User
	Status         string `gorm:"size:16;default:PENDING"` // PENDING, ACCEPTED or COMPLETED
	CreatedAt      int64  `gorm:"autoCreateTime:milli"`    // Timestamp of creation in milliseconds
}
