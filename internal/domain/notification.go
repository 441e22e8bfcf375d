package domain

// Notification Model: an in-app message shown to a user. Written
// fire-and-forget; a failed insert never affects the operation that
// triggered it.
type Notification struct {
	ID        uint   `gorm:"primaryKey"`           // Primary key
	UserID    uint   `gorm:"index;not null"`       // Foreign key to the recipient User
	Title     string `gorm:"size:128;not null"`    // Short headline
	Body      string `gorm:"size:512"`             // Message text
	Read      bool   `gorm:"default:false"`        // Whether the user has seen it
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
