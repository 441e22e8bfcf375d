package domain

// Support ticket statuses
const (
	TicketStatusOpen     = "OPEN"     // Awaiting a moderator
	TicketStatusResolved = "RESOLVED" // Handled by a moderator
)

// SupportTicket Model: a complaint or help request handled by moderation
type SupportTicket struct {
	ID        uint   `gorm:"primaryKey"`           // Primary key
	UserID    uint   `gorm:"index;not null"`       // Foreign key to the reporting User
	Subject   string `gorm:"size:128;not null"`    // Short summary
	Body      string `gorm:"size:1024"`            // Full complaint text
	Status    string `gorm:"size:16;default:OPEN"` // OPEN or RESOLVED
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
