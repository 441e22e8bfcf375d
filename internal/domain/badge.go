package domain

// Badge Model: per (user, badge type) counters. At most one row exists per
// pair; lookups find-or-create. MonthlyCounter is zeroed by the monthly
// reset, TotalCounter only ever grows.
type Badge struct {
	ID             uint   `gorm:"primaryKey"`                                 // Primary key
	UserID         uint   `gorm:"uniqueIndex:idx_user_badge_type;not null"`   // Foreign key to User
	BadgeType      string `gorm:"uniqueIndex:idx_user_badge_type;size:32"`    // Catalog key
	Name           string `gorm:"size:64"`                                    // Display name from the catalog
	Description    string `gorm:"size:255"`                                   // Display description from the catalog
	MonthlyCounter int    `gorm:"not null;default:0"`                         // Awards in the current month
	TotalCounter   int    `gorm:"not null;default:0"`                         // Awards over the account lifetime
}
