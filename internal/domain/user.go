package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey"`      // Primary key
	Username string `gorm:"unique;not null"` // Unique username
	Password string `gorm:"not null"`        // Hashed password
	Role     string `gorm:"default:user"`    // Role: user or admin
	// One-to-one relationship with Wallet; removing a user removes their wallet
	Wallet Wallet `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	// Badge counters owned by this user
	Badges []Badge `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
