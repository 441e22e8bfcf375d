package domain

import "github.com/shopspring/decimal"

// Transaction types; every ledger entry carries exactly one of these
const (
	TransactionTypeUser     = "USER"     // Peer-to-peer payment between two wallets
	TransactionTypeWithdraw = "WITHDRAW" // Funds leaving the platform
	TransactionTypeDonate   = "DONATE"   // Donation to the community pool
	TransactionTypeTopUp    = "TOP_UP"   // Funds entering a wallet from the provider
)

// Transaction Model. Rows are immutable once created: the ledger entry,
// not the call that produced it, is the unit of effect.
type Transaction struct {
	ID                uint            `gorm:"primaryKey"`                  // Primary key
	SenderWalletID    *uint           `gorm:"index"`                       // Wallet the amount left, if any
	RecipientWalletID *uint           `gorm:"index"`                       // Wallet the amount entered, if any
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"` // Always positive
	TransactionType   string          `gorm:"size:16;not null"`            // One of the type constants above
	Description       string          `gorm:"size:255"`                    // Human-readable context
	// Payment reference issued by the external provider; unique so a replayed
	// webhook can never record the same charge twice
	ExternalPaymentID *string `gorm:"size:128;uniqueIndex"`
	CreatedAt         int64   `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
