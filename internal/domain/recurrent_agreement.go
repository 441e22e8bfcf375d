package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recurrent agreement types
const (
	RecurrentAgreementTypeTopUp  = "TOP_UP" // Periodic wallet top-up
	RecurrentAgreementTypeDonate = "DONATE" // Periodic donation
)

// RecurrentAgreement Model: a standing instruction bound to a subscription
// at the external payment provider. Deleted when the user cancels.
type RecurrentAgreement struct {
	ID                     uint            `gorm:"primaryKey"`                  // Primary key
	WalletID               uint            `gorm:"index;not null"`              // Foreign key to owning Wallet
	ExternalSubscriptionID string          `gorm:"size:128;uniqueIndex"`        // Subscription id at the provider
	ExternalPlanID         string          `gorm:"size:128"`                    // Billing plan id at the provider
	Amount                 decimal.Decimal `gorm:"type:decimal(12,2);not null"` // Amount charged per period
	RecurrentAgreementType string          `gorm:"size:16;not null"`            // TOP_UP or DONATE
	NextPaymentDate        time.Time       // When the provider will charge next
}
