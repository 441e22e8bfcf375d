package domain

import "github.com/shopspring/decimal"

// Wallet Model
type Wallet struct {
	ID      uint            `gorm:"primaryKey"`                             // Primary key
	UserID  uint            `gorm:"uniqueIndex"`                            // Foreign key to User, one wallet per user
	Balance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`  // Spendable balance, never negative
	// Optional upper bound on the balance; nil means unbounded
	WalletLimit *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Optional payer reference at the external payment provider
	ProviderPayerID *string `gorm:"size:128"`
	// Standing instructions funded through this wallet; removed with the wallet
	RecurrentAgreements []RecurrentAgreement `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
