package ops

import (
	"errors" // Error wrapping and comparison

	"mutual_aid/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row-locking clauses
)

// CreateWallet creates a wallet with zero balance and no limit for a user.
// A user can hold at most one wallet.
func CreateWallet(db *gorm.DB, userID uint) (*domain.Wallet, error) {
	var existing domain.Wallet
	// Check if the user already has a wallet
	err := db.Where("user_id = ?", userID).First(&existing).Error
	if err == nil {
		return nil, ErrWalletExists // Wallet already exists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err // Unexpected persistence error
	}
	wallet := domain.Wallet{UserID: userID, Balance: decimal.Zero}
	// Save the new wallet
	if err := db.Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetWalletByID fetches a wallet by its primary key
func GetWalletByID(db *gorm.DB, walletID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := db.First(&wallet, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// GetWalletByUserID fetches the wallet owned by a user
func GetWalletByUserID(db *gorm.DB, userID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// lockWallet loads a wallet under a row lock so the check-then-write below
// cannot race with a concurrent mutation of the same row
func lockWallet(tx *gorm.DB, walletID uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wallet, walletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// creditWalletTx adds amount to a locked wallet inside an open transaction.
// The caller owns the transaction boundary.
func creditWalletTx(tx *gorm.DB, wallet *domain.Wallet, amount decimal.Decimal) (decimal.Decimal, error) {
	next := wallet.Balance.Add(amount) // Balance after the credit
	// Enforce the wallet limit if one is set
	if wallet.WalletLimit != nil && next.GreaterThan(*wallet.WalletLimit) {
		return decimal.Zero, ErrLimitExceeded
	}
	// Persist the new balance
	if err := tx.Model(wallet).Update("balance", next).Error; err != nil {
		return decimal.Zero, err
	}
	wallet.Balance = next
	return next, nil
}

// debitWalletTx removes amount from a locked wallet inside an open
// transaction. The balance can never go negative.
func debitWalletTx(tx *gorm.DB, wallet *domain.Wallet, amount decimal.Decimal) (decimal.Decimal, error) {
	// Reject a debit larger than the balance
	if wallet.Balance.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}
	next := wallet.Balance.Sub(amount) // Balance after the debit
	// Persist the new balance
	if err := tx.Model(wallet).Update("balance", next).Error; err != nil {
		return decimal.Zero, err
	}
	wallet.Balance = next
	return next, nil
}

// Credit adds amount to a wallet and returns the new balance
func Credit(db *gorm.DB, walletID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	// Validate before touching the database
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	var balance decimal.Decimal
	// Lock, check and write as one atomic unit
	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, walletID)
		if err != nil {
			return err
		}
		balance, err = creditWalletTx(tx, wallet, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	// Audit log for the balance mutation
	logrus.WithFields(logrus.Fields{
		"wallet_id": walletID,
		"amount":    amount.String(),
		"balance":   balance.String(),
	}).Info("Wallet credited")
	return balance, nil
}

// Debit removes amount from a wallet and returns the new balance
func Debit(db *gorm.DB, walletID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	// Validate before touching the database
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	var balance decimal.Decimal
	// Lock, check and write as one atomic unit
	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, walletID)
		if err != nil {
			return err
		}
		balance, err = debitWalletTx(tx, wallet, amount)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	// Audit log for the balance mutation
	logrus.WithFields(logrus.Fields{
		"wallet_id": walletID,
		"amount":    amount.String(),
		"balance":   balance.String(),
	}).Info("Wallet debited")
	return balance, nil
}

// SetWalletLimit sets an upper bound on the wallet balance. A limit below
// the current balance is rejected so the invariant balance <= limit holds
// immediately, not just after the next credit.
func SetWalletLimit(db *gorm.DB, walletID uint, limit decimal.Decimal) (*domain.Wallet, error) {
	if !limit.IsPositive() {
		return nil, ErrInvalidAmount
	}
	var wallet *domain.Wallet
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, err = lockWallet(tx, walletID)
		if err != nil {
			return err
		}
		// Never allow the limit to undercut what is already in the wallet
		if limit.LessThan(wallet.Balance) {
			return ErrLimitBelowBalance
		}
		if err := tx.Model(wallet).Update("wallet_limit", limit).Error; err != nil {
			return err
		}
		wallet.WalletLimit = &limit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// ClearWalletLimit removes the upper bound from a wallet
func ClearWalletLimit(db *gorm.DB, walletID uint) (*domain.Wallet, error) {
	wallet, err := GetWalletByID(db, walletID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(wallet).Update("wallet_limit", nil).Error; err != nil {
		return nil, err
	}
	wallet.WalletLimit = nil
	return wallet, nil
}
