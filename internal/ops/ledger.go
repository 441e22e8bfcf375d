package ops

import (
	"errors" // Error wrapping and comparison

	"mutual_aid/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// externalPaymentExists reports whether a ledger entry already carries the
// given provider payment reference. Payment providers deliver webhooks
// at-least-once, so replays must be detected before crediting again.
func externalPaymentExists(tx *gorm.DB, externalPaymentID string) (bool, error) {
	var count int64
	err := tx.Model(&domain.Transaction{}).
		Where("external_payment_id = ?", externalPaymentID).
		Count(&count).Error
	return count > 0, err
}

// recordPeerPaymentTx moves amount between two wallets and appends the
// USER ledger entry, all inside the caller's open transaction. Wallets are
// locked in ascending id order so two crossing payments cannot deadlock.
func recordPeerPaymentTx(tx *gorm.DB, senderWalletID, recipientWalletID uint, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	firstID, secondID := senderWalletID, recipientWalletID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := lockWallet(tx, firstID)
	if err != nil {
		return nil, err
	}
	second, err := lockWallet(tx, secondID)
	if err != nil {
		return nil, err
	}
	// Map the locked rows back to their roles
	sender, recipient := first, second
	if first.ID != senderWalletID {
		sender, recipient = second, first
	}
	// Debit the sender, then credit the recipient
	if _, err := debitWalletTx(tx, sender, amount); err != nil {
		return nil, err
	}
	if _, err := creditWalletTx(tx, recipient, amount); err != nil {
		return nil, err
	}
	// Append the immutable ledger entry
	txn := domain.Transaction{
		SenderWalletID:    &sender.ID,
		RecipientWalletID: &recipient.ID,
		Amount:            amount,
		TransactionType:   domain.TransactionTypeUser,
		Description:       description,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// RecordPeerPayment atomically debits the sender, credits the recipient and
// appends one USER transaction. If any step fails nothing is applied.
func RecordPeerPayment(db *gorm.DB, senderWalletID, recipientWalletID uint, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	// Validate before touching the database
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if senderWalletID == recipientWalletID {
		return nil, ErrSameWallet
	}
	var txn *domain.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = recordPeerPaymentTx(tx, senderWalletID, recipientWalletID, amount, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	// Audit log for the transfer
	logrus.WithFields(logrus.Fields{
		"transaction_id":      txn.ID,
		"sender_wallet_id":    senderWalletID,
		"recipient_wallet_id": recipientWalletID,
		"amount":              amount.String(),
		"type":                domain.TransactionTypeUser,
	}).Info("Peer payment recorded")
	return txn, nil
}

// RecordWithdrawal debits a wallet and appends a WITHDRAW transaction
func RecordWithdrawal(db *gorm.DB, walletID uint, amount decimal.Decimal) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	var txn *domain.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, walletID)
		if err != nil {
			return err
		}
		if _, err := debitWalletTx(tx, wallet, amount); err != nil {
			return err
		}
		entry := domain.Transaction{
			SenderWalletID:  &wallet.ID,
			Amount:          amount,
			TransactionType: domain.TransactionTypeWithdraw,
			Description:     "Withdrawal from wallet",
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		txn = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"transaction_id": txn.ID,
		"wallet_id":      walletID,
		"amount":         amount.String(),
		"type":           domain.TransactionTypeWithdraw,
	}).Info("Withdrawal recorded")
	return txn, nil
}

// RecordDonation appends a DONATE transaction. A donation settled by the
// external provider (a recurring donation charge) has already moved real
// money, so the wallet is not debited again; a direct donation is funded
// from the wallet balance.
func RecordDonation(db *gorm.DB, walletID uint, amount decimal.Decimal, externallySettled bool, externalPaymentID *string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	var txn *domain.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		// Replayed provider events must not produce a second ledger entry
		if externalPaymentID != nil {
			exists, err := externalPaymentExists(tx, *externalPaymentID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateExternalEvent
			}
		}
		wallet, err := lockWallet(tx, walletID)
		if err != nil {
			return err
		}
		// Only a wallet-funded donation touches the balance
		if !externallySettled {
			if _, err := debitWalletTx(tx, wallet, amount); err != nil {
				return err
			}
		}
		entry := domain.Transaction{
			SenderWalletID:    &wallet.ID,
			Amount:            amount,
			TransactionType:   domain.TransactionTypeDonate,
			Description:       "Donation to the community fund",
			ExternalPaymentID: externalPaymentID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		txn = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"transaction_id":     txn.ID,
		"wallet_id":          walletID,
		"amount":             amount.String(),
		"externally_settled": externallySettled,
		"type":               domain.TransactionTypeDonate,
	}).Info("Donation recorded")
	return txn, nil
}

// RecordTopUp credits a wallet with funds settled by the external provider
// and appends a TOP_UP transaction. The provider payment reference is kept
// both for reconciliation and as the replay guard.
func RecordTopUp(db *gorm.DB, walletID uint, amount decimal.Decimal, externalPaymentID string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	var txn *domain.Transaction
	err := db.Transaction(func(tx *gorm.DB) error {
		// Replayed provider events must not credit the wallet twice
		exists, err := externalPaymentExists(tx, externalPaymentID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateExternalEvent
		}
		wallet, err := lockWallet(tx, walletID)
		if err != nil {
			return err
		}
		if _, err := creditWalletTx(tx, wallet, amount); err != nil {
			return err
		}
		entry := domain.Transaction{
			RecipientWalletID: &wallet.ID,
			Amount:            amount,
			TransactionType:   domain.TransactionTypeTopUp,
			Description:       "Top-up via provider payment " + externalPaymentID,
			ExternalPaymentID: &externalPaymentID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		txn = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"transaction_id":      txn.ID,
		"wallet_id":           walletID,
		"amount":              amount.String(),
		"external_payment_id": externalPaymentID,
		"type":                domain.TransactionTypeTopUp,
	}).Info("Top-up recorded")
	return txn, nil
}

// ListTransactionsByUserID returns every transaction in which the user's
// wallet appears as sender or recipient, newest first
func ListTransactionsByUserID(db *gorm.DB, userID uint) ([]domain.Transaction, error) {
	wallet, err := GetWalletByUserID(db, userID)
	if err != nil {
		return nil, err
	}
	var transactions []domain.Transaction
	err = db.Where("sender_wallet_id = ? OR recipient_wallet_id = ?", wallet.ID, wallet.ID).
		Order("created_at desc").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// GetTransactionByID fetches a single ledger entry
func GetTransactionByID(db *gorm.DB, transactionID uint) (*domain.Transaction, error) {
	var txn domain.Transaction
	if err := db.First(&txn, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}
