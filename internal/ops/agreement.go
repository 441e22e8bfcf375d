package ops

import (
	"errors" // Error wrapping and comparison
	"time"   // Next payment dates

	"mutual_aid/internal/domain" // Importing domain models
	"mutual_aid/internal/notify" // In-app notifications

	"github.com/shopspring/decimal" // Fixed-point currency arithmetic
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// CreateAgreement persists a standing instruction bound to a provider
// subscription. A subscription id can back at most one agreement.
func CreateAgreement(db *gorm.DB, walletID uint, subscriptionID, planID string, amount decimal.Decimal, agreementType string, nextPaymentDate time.Time) (*domain.RecurrentAgreement, error) {
	// Validate before touching the database
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if agreementType != domain.RecurrentAgreementTypeTopUp && agreementType != domain.RecurrentAgreementTypeDonate {
		return nil, ErrInvalidAgreementType
	}
	// The owning wallet must exist
	if _, err := GetWalletByID(db, walletID); err != nil {
		return nil, err
	}
	// One agreement per provider subscription
	var existing domain.RecurrentAgreement
	err := db.Where("external_subscription_id = ?", subscriptionID).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateAgreement
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	agreement := domain.RecurrentAgreement{
		WalletID:               walletID,
		ExternalSubscriptionID: subscriptionID,
		ExternalPlanID:         planID,
		Amount:                 amount,
		RecurrentAgreementType: agreementType,
		NextPaymentDate:        nextPaymentDate,
	}
	if err := db.Create(&agreement).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"agreement_id":    agreement.ID,
		"wallet_id":       walletID,
		"subscription_id": subscriptionID,
		"type":            agreementType,
	}).Info("Recurrent agreement created")
	return &agreement, nil
}

// GetAgreementByID fetches an agreement by its primary key
func GetAgreementByID(db *gorm.DB, agreementID uint) (*domain.RecurrentAgreement, error) {
	var agreement domain.RecurrentAgreement
	if err := db.First(&agreement, agreementID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgreementNotFound
		}
		return nil, err
	}
	return &agreement, nil
}

// GetAgreementBySubscriptionID resolves an agreement from the provider's
// subscription id carried on each webhook
func GetAgreementBySubscriptionID(db *gorm.DB, subscriptionID string) (*domain.RecurrentAgreement, error) {
	var agreement domain.RecurrentAgreement
	if err := db.Where("external_subscription_id = ?", subscriptionID).First(&agreement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgreementNotFound
		}
		return nil, err
	}
	return &agreement, nil
}

// ListAgreementsByUserID returns the standing instructions funded by the
// user's wallet
func ListAgreementsByUserID(db *gorm.DB, userID uint) ([]domain.RecurrentAgreement, error) {
	wallet, err := GetWalletByUserID(db, userID)
	if err != nil {
		return nil, err
	}
	var agreements []domain.RecurrentAgreement
	if err := db.Where("wallet_id = ?", wallet.ID).Find(&agreements).Error; err != nil {
		return nil, err
	}
	return agreements, nil
}

// AgreementPatch carries the fields UpdateAgreement may change; nil fields
// are left untouched
type AgreementPatch struct {
	Amount          *decimal.Decimal // New per-period amount
	ExternalPlanID  *string          // New provider plan id
	NextPaymentDate *time.Time       // Advanced charge date
}

// UpdateAgreement applies a partial update to an agreement
func UpdateAgreement(db *gorm.DB, agreementID uint, patch AgreementPatch) (*domain.RecurrentAgreement, error) {
	agreement, err := GetAgreementByID(db, agreementID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Amount != nil {
		if !patch.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		updates["amount"] = *patch.Amount
	}
	if patch.ExternalPlanID != nil {
		updates["external_plan_id"] = *patch.ExternalPlanID
	}
	if patch.NextPaymentDate != nil {
		updates["next_payment_date"] = *patch.NextPaymentDate
	}
	// Nothing to change
	if len(updates) == 0 {
		return agreement, nil
	}
	if err := db.Model(agreement).Updates(updates).Error; err != nil {
		return nil, err
	}
	return agreement, nil
}

// CancelAgreement deletes a standing instruction and returns the owning
// user so the caller can notify them about the cancellation
func CancelAgreement(db *gorm.DB, agreementID uint) (*domain.User, error) {
	var owner domain.User
	err := db.Transaction(func(tx *gorm.DB) error {
		agreement, err := GetAgreementByID(tx, agreementID)
		if err != nil {
			return err
		}
		// Resolve the owner before the row disappears
		wallet, err := GetWalletByID(tx, agreement.WalletID)
		if err != nil {
			return err
		}
		if err := tx.First(&owner, wallet.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return tx.Delete(agreement).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"agreement_id": agreementID,
		"user_id":      owner.ID,
	}).Info("Recurrent agreement cancelled")
	return &owner, nil
}

// HandleProviderPayment processes one successful charge reported by the
// payment provider's webhook. The charge already moved real money, so a
// TOP_UP credits the wallet while a DONATE is recorded without debiting.
// Replays of the same payment id are acknowledged and ignored.
func HandleProviderPayment(db *gorm.DB, subscriptionID string, amount decimal.Decimal, externalPaymentID string) (*domain.Transaction, error) {
	agreement, err := GetAgreementBySubscriptionID(db, subscriptionID)
	if err != nil {
		// Unknown subscription is fatal for this delivery; the provider
		// retries on its own schedule
		return nil, err
	}
	var txn *domain.Transaction
	switch agreement.RecurrentAgreementType {
	case domain.RecurrentAgreementTypeTopUp:
		txn, err = RecordTopUp(db, agreement.WalletID, amount, externalPaymentID)
	case domain.RecurrentAgreementTypeDonate:
		txn, err = RecordDonation(db, agreement.WalletID, amount, true, &externalPaymentID)
	default:
		return nil, ErrInvalidAgreementType
	}
	if errors.Is(err, ErrDuplicateExternalEvent) {
		// At-least-once delivery: the first delivery already recorded this
		// charge, so the replay is acknowledged without a new ledger entry
		logrus.WithFields(logrus.Fields{
			"subscription_id":     subscriptionID,
			"external_payment_id": externalPaymentID,
		}).Info("Duplicate provider payment ignored")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// Tell the owner their standing instruction ran; a notification
	// failure never unwinds the financial operation
	if wallet, werr := GetWalletByID(db, agreement.WalletID); werr == nil {
		if nerr := notify.Send(db, wallet.UserID, "Recurring payment processed",
			"Your recurring "+agreement.RecurrentAgreementType+" of "+amount.String()+" was processed."); nerr != nil {
			logrus.WithField("user_id", wallet.UserID).Warn("Could not notify user about recurring payment")
		}
	}
	return txn, nil
}
