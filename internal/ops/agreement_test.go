package ops

import (
	"testing"
	"time"

	"mutual_aid/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// agreementColumns are the columns returned for agreement row fixtures
var agreementColumns = []string{
	"id", "wallet_id", "external_subscription_id", "external_plan_id",
	"amount", "recurrent_agreement_type", "next_payment_date",
}

func agreementRow(id, walletID uint, subscriptionID, agreementType, amount string) *sqlmock.Rows {
	return sqlmock.NewRows(agreementColumns).
		AddRow(id, walletID, subscriptionID, "PLAN-1", amount, agreementType, time.Now())
}

func TestCreateAgreement_Success(t *testing.T) {
	db, mock := newTestDB(t)
	next := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM .wallets.").
		WillReturnRows(walletRow(1, 1, "0.00", nil))
	// No agreement carries this subscription id yet
	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements. WHERE external_subscription_id =").
		WillReturnRows(sqlmock.NewRows(agreementColumns))
	mock.ExpectExec("INSERT INTO .recurrent_agreements.").
		WillReturnResult(sqlmock.NewResult(4, 1))

	agreement, err := CreateAgreement(db, 1, "SUB-9", "PLAN-1", dec("15"), domain.RecurrentAgreementTypeTopUp, next)
	require.NoError(t, err)
	assert.Equal(t, uint(4), agreement.ID)
	assert.Equal(t, "SUB-9", agreement.ExternalSubscriptionID)
	assert.Equal(t, domain.RecurrentAgreementTypeTopUp, agreement.RecurrentAgreementType)
	assert.True(t, agreement.Amount.Equal(dec("15")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAgreement_DuplicateSubscription(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .wallets.").
		WillReturnRows(walletRow(1, 1, "0.00", nil))
	// A previous agreement already claimed the subscription id
	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements. WHERE external_subscription_id =").
		WillReturnRows(agreementRow(2, 1, "SUB-9", domain.RecurrentAgreementTypeTopUp, "15.00"))

	_, err := CreateAgreement(db, 1, "SUB-9", "PLAN-1", dec("15"), domain.RecurrentAgreementTypeTopUp, time.Now())
	assert.ErrorIs(t, err, ErrDuplicateAgreement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAgreement_InvalidType(t *testing.T) {
	db, mock := newTestDB(t)

	_, err := CreateAgreement(db, 1, "SUB-9", "PLAN-1", dec("15"), "WEEKLY_RAFFLE", time.Now())
	assert.ErrorIs(t, err, ErrInvalidAgreementType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAgreement_InvalidAmount(t *testing.T) {
	db, mock := newTestDB(t)

	_, err := CreateAgreement(db, 1, "SUB-9", "PLAN-1", dec("0"), domain.RecurrentAgreementTypeDonate, time.Now())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleProviderPayment_TopUp(t *testing.T) {
	db, mock := newTestDB(t)

	// Resolve the agreement from the subscription id
	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements. WHERE external_subscription_id =").
		WillReturnRows(agreementRow(2, 1, "SUB-9", domain.RecurrentAgreementTypeTopUp, "15.00"))
	// The top-up runs in its own transaction
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count(.+) FROM .transactions.").
		WithArgs("PAY-42").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE (.+)FOR UPDATE").
		WillReturnRows(walletRow(1, 6, "5.00", nil))
	mock.ExpectExec("UPDATE .wallets. SET .balance.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO .transactions.").
		WillReturnResult(sqlmock.NewResult(20, 1))
	mock.ExpectCommit()
	// Owner lookup and notification after the money is recorded
	mock.ExpectQuery("SELECT \\* FROM .wallets.").
		WillReturnRows(walletRow(1, 6, "20.00", nil))
	mock.ExpectExec("INSERT INTO .notifications.").
		WillReturnResult(sqlmock.NewResult(30, 1))

	txn, err := HandleProviderPayment(db, "SUB-9", dec("15"), "PAY-42")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, domain.TransactionTypeTopUp, txn.TransactionType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleProviderPayment_Replay(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements. WHERE external_subscription_id =").
		WillReturnRows(agreementRow(2, 1, "SUB-9", domain.RecurrentAgreementTypeTopUp, "15.00"))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count(.+) FROM .transactions.").
		WithArgs("PAY-42").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	// The replay is swallowed: no error, no new ledger entry
	txn, err := HandleProviderPayment(db, "SUB-9", dec("15"), "PAY-42")
	assert.NoError(t, err)
	assert.Nil(t, txn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleProviderPayment_UnknownSubscription(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements. WHERE external_subscription_id =").
		WillReturnRows(sqlmock.NewRows(agreementColumns))

	_, err := HandleProviderPayment(db, "SUB-MISSING", dec("15"), "PAY-42")
	assert.ErrorIs(t, err, ErrAgreementNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelAgreement_ResolvesOwner(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements.").
		WillReturnRows(agreementRow(2, 1, "SUB-9", domain.RecurrentAgreementTypeDonate, "15.00"))
	mock.ExpectQuery("SELECT \\* FROM .wallets.").
		WillReturnRows(walletRow(1, 6, "0.00", nil))
	mock.ExpectQuery("SELECT \\* FROM .users.").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "role"}).
			AddRow(6, "meixin", "hashed", "user"))
	mock.ExpectExec("DELETE FROM .recurrent_agreements.").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	owner, err := CancelAgreement(db, 2)
	require.NoError(t, err)
	assert.Equal(t, uint(6), owner.ID)
	assert.Equal(t, "meixin", owner.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAgreement_NoFields(t *testing.T) {
	db, mock := newTestDB(t)

	// An empty patch reads the row and writes nothing
	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements.").
		WillReturnRows(agreementRow(2, 1, "SUB-9", domain.RecurrentAgreementTypeTopUp, "15.00"))

	agreement, err := UpdateAgreement(db, 2, AgreementPatch{})
	require.NoError(t, err)
	assert.Equal(t, uint(2), agreement.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAgreement_Amount(t *testing.T) {
	db, mock := newTestDB(t)
	amount := dec("25")

	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements.").
		WillReturnRows(agreementRow(2, 1, "SUB-9", domain.RecurrentAgreementTypeTopUp, "15.00"))
	mock.ExpectExec("UPDATE .recurrent_agreements. SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := UpdateAgreement(db, 2, AgreementPatch{Amount: &amount})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAgreement_InvalidAmount(t *testing.T) {
	db, mock := newTestDB(t)
	amount := dec("-3")

	mock.ExpectQuery("SELECT \\* FROM .recurrent_agreements.").
		WillReturnRows(agreementRow(2, 1, "SUB-9", domain.RecurrentAgreementTypeTopUp, "15.00"))

	_, err := UpdateAgreement(db, 2, AgreementPatch{Amount: &amount})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
