package ops

import (
	"testing"

	"mutual_aid/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var announcementColumns = []string{"id", "user_id", "title", "description", "status"}

func announcementRow(id, userID uint, status string) *sqlmock.Rows {
	return sqlmock.NewRows(announcementColumns).
		AddRow(id, userID, "Buy groceries", "NTUC run for elderly neighbour", status)
}

var requestColumns = []string{"id", "announcement_id", "helper_id", "status"}

func requestRow(id, announcementID, helperID uint, status string) *sqlmock.Rows {
	return sqlmock.NewRows(requestColumns).AddRow(id, announcementID, helperID, status)
}

func TestCreateHelpRequest_Success(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))
	mock.ExpectExec("INSERT INTO .requests.").
		WillReturnResult(sqlmock.NewResult(5, 1))
	// The poster is told about the new offer
	mock.ExpectExec("INSERT INTO .notifications.").
		WillReturnResult(sqlmock.NewResult(6, 1))

	request, err := CreateHelpRequest(db, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, uint(5), request.ID)
	assert.Equal(t, uint(6), request.HelperID)
	assert.Equal(t, domain.RequestStatusPending, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHelpRequest_SelfOffer(t *testing.T) {
	db, mock := newTestDB(t)

	// The poster cannot offer to run their own errand
	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))

	_, err := CreateHelpRequest(db, 1, 3)
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHelpRequest_ClosedAnnouncement(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusClosed))

	_, err := CreateHelpRequest(db, 1, 6)
	assert.ErrorIs(t, err, ErrAnnouncementClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseAnnouncement_NotOwner(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))

	_, err := CloseAnnouncement(db, 1, 99)
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRequest_Success(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .requests.").
		WillReturnRows(requestRow(5, 1, 6, domain.RequestStatusPending))
	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))
	mock.ExpectExec("UPDATE .requests. SET .status.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The helper is told they were picked
	mock.ExpectExec("INSERT INTO .notifications.").
		WillReturnResult(sqlmock.NewResult(7, 1))

	request, err := AcceptRequest(db, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusAccepted, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRequest_NotPoster(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .requests.").
		WillReturnRows(requestRow(5, 1, 6, domain.RequestStatusPending))
	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))

	_, err := AcceptRequest(db, 5, 42)
	assert.ErrorIs(t, err, ErrNotAllowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRequest_NoTip(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .requests.").
		WillReturnRows(requestRow(5, 1, 6, domain.RequestStatusAccepted))
	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))
	mock.ExpectExec("UPDATE .requests. SET .status.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE .announcements. SET .status.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// Badge for the helper in its own transaction
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .badges. WHERE user_id =").
		WillReturnRows(badgeRow(2, 6, BadgeGoodSamaritan, 1, 1))
	mock.ExpectExec("UPDATE .badges. SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO .notifications.").
		WillReturnResult(sqlmock.NewResult(8, 1))

	request, err := CompleteRequest(db, 5, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRequest_WithTip(t *testing.T) {
	db, mock := newTestDB(t)
	tip := dec("8")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .requests.").
		WillReturnRows(requestRow(5, 1, 6, domain.RequestStatusAccepted))
	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))
	mock.ExpectExec("UPDATE .requests. SET .status.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE .announcements. SET .status.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Wallet lookups for poster and helper
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE user_id =").
		WillReturnRows(walletRow(1, 3, "50.00", nil))
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE user_id =").
		WillReturnRows(walletRow(2, 6, "0.00", nil))
	// The tip rides the peer payment path inside the same transaction
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE (.+)FOR UPDATE").
		WillReturnRows(walletRow(1, 3, "50.00", nil))
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE (.+)FOR UPDATE").
		WillReturnRows(walletRow(2, 6, "0.00", nil))
	mock.ExpectExec("UPDATE .wallets. SET .balance.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE .wallets. SET .balance.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO .transactions.").
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .badges. WHERE user_id =").
		WillReturnRows(badgeRow(2, 6, BadgeGoodSamaritan, 1, 1))
	mock.ExpectExec("UPDATE .badges. SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("INSERT INTO .notifications.").
		WillReturnResult(sqlmock.NewResult(9, 1))

	request, err := CompleteRequest(db, 5, 3, &tip)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusCompleted, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRequest_TipInsufficientRollsBackCompletion(t *testing.T) {
	db, mock := newTestDB(t)
	tip := dec("8")

	// The status updates are applied and then rolled back when the tip
	// cannot be funded
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .requests.").
		WillReturnRows(requestRow(5, 1, 6, domain.RequestStatusAccepted))
	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))
	mock.ExpectExec("UPDATE .requests. SET .status.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE .announcements. SET .status.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE user_id =").
		WillReturnRows(walletRow(1, 3, "2.00", nil))
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE user_id =").
		WillReturnRows(walletRow(2, 6, "0.00", nil))
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE (.+)FOR UPDATE").
		WillReturnRows(walletRow(1, 3, "2.00", nil))
	mock.ExpectQuery("SELECT \\* FROM .wallets. WHERE (.+)FOR UPDATE").
		WillReturnRows(walletRow(2, 6, "0.00", nil))
	mock.ExpectRollback()

	_, err := CompleteRequest(db, 5, 3, &tip)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteRequest_NotAccepted(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .requests.").
		WillReturnRows(requestRow(5, 1, 6, domain.RequestStatusPending))
	mock.ExpectQuery("SELECT \\* FROM .announcements.").
		WillReturnRows(announcementRow(1, 3, domain.AnnouncementStatusOpen))
	mock.ExpectRollback()

	_, err := CompleteRequest(db, 5, 3, nil)
	assert.ErrorIs(t, err, ErrInvalidRequestState)
	assert.NoError(t, mock.ExpectationsWereMet())
}
