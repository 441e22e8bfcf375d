package ops

import (
	"testing"

	"mutual_aid/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ticketColumns = []string{"id", "user_id", "subject", "body", "status"}

func ticketRow(id, userID uint, status string) *sqlmock.Rows {
	return sqlmock.NewRows(ticketColumns).
		AddRow(id, userID, "Noisy neighbour", "Renovation drilling past 10pm", status)
}

func TestResolveTicket_Success(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .support_tickets.").
		WillReturnRows(ticketRow(3, 6, domain.TicketStatusOpen))
	mock.ExpectExec("UPDATE .support_tickets. SET .status.=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// PEACE_MAKER for the moderator
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .badges. WHERE user_id =").
		WillReturnRows(badgeRow(8, 2, BadgePeaceMaker, 0, 3))
	mock.ExpectExec("UPDATE .badges. SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// The reporter is told their ticket was handled
	mock.ExpectExec("INSERT INTO .notifications.").
		WillReturnResult(sqlmock.NewResult(10, 1))

	ticket, err := ResolveTicket(db, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveTicket_AlreadyResolved(t *testing.T) {
	db, mock := newTestDB(t)

	// A second resolve reads the row and stops: no update, no badge, no
	// notification
	mock.ExpectQuery("SELECT \\* FROM .support_tickets.").
		WillReturnRows(ticketRow(3, 6, domain.TicketStatusResolved))

	ticket, err := ResolveTicket(db, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveTicket_NotFound(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM .support_tickets.").
		WillReturnRows(sqlmock.NewRows(ticketColumns))

	_, err := ResolveTicket(db, 99, 2)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTicket(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec("INSERT INTO .support_tickets.").
		WillReturnResult(sqlmock.NewResult(3, 1))

	ticket, err := CreateTicket(db, 6, "Noisy neighbour", "Renovation drilling past 10pm")
	require.NoError(t, err)
	assert.Equal(t, uint(3), ticket.ID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
