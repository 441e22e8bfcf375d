package ops

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// badgeColumns are the columns returned for badge row fixtures
var badgeColumns = []string{
	"id", "user_id", "badge_type", "name", "description",
	"monthly_counter", "total_counter",
}

func badgeRow(id, userID uint, badgeType string, monthly, total int) *sqlmock.Rows {
	info := badgeCatalog[badgeType]
	return sqlmock.NewRows(badgeColumns).
		AddRow(id, userID, badgeType, info.Name, info.Description, monthly, total)
}

func TestValidBadgeType(t *testing.T) {
	for _, badgeType := range []string{BadgeLocalLobang, BadgeGoodSamaritan, BadgePeaceMaker, BadgeTopContributor} {
		assert.True(t, ValidBadgeType(badgeType), badgeType)
	}
	assert.False(t, ValidBadgeType("EARLY_BIRD"))
	assert.False(t, ValidBadgeType(""))
}

func TestAwardBadge_FirstAward(t *testing.T) {
	db, mock := newTestDB(t)

	// No counter row yet: one is created from the catalog, then bumped
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .badges. WHERE user_id =").
		WillReturnRows(sqlmock.NewRows(badgeColumns))
	mock.ExpectExec("INSERT INTO .badges.").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec("UPDATE .badges. SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	badge, err := AwardBadge(db, 6, BadgeGoodSamaritan)
	require.NoError(t, err)
	assert.Equal(t, uint(4), badge.ID)
	assert.Equal(t, "Good Samaritan", badge.Name)
	assert.Equal(t, 1, badge.MonthlyCounter)
	assert.Equal(t, 1, badge.TotalCounter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardBadge_Increment(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM .badges. WHERE user_id =").
		WillReturnRows(badgeRow(4, 6, BadgeGoodSamaritan, 2, 5))
	mock.ExpectExec("UPDATE .badges. SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	badge, err := AwardBadge(db, 6, BadgeGoodSamaritan)
	require.NoError(t, err)
	assert.Equal(t, 3, badge.MonthlyCounter)
	assert.Equal(t, 6, badge.TotalCounter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardBadge_InvalidType(t *testing.T) {
	db, mock := newTestDB(t)

	// The catalog check fails before any row is touched
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := AwardBadge(db, 6, "EARLY_BIRD")
	assert.ErrorIs(t, err, ErrInvalidBadgeType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLeaderboard_Monthly(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("SELECT badges.user_id AS user_id, users.username AS username, SUM\\(badges.monthly_counter\\) AS score").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "score"}).
			AddRow(3, "amy", 7).
			AddRow(6, "meixin", 4))

	entries, err := GetLeaderboard(db, PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(3), entries[0].UserID)
	assert.Equal(t, 7, entries[0].Score)
	assert.Equal(t, "meixin", entries[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLeaderboard_InvalidPeriod(t *testing.T) {
	db, mock := newTestDB(t)

	_, err := GetLeaderboard(db, "WEEKLY")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetMonthlyCounts_AwardsWinner(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectBegin()
	// Leaderboard is read before anything is cleared
	mock.ExpectQuery("SELECT badges.user_id AS user_id, users.username AS username, SUM\\(badges.monthly_counter\\) AS score").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "score"}).
			AddRow(3, "amy", 7).
			AddRow(6, "meixin", 4))
	// TOP_CONTRIBUTOR for the leader
	mock.ExpectQuery("SELECT \\* FROM .badges. WHERE user_id =").
		WillReturnRows(badgeRow(9, 3, BadgeTopContributor, 0, 2))
	mock.ExpectExec("UPDATE .badges. SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Then every monthly counter is zeroed
	mock.ExpectExec("UPDATE .badges. SET .monthly_counter.=").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	err := ResetMonthlyCounts(db)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetMonthlyCounts_EmptyLeaderboard(t *testing.T) {
	db, mock := newTestDB(t)

	// No qualifying users: no award, counters still zeroed
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT badges.user_id AS user_id, users.username AS username, SUM\\(badges.monthly_counter\\) AS score").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "score"}))
	mock.ExpectExec("UPDATE .badges. SET .monthly_counter.=").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := ResetMonthlyCounts(db)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
