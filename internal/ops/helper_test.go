package ops

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a gorm handle over a sqlmock connection. Implicit
// per-statement transactions are disabled so expectations only see the
// explicit transaction boundaries the operations open themselves.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// walletColumns are the columns returned for wallet row fixtures
var walletColumns = []string{"id", "user_id", "balance", "wallet_limit", "provider_payer_id"}

// walletRow builds a one-wallet result set; limit may be nil
func walletRow(id, userID uint, balance string, limit any) *sqlmock.Rows {
	return sqlmock.NewRows(walletColumns).AddRow(id, userID, balance, limit, nil)
}
