package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"orgstructure/internal/apperror"
)

func newMockDB(t *testing.T, dialect string) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	var dialector gorm.Dialector
	switch dialect {
	case "postgres":
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	case "mysql":
		dialector = mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true})
	default:
		t.Fatalf("unknown dialect %s", dialect)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return conn, mock
}

func TestLockTreePostgresTakesAdvisoryLock(t *testing.T) {
	conn, mock := newMockDB(t, "postgres")
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(treeLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, New(conn).Transaction(ctx, func(tx *Store) error {
		return tx.LockTree(ctx)
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTreeMySQLLocksDepartmentRows(t *testing.T) {
	conn, mock := newMockDB(t, "mysql")
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .*id.* FROM `departments` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	require.NoError(t, New(conn).Transaction(ctx, func(tx *Store) error {
		return tx.LockTree(ctx)
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTreeOutsideTransactionIsNoop(t *testing.T) {
	conn, mock := newMockDB(t, "postgres")

	require.NoError(t, New(conn).LockTree(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTreeDeadlockIsConflict(t *testing.T) {
	conn, mock := newMockDB(t, "mysql")
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnError(&mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()

	err := New(conn).Transaction(ctx, func(tx *Store) error {
		return tx.LockTree(ctx)
	})
	require.Equal(t, apperror.CodeConflict, apperror.GetCode(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncSequencesPostgres(t *testing.T) {
	conn, mock := newMockDB(t, "postgres")

	for _, table := range []string{"departments", "employees"} {
		mock.ExpectExec(`SELECT setval\(pg_get_serial_sequence\(\$1, 'id'\)`).
			WithArgs(table).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, New(conn).SyncSequences(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
