package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB wires a gorm connection over sqlmock for DB-path tests.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func TestUnreadCount(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT count(.+) FROM `notifications`").
		WithArgs(42, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	svc := NewNotificationService(db)
	count, err := svc.UnreadCount(42)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadOnlyRecipientRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `notifications`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewNotificationService(db)
	require.NoError(t, svc.MarkRead(7, 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadForeignNotificationRejected(t *testing.T) {
	db, mock := newMockDB(t)

	// The recipient filter matches nothing, so no row changes.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `notifications`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	svc := NewNotificationService(db)
	err := svc.MarkRead(7, 99)
	require.Error(t, err)
	assert.True(t, IsGuardViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAllReadReportsUpdatedRows(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `notifications`").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	svc := NewNotificationService(db)
	updated, err := svc.MarkAllRead(42)
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
