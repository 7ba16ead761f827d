package services

import (
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportUsersCSVMissingColumnFails(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewImportService(db)

	csv := "email,role\nx@university.edu,FACULTY\n"
	_, err := svc.ImportUsersCSV(strings.NewReader(csv), "changeme123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "full_name")
}

func TestImportUsersCSVSkipsBadRows(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewImportService(db)

	// Row 2 is created; rows 3-5 are skipped without aborting the batch.
	mock.ExpectQuery("SELECT count(.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// Duplicate email row only reaches the existence check.
	mock.ExpectQuery("SELECT count(.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	csv := strings.Join([]string{
		"email,full_name,role",
		"new@university.edu,New Person,FACULTY",
		"not-an-email,Bad Email,FACULTY",
		"who@university.edu,Bad Role,WIZARD",
		"dup@university.edu,Already Here,HOD",
	}, "\n")

	result, err := svc.ImportUsersCSV(strings.NewReader(csv), "changeme123")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "invalid email")
	assert.Contains(t, result.Errors[1], "unknown role")
	assert.Contains(t, result.Errors[2], "already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}
