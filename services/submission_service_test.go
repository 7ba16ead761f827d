package services

import (
	"os"
	"path/filepath"
	"testing"

	"kpi-management-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrGetRejectsInvalidMonth(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewSubmissionService(db)
	user := &models.User{UserID: 1, Role: models.RoleFaculty}

	for _, month := range []int{0, 13, -1} {
		_, err := svc.CreateOrGet(user, 1, month, 2026, nil)
		require.Error(t, err)
		assert.True(t, IsGuardViolation(err))
	}
}

func TestCreateOrGetRejectsWrongRoleOwner(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSubmissionService(db)

	mock.ExpectQuery("SELECT (.+) FROM `sub_parameters`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"sub_parameter_id", "main_parameter_id", "name", "max_points", "approval_routing", "is_active"}).
			AddRow(5, 2, "Publications", 10, models.RoutingHOD, true))
	mock.ExpectQuery("SELECT (.+) FROM `main_parameters`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"main_parameter_id", "name", "role_owner", "is_active"}).
			AddRow(2, "Research", models.RoleOwnerHOD, true))

	faculty := &models.User{UserID: 1, Role: models.RoleFaculty}
	_, err := svc.CreateOrGet(faculty, 5, 3, 2026, nil)
	require.Error(t, err)
	assert.True(t, IsGuardViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetReturnsExistingWithoutInsert(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSubmissionService(db)

	mock.ExpectQuery("SELECT (.+) FROM `sub_parameters`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"sub_parameter_id", "main_parameter_id", "name", "max_points", "approval_routing", "is_active"}).
			AddRow(5, 2, "Publications", 10, models.RoutingHOD, true))
	mock.ExpectQuery("SELECT (.+) FROM `main_parameters`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"main_parameter_id", "name", "role_owner", "is_active"}).
			AddRow(2, "Research", models.RoleOwnerFaculty, true))

	// The period lookup finds the earlier draft, so no INSERT is expected.
	mock.ExpectQuery("SELECT (.+) FROM `submissions`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"submission_id", "user_id", "sub_parameter_id", "month", "year", "status"}).
			AddRow(77, 1, 5, 3, 2026, models.StatusDraft))

	faculty := &models.User{UserID: 1, Role: models.RoleFaculty}
	submission, err := svc.CreateOrGet(faculty, 5, 3, 2026, nil)
	require.NoError(t, err)

	assert.Equal(t, 77, submission.SubmissionID)
	assert.Equal(t, models.StatusDraft, submission.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubmissionRemovesRowsAndStoredFiles(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSubmissionService(db)

	storedPath := filepath.Join(t.TempDir(), "proof.pdf")
	require.NoError(t, os.WriteFile(storedPath, []byte("attachment"), 0o644))

	mock.ExpectQuery("SELECT (.+) FROM `submissions`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"submission_id", "user_id", "sub_parameter_id", "month", "year", "status"}).
			AddRow(77, 1, 5, 3, 2026, models.StatusDraft))
	mock.ExpectQuery("SELECT (.+) FROM `attachments`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"attachment_id", "submission_id", "stored_path"}).
			AddRow(9, 77, storedPath))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `submission_field_values`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `attachments`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `submissions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `activity_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	owner := &models.User{UserID: 1, Role: models.RoleFaculty}
	require.NoError(t, svc.DeleteSubmission(77, owner, nil))

	// Row and physical file go together.
	_, err := os.Stat(storedPath)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubmissionOnlyDrafts(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSubmissionService(db)

	mock.ExpectQuery("SELECT (.+) FROM `submissions`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"submission_id", "user_id", "sub_parameter_id", "month", "year", "status"}).
			AddRow(77, 1, 5, 3, 2026, models.StatusSubmitted))

	owner := &models.User{UserID: 1, Role: models.RoleFaculty}
	err := svc.DeleteSubmission(77, owner, nil)
	require.Error(t, err)
	assert.True(t, IsGuardViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubmissionOnlyOwner(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSubmissionService(db)

	mock.ExpectQuery("SELECT (.+) FROM `submissions`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"submission_id", "user_id", "sub_parameter_id", "month", "year", "status"}).
			AddRow(77, 2, 5, 3, 2026, models.StatusDraft))

	intruder := &models.User{UserID: 1, Role: models.RoleFaculty}
	err := svc.DeleteSubmission(77, intruder, nil)
	require.Error(t, err)
	assert.True(t, IsGuardViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
