package services

import (
	"testing"

	"kpi-management-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAwardedPoints(t *testing.T) {
	assert.NoError(t, validateAwardedPoints(0, 10))
	assert.NoError(t, validateAwardedPoints(7.5, 10))

	// The ceiling itself is a valid award.
	assert.NoError(t, validateAwardedPoints(10, 10))

	err := validateAwardedPoints(-0.5, 10)
	assert.Error(t, err)
	assert.True(t, IsGuardViolation(err))

	err = validateAwardedPoints(10.01, 10)
	assert.Error(t, err)
	assert.True(t, IsGuardViolation(err))
	assert.Contains(t, err.Error(), "cannot exceed 10")
}

func TestCanFirstLineReviewHodRouting(t *testing.T) {
	dept := 3
	otherDept := 4
	subParam := &models.SubParameter{ApprovalRouting: models.RoutingHOD}
	owner := &models.User{UserID: 1, Role: models.RoleFaculty, DepartmentID: &dept}

	hod := &models.User{UserID: 2, Role: models.RoleHOD, DepartmentID: &dept}
	assert.NoError(t, canFirstLineReview(hod, owner, subParam))

	foreignHod := &models.User{UserID: 3, Role: models.RoleHOD, DepartmentID: &otherDept}
	err := canFirstLineReview(foreignHod, owner, subParam)
	assert.Error(t, err)
	assert.True(t, IsGuardViolation(err))

	faculty := &models.User{UserID: 4, Role: models.RoleFaculty, DepartmentID: &dept}
	err = canFirstLineReview(faculty, owner, subParam)
	assert.Error(t, err)
	assert.True(t, IsGuardViolation(err))
}

func TestCanFirstLineReviewOtherRouting(t *testing.T) {
	email := "qa.director@university.edu"
	subParam := &models.SubParameter{ApprovalRouting: models.RoutingOther, OtherApproverEmail: &email}
	owner := &models.User{UserID: 1, Role: models.RoleFaculty}

	designated := &models.User{UserID: 5, Role: models.RoleFaculty, Email: email}
	assert.NoError(t, canFirstLineReview(designated, owner, subParam))

	someoneElse := &models.User{UserID: 6, Role: models.RoleHOD, Email: "other@university.edu"}
	err := canFirstLineReview(someoneElse, owner, subParam)
	assert.Error(t, err)
	assert.True(t, IsGuardViolation(err))
}

func TestCanFirstLineReviewAdminBypass(t *testing.T) {
	dept := 3
	subParam := &models.SubParameter{ApprovalRouting: models.RoutingHOD}
	owner := &models.User{UserID: 1, Role: models.RoleFaculty, DepartmentID: &dept}

	admin := &models.User{UserID: 9, Role: models.RoleAdmin}
	assert.NoError(t, canFirstLineReview(admin, owner, subParam))
}

func deanBulkFixture(mock sqlmock.Sqlmock, points ...float64) {
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"user_id", "full_name", "role", "department_id", "is_active"}).
			AddRow(1, "Faculty Member", models.RoleFaculty, 3, true))
	mock.ExpectQuery("SELECT count(.+) FROM `dean_departments`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows(
		[]string{"submission_id", "user_id", "sub_parameter_id", "month", "year", "status", "awarded_points"})
	for i, p := range points {
		rows.AddRow(100+i, 1, 5+i, 3, 2026, models.StatusHodApproved, p)
	}
	mock.ExpectQuery("SELECT (.+) FROM `submissions`").WillReturnRows(rows)
}

func TestDeanBulkApproveSumsPoints(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReviewService(db)

	deanBulkFixture(mock, 4, 6)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `dean_approvals`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `submissions`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO `activity_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	dean := &models.User{UserID: 9, Role: models.RoleDean}
	approval, err := svc.DeanBulkApprove(1, 3, 2026, dean, "looks good", nil)
	require.NoError(t, err)

	assert.Equal(t, 10.0, approval.TotalPoints)
	assert.True(t, approval.IsApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeanBulkApproveRollsBackOnPartialBatch(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReviewService(db)

	// Two submissions loaded, but only one still matches at update time
	// because a concurrent actor changed the other. Nothing must apply.
	deanBulkFixture(mock, 4, 6)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `dean_approvals`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `submissions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	dean := &models.User{UserID: 9, Role: models.RoleDean}
	_, err := svc.DeanBulkApprove(1, 3, 2026, dean, "", nil)
	require.Error(t, err)
	assert.True(t, IsGuardViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeanBulkApproveRequiresEligibleRows(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewReviewService(db)

	// No HOD_APPROVED rows for the period: guard fires before any transaction.
	deanBulkFixture(mock)

	dean := &models.User{UserID: 9, Role: models.RoleDean}
	_, err := svc.DeanBulkApprove(1, 3, 2026, dean, "", nil)
	require.Error(t, err)
	assert.True(t, IsGuardViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionStateGuards(t *testing.T) {
	draft := &models.Submission{Status: models.StatusDraft}
	assert.True(t, draft.CanEdit())
	assert.True(t, draft.CanSubmit())
	assert.False(t, draft.CanReview())
	assert.False(t, draft.IsTerminal())

	revision := &models.Submission{Status: models.StatusNeedsRevision}
	assert.True(t, revision.CanEdit())
	assert.True(t, revision.CanSubmit())

	submitted := &models.Submission{Status: models.StatusSubmitted}
	assert.False(t, submitted.CanEdit())
	assert.True(t, submitted.CanReview())

	hodApproved := &models.Submission{Status: models.StatusHodApproved}
	assert.False(t, hodApproved.CanEdit())
	assert.False(t, hodApproved.CanReview())
	assert.False(t, hodApproved.IsTerminal())

	rejected := &models.Submission{Status: models.StatusRejected}
	assert.True(t, rejected.IsTerminal())

	deanApproved := &models.Submission{Status: models.StatusDeanApproved}
	assert.True(t, deanApproved.IsTerminal())
}
