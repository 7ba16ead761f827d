package services

import (
	"testing"
	"time"

	"kpi-management-api/models"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestCheckDeadlineNilWindowAllows(t *testing.T) {
	within, field := CheckDeadline(nil, models.RoleFaculty, time.Now())
	assert.True(t, within)
	assert.Empty(t, field)
}

func TestCheckDeadlineNilDeadlineAllows(t *testing.T) {
	window := &models.CutoffWindow{Month: 1, Year: 2026}

	within, field := CheckDeadline(window, models.RoleFaculty, time.Now())
	assert.True(t, within)
	assert.Equal(t, "faculty_submit_deadline", field)
}

func TestCheckDeadlinePerRole(t *testing.T) {
	deadline := time.Date(2026, 2, 10, 23, 59, 59, 0, time.UTC)
	window := &models.CutoffWindow{
		Month:                 1,
		Year:                  2026,
		FacultySubmitDeadline: timePtr(deadline),
		HodApproveDeadline:    timePtr(deadline.AddDate(0, 0, 5)),
		DeanApproveDeadline:   timePtr(deadline.AddDate(0, 0, 10)),
	}

	// One second before the faculty deadline.
	within, field := CheckDeadline(window, models.RoleFaculty, deadline.Add(-time.Second))
	assert.True(t, within)
	assert.Equal(t, "faculty_submit_deadline", field)

	// Exactly at the deadline is still within.
	within, _ = CheckDeadline(window, models.RoleFaculty, deadline)
	assert.True(t, within)

	// One second after is not.
	within, _ = CheckDeadline(window, models.RoleFaculty, deadline.Add(time.Second))
	assert.False(t, within)

	// HoD and dean deadlines are independent of the faculty one.
	afterFaculty := deadline.AddDate(0, 0, 2)
	within, field = CheckDeadline(window, models.RoleHOD, afterFaculty)
	assert.True(t, within)
	assert.Equal(t, "hod_approve_deadline", field)

	within, field = CheckDeadline(window, models.RoleDean, deadline.AddDate(0, 0, 7))
	assert.True(t, within)
	assert.Equal(t, "dean_approve_deadline", field)

	within, _ = CheckDeadline(window, models.RoleDean, deadline.AddDate(0, 0, 11))
	assert.False(t, within)
}

func TestCheckDeadlineComparesInUTC(t *testing.T) {
	deadline := time.Date(2026, 2, 10, 23, 0, 0, 0, time.UTC)
	window := &models.CutoffWindow{FacultySubmitDeadline: timePtr(deadline)}

	// 22:30 UTC expressed in a +05:00 zone. Wall clock reads past the deadline
	// but the instant is still before it.
	zone := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2026, 2, 11, 3, 30, 0, 0, zone)

	within, _ := CheckDeadline(window, models.RoleFaculty, now)
	assert.True(t, within)
}

func TestCheckDeadlineRoleWithoutDeadline(t *testing.T) {
	deadline := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	window := &models.CutoffWindow{FacultySubmitDeadline: timePtr(deadline)}

	// Roles with no dedicated deadline field are gated closed.
	within, field := CheckDeadline(window, models.RoleAdmin, deadline.AddDate(0, -1, 0))
	assert.False(t, within)
	assert.Empty(t, field)

	// Admins pass the full gate through the override flag instead.
	admin := &models.User{Role: models.RoleAdmin, CanOverrideDeadlines: true}
	assert.False(t, deadlinePassed(window, admin, deadline.AddDate(0, 1, 0)))
}

func TestDeadlinePassedHonorsOverrideFlag(t *testing.T) {
	deadline := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	window := &models.CutoffWindow{FacultySubmitDeadline: timePtr(deadline)}
	late := deadline.AddDate(0, 0, 1)

	regular := &models.User{Role: models.RoleFaculty}
	assert.True(t, deadlinePassed(window, regular, late))

	exempt := &models.User{Role: models.RoleFaculty, CanOverrideDeadlines: true}
	assert.False(t, deadlinePassed(window, exempt, late))
}
