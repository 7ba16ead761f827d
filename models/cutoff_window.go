package models

import "time"

// CutoffWindow holds the per-period deadlines for submission and approval.
// An empty department scope means the window applies to all departments.
type CutoffWindow struct {
	CutoffWindowID        int        `gorm:"primaryKey;column:cutoff_window_id" json:"cutoff_window_id"`
	Month                 int        `gorm:"column:month" json:"month"`
	Year                  int        `gorm:"column:year" json:"year"`
	FacultySubmitDeadline *time.Time `gorm:"column:faculty_submit_deadline" json:"faculty_submit_deadline,omitempty"`
	HodApproveDeadline    *time.Time `gorm:"column:hod_approve_deadline" json:"hod_approve_deadline,omitempty"`
	DeanApproveDeadline   *time.Time `gorm:"column:dean_approve_deadline" json:"dean_approve_deadline,omitempty"`
	IsActive              bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Departments []Department `gorm:"many2many:cutoff_window_departments;foreignKey:CutoffWindowID;joinForeignKey:cutoff_window_id;references:DepartmentID;joinReferences:department_id" json:"departments,omitempty"`
}

func (CutoffWindow) TableName() string {
	return "cutoff_windows"
}

// DeadlineForRole returns the deadline relevant to the given role together
// with its field name. Unknown roles have no deadline of their own.
func (w *CutoffWindow) DeadlineForRole(role string) (*time.Time, string) {
	switch role {
	case RoleFaculty:
		return w.FacultySubmitDeadline, "faculty_submit_deadline"
	case RoleHOD:
		return w.HodApproveDeadline, "hod_approve_deadline"
	case RoleDean:
		return w.DeanApproveDeadline, "dean_approve_deadline"
	}
	return nil, ""
}
