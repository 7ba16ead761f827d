package models

import "time"

// Review is an append-only audit record of one reviewer action on a
// submission. Rows are never mutated after creation.
type Review struct {
	ReviewID       int       `gorm:"primaryKey;column:review_id" json:"review_id"`
	SubmissionID   int       `gorm:"column:submission_id" json:"submission_id"`
	ReviewerID     int       `gorm:"column:reviewer_id" json:"reviewer_id"`
	Action         string    `gorm:"column:action" json:"action"` // APPROVED|REJECTED|NEEDS_REVISION
	AwardedPoints  float64   `gorm:"column:awarded_points" json:"awarded_points"`
	Comment        string    `gorm:"column:comment" json:"comment,omitempty"`
	PreviousStatus string    `gorm:"column:previous_status" json:"previous_status"`
	NewStatus      string    `gorm:"column:new_status" json:"new_status"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// DeanApproval captures the Dean's bulk sign-off for one faculty and period,
// snapshotting the total points at approval time. Re-approval upserts the row.
type DeanApproval struct {
	DeanApprovalID int       `gorm:"primaryKey;column:dean_approval_id" json:"dean_approval_id"`
	FacultyID      int       `gorm:"column:faculty_id;uniqueIndex:uniq_dean_approval_period" json:"faculty_id"`
	Month          int       `gorm:"column:month;uniqueIndex:uniq_dean_approval_period" json:"month"`
	Year           int       `gorm:"column:year;uniqueIndex:uniq_dean_approval_period" json:"year"`
	DeanID         int       `gorm:"column:dean_id" json:"dean_id"`
	TotalPoints    float64   `gorm:"column:total_points" json:"total_points"`
	Comment        string    `gorm:"column:comment" json:"comment,omitempty"`
	IsApproved     bool      `gorm:"column:is_approved" json:"is_approved"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`

	Faculty *User `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
	Dean    *User `gorm:"foreignKey:DeanID" json:"dean,omitempty"`
}

// TableName overrides
func (Review) TableName() string {
	return "reviews"
}

func (DeanApproval) TableName() string {
	return "dean_approvals"
}
