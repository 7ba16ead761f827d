package models

import "time"

// Submission is one user's KPI entry against one sub-parameter for one
// (month, year) period. At most one row exists per (user, sub_parameter,
// month, year).
type Submission struct {
	SubmissionID   int     `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	UserID         int     `gorm:"column:user_id;uniqueIndex:uniq_submission_period" json:"user_id"`
	SubParameterID int     `gorm:"column:sub_parameter_id;uniqueIndex:uniq_submission_period" json:"sub_parameter_id"`
	Month          int     `gorm:"column:month;uniqueIndex:uniq_submission_period" json:"month"`
	Year           int     `gorm:"column:year;uniqueIndex:uniq_submission_period" json:"year"`
	Status         string  `gorm:"column:status" json:"status"`
	AwardedPoints  float64 `gorm:"column:awarded_points" json:"awarded_points"`
	ReviewerID     *int    `gorm:"column:reviewer_id" json:"reviewer_id,omitempty"`
	ReviewComment  string  `gorm:"column:review_comment" json:"review_comment,omitempty"`

	SubmittedAt *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`

	DeanApproved   bool       `gorm:"column:dean_approved" json:"dean_approved"`
	DeanApproverID *int       `gorm:"column:dean_approver_id" json:"dean_approver_id,omitempty"`
	DeanApprovedAt *time.Time `gorm:"column:dean_approved_at" json:"dean_approved_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	User         *User                  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SubParameter *SubParameter          `gorm:"foreignKey:SubParameterID" json:"sub_parameter,omitempty"`
	Reviewer     *User                  `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	DeanApprover *User                  `gorm:"foreignKey:DeanApproverID" json:"dean_approver,omitempty"`
	FieldValues  []SubmissionFieldValue `gorm:"foreignKey:SubmissionID" json:"field_values,omitempty"`
	Attachments  []Attachment           `gorm:"foreignKey:SubmissionID" json:"attachments,omitempty"`
}

// SubmissionFieldValue stores one dynamic field's value, caching the field
// name so historical values survive template edits.
type SubmissionFieldValue struct {
	ValueID      int       `gorm:"primaryKey;column:value_id" json:"value_id"`
	SubmissionID int       `gorm:"column:submission_id;uniqueIndex:uniq_submission_field" json:"submission_id"`
	FieldID      int       `gorm:"column:field_id;uniqueIndex:uniq_submission_field" json:"field_id"`
	FieldName    string    `gorm:"column:field_name" json:"field_name"`
	Value        string    `gorm:"column:value" json:"value"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`

	Field *DynamicField `gorm:"foreignKey:FieldID" json:"field,omitempty"`
}

// Attachment holds file metadata for a submission. The physical file lives
// under the upload directory at StoredPath; row and file are removed together.
type Attachment struct {
	AttachmentID int       `gorm:"primaryKey;column:attachment_id" json:"attachment_id"`
	SubmissionID int       `gorm:"column:submission_id" json:"submission_id"`
	FieldID      *int      `gorm:"column:field_id" json:"field_id,omitempty"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StoredPath   string    `gorm:"column:stored_path" json:"stored_path"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	ContentType  string    `gorm:"column:content_type" json:"content_type"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Field *DynamicField `gorm:"foreignKey:FieldID" json:"field,omitempty"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (SubmissionFieldValue) TableName() string {
	return "submission_field_values"
}

func (Attachment) TableName() string {
	return "attachments"
}

// CanEdit reports whether the owner may still change field values.
func (s *Submission) CanEdit() bool {
	return s.Status == StatusDraft || s.Status == StatusNeedsRevision
}

// CanSubmit reports whether the submission may move to SUBMITTED. Revision
// requests go back through the same transition after editing.
func (s *Submission) CanSubmit() bool {
	return s.Status == StatusDraft || s.Status == StatusNeedsRevision
}

// CanReview reports whether a first-line reviewer may act on it.
func (s *Submission) CanReview() bool {
	return s.Status == StatusSubmitted
}

// IsTerminal reports whether no further transition is possible.
func (s *Submission) IsTerminal() bool {
	return s.Status == StatusRejected || s.Status == StatusDeanApproved
}
