package models

import "time"

type Notification struct {
	NotificationID      int        `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	RecipientID         int        `gorm:"column:recipient_id" json:"recipient_id"`
	Title               string     `gorm:"column:title" json:"title"`
	Message             string     `gorm:"column:message" json:"message"`
	Link                string     `gorm:"column:link" json:"link,omitempty"`
	Type                string     `gorm:"column:type" json:"type"` // info|success|warning|error
	RelatedSubmissionID *int       `gorm:"column:related_submission_id" json:"related_submission_id,omitempty"`
	IsRead              bool       `gorm:"column:is_read" json:"is_read"`
	ReadAt              *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt           time.Time  `gorm:"column:created_at" json:"created_at"`

	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (Notification) TableName() string { return "notifications" }
