package models

import "time"

// ActivityLog is the write-only audit trail of workflow actions.
type ActivityLog struct {
	LogID       int       `gorm:"primaryKey;column:log_id" json:"log_id"`
	ActorID     int       `gorm:"column:actor_id" json:"actor_id"`
	Action      string    `gorm:"column:action" json:"action"`
	TargetModel string    `gorm:"column:target_model" json:"target_model"`
	TargetID    int       `gorm:"column:target_id" json:"target_id"`
	Description string    `gorm:"column:description" json:"description"`
	Comment     string    `gorm:"column:comment" json:"comment,omitempty"`
	Metadata    *string   `gorm:"column:metadata" json:"metadata,omitempty"`
	IPAddress   string    `gorm:"column:ip_address" json:"ip_address,omitempty"`
	UserAgent   *string   `gorm:"column:user_agent" json:"user_agent,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
