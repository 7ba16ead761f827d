package services

import (
	"encoding/json"

	"kpi-management-api/models"

	"gorm.io/gorm"
)

// ClientMeta carries request attribution threaded explicitly through workflow
// calls instead of being read from ambient request state.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// logActivity appends one audit row inside the caller's transaction so the
// audit trail commits atomically with the mutation it describes.
func logActivity(tx *gorm.DB, actorID int, action, targetModel string, targetID int, description, comment string, metadata map[string]interface{}, client *ClientMeta) error {
	entry := models.ActivityLog{
		ActorID:     actorID,
		Action:      action,
		TargetModel: targetModel,
		TargetID:    targetID,
		Description: description,
		Comment:     comment,
	}

	if len(metadata) > 0 {
		if serialized, err := json.Marshal(metadata); err == nil {
			raw := string(serialized)
			entry.Metadata = &raw
		}
	}

	if client != nil {
		entry.IPAddress = client.IPAddress
		if client.UserAgent != "" {
			ua := client.UserAgent
			entry.UserAgent = &ua
		}
	}

	return tx.Create(&entry).Error
}
