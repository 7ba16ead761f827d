package services

import (
	"time"

	"kpi-management-api/config"
	"kpi-management-api/models"

	"gorm.io/gorm"
)

// CutoffService resolves the deadline window applicable to a period and
// department. The cutoff table is read-only from the workflow's perspective.
type CutoffService struct {
	db *gorm.DB
}

func NewCutoffService(db *gorm.DB) *CutoffService {
	if db == nil {
		db = config.DB
	}
	return &CutoffService{db: db}
}

// ResolveWindow picks the active window for (month, year) whose department
// scope is either empty (applies to all) or includes the given department.
// Duplicate windows for one period are resolved deterministically by lowest
// id. Returns nil when no window applies.
func (s *CutoffService) ResolveWindow(month, year int, departmentID *int) (*models.CutoffWindow, error) {
	var windows []models.CutoffWindow
	err := s.db.
		Preload("Departments").
		Where("month = ? AND year = ? AND is_active = ?", month, year, true).
		Order("cutoff_window_id ASC").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}

	for i := range windows {
		window := &windows[i]
		if len(window.Departments) == 0 {
			return window, nil
		}
		if departmentID == nil {
			continue
		}
		for _, dept := range window.Departments {
			if dept.DepartmentID == *departmentID {
				return window, nil
			}
		}
	}
	return nil, nil
}

// CheckDeadline reports whether now is within the deadline relevant to the
// given role, along with the deadline field consulted. A nil window or a nil
// deadline means no deadline applies. Comparison is done in UTC so stored
// naive timestamps and aware ones compare consistently.
func CheckDeadline(window *models.CutoffWindow, role string, now time.Time) (bool, string) {
	if window == nil {
		return true, ""
	}

	deadline, fieldName := window.DeadlineForRole(role)
	if fieldName == "" {
		// Roles without a dedicated deadline are gated closed; admins get
		// through via can_override_deadlines, not via a missing deadline.
		return false, ""
	}
	if deadline == nil {
		return true, fieldName
	}

	return !now.UTC().After(deadline.UTC()), fieldName
}

// deadlinePassed applies the full gate for one actor: users flagged with
// can_override_deadlines bypass the check entirely.
func deadlinePassed(window *models.CutoffWindow, actor *models.User, now time.Time) bool {
	if actor.CanOverrideDeadlines {
		return false
	}
	within, _ := CheckDeadline(window, actor.Role, now)
	return !within
}
