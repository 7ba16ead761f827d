package services

import (
	"kpi-management-api/config"
	"kpi-management-api/models"

	"gorm.io/gorm"
)

// KPIService answers which parameters are open for entry in a given window.
type KPIService struct {
	db      *gorm.DB
	cutoffs *CutoffService
}

func NewKPIService(db *gorm.DB) *KPIService {
	if db == nil {
		db = config.DB
	}
	return &KPIService{db: db, cutoffs: NewCutoffService(db)}
}

// EnabledSubParameters returns the active sub-parameters open for the period.
// When the resolved window carries explicit associations, only the enabled
// ones are returned; otherwise all active sub-parameters are.
func (s *KPIService) EnabledSubParameters(month, year int, departmentID *int, roleOwner string) ([]models.SubParameter, error) {
	window, err := s.cutoffs.ResolveWindow(month, year, departmentID)
	if err != nil {
		return nil, err
	}

	query := s.db.
		Preload("MainParameter").
		Joins("JOIN main_parameters mp ON mp.main_parameter_id = sub_parameters.main_parameter_id").
		Where("sub_parameters.is_active = ? AND mp.is_active = ?", true, true).
		Order("mp.display_order ASC, sub_parameters.display_order ASC")

	if roleOwner != "" {
		query = query.Where("mp.role_owner = ?", roleOwner)
	}

	if window != nil {
		var enabledIDs []int
		err := s.db.Model(&models.SubParameterWindow{}).
			Where("cutoff_window_id = ? AND is_enabled = ?", window.CutoffWindowID, true).
			Pluck("sub_parameter_id", &enabledIDs).Error
		if err != nil {
			return nil, err
		}
		if len(enabledIDs) > 0 {
			query = query.Where("sub_parameters.sub_parameter_id IN ?", enabledIDs)
		}
	}

	var subParams []models.SubParameter
	err = query.Find(&subParams).Error
	return subParams, err
}

// ListMainParameters returns active main parameters with their active
// sub-parameters, optionally filtered by role owner.
func (s *KPIService) ListMainParameters(roleOwner string) ([]models.MainParameter, error) {
	query := s.db.
		Preload("SubParameters", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("display_order ASC, sub_parameter_id ASC")
		}).
		Where("is_active = ?", true).
		Order("display_order ASC, name ASC")

	if roleOwner != "" {
		query = query.Where("role_owner = ?", roleOwner)
	}

	var params []models.MainParameter
	err := query.Find(&params).Error
	return params, err
}
