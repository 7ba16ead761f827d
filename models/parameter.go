package models

import "time"

// MainParameter is a top-level KPI category carrying a scoring weight.
type MainParameter struct {
	MainParameterID int       `gorm:"primaryKey;column:main_parameter_id" json:"main_parameter_id"`
	Name            string    `gorm:"column:name;unique" json:"name"`
	Description     string    `gorm:"column:description" json:"description,omitempty"`
	Weightage       float64   `gorm:"column:weightage" json:"weightage"`
	RoleOwner       string    `gorm:"column:role_owner" json:"role_owner"` // FACULTY|HOD
	IsActive        bool      `gorm:"column:is_active" json:"is_active"`
	DisplayOrder    int       `gorm:"column:display_order" json:"display_order"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`

	SubParameters []SubParameter `gorm:"foreignKey:MainParameterID" json:"sub_parameters,omitempty"`
}

// SubParameter is a concrete scorable item with a points ceiling.
type SubParameter struct {
	SubParameterID     int       `gorm:"primaryKey;column:sub_parameter_id" json:"sub_parameter_id"`
	MainParameterID    int       `gorm:"column:main_parameter_id" json:"main_parameter_id"`
	Name               string    `gorm:"column:name" json:"name"`
	Description        string    `gorm:"column:description" json:"description,omitempty"`
	MaxPoints          int       `gorm:"column:max_points" json:"max_points"`
	ApprovalRouting    string    `gorm:"column:approval_routing" json:"approval_routing"` // HOD|OTHER
	OtherApproverEmail *string   `gorm:"column:other_approver_email" json:"other_approver_email,omitempty"`
	IsActive           bool      `gorm:"column:is_active" json:"is_active"`
	DisplayOrder       int       `gorm:"column:display_order" json:"display_order"`
	CreatedAt          time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at" json:"updated_at"`

	MainParameter *MainParameter `gorm:"foreignKey:MainParameterID" json:"main_parameter,omitempty"`
}

// HodSubParamMapping links one HoD sub-parameter to one Faculty sub-parameter
// for team average scoring.
type HodSubParamMapping struct {
	MappingID         int       `gorm:"primaryKey;column:mapping_id" json:"mapping_id"`
	HodSubParamID     int       `gorm:"column:hod_subparam_id" json:"hod_subparam_id"`
	FacultySubParamID int       `gorm:"column:faculty_subparam_id" json:"faculty_subparam_id"`
	Aggregation       string    `gorm:"column:aggregation" json:"aggregation"` // AVERAGE
	IsActive          bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at" json:"updated_at"`

	HodSubParam     *SubParameter `gorm:"foreignKey:HodSubParamID" json:"hod_subparam,omitempty"`
	FacultySubParam *SubParameter `gorm:"foreignKey:FacultySubParamID" json:"faculty_subparam,omitempty"`
}

// SubParameterWindow enables or disables a sub-parameter for one cutoff window.
type SubParameterWindow struct {
	SubParameterWindowID int  `gorm:"primaryKey;column:sub_parameter_window_id" json:"sub_parameter_window_id"`
	SubParameterID       int  `gorm:"column:sub_parameter_id" json:"sub_parameter_id"`
	CutoffWindowID       int  `gorm:"column:cutoff_window_id" json:"cutoff_window_id"`
	IsEnabled            bool `gorm:"column:is_enabled" json:"is_enabled"`

	SubParameter *SubParameter `gorm:"foreignKey:SubParameterID" json:"sub_parameter,omitempty"`
	CutoffWindow *CutoffWindow `gorm:"foreignKey:CutoffWindowID" json:"cutoff_window,omitempty"`
}

// TableName overrides
func (MainParameter) TableName() string {
	return "main_parameters"
}

func (SubParameter) TableName() string {
	return "sub_parameters"
}

func (HodSubParamMapping) TableName() string {
	return "hod_subparam_mappings"
}

func (SubParameterWindow) TableName() string {
	return "sub_parameter_windows"
}
