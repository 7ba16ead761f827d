package models

import "time"

// DynamicFormTemplate is the optional variable-shape form attached to one
// sub-parameter.
type DynamicFormTemplate struct {
	TemplateID     int       `gorm:"primaryKey;column:template_id" json:"template_id"`
	SubParameterID int       `gorm:"column:sub_parameter_id;unique" json:"sub_parameter_id"`
	Instructions   string    `gorm:"column:instructions" json:"instructions,omitempty"`
	IsActive       bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`

	SubParameter *SubParameter  `gorm:"foreignKey:SubParameterID" json:"sub_parameter,omitempty"`
	Fields       []DynamicField `gorm:"foreignKey:TemplateID" json:"fields,omitempty"`
}

// DynamicField is a single field definition inside a form template.
// Choices holds a JSON array for select/multiselect kinds; a value that does
// not parse as JSON is a configuration error, not a user input error.
type DynamicField struct {
	FieldID      int      `gorm:"primaryKey;column:field_id" json:"field_id"`
	TemplateID   int      `gorm:"column:template_id;uniqueIndex:uniq_template_field_name" json:"template_id"`
	Name         string   `gorm:"column:name;uniqueIndex:uniq_template_field_name" json:"name"`
	Label        string   `gorm:"column:label" json:"label"`
	FieldType    string   `gorm:"column:field_type" json:"field_type"`
	HelpText     string   `gorm:"column:help_text" json:"help_text,omitempty"`
	Placeholder  string   `gorm:"column:placeholder" json:"placeholder,omitempty"`
	IsRequired   bool     `gorm:"column:is_required" json:"is_required"`
	DisplayOrder int      `gorm:"column:display_order" json:"display_order"`
	IsActive     bool     `gorm:"column:is_active" json:"is_active"`
	Choices      string   `gorm:"column:choices" json:"choices,omitempty"`
	MinValue     *float64 `gorm:"column:min_value" json:"min_value,omitempty"`
	MaxValue     *float64 `gorm:"column:max_value" json:"max_value,omitempty"`
	Pattern      string   `gorm:"column:pattern" json:"pattern,omitempty"`
	MaxLength    *int     `gorm:"column:max_length" json:"max_length,omitempty"`
	MaxFiles     int      `gorm:"column:max_files" json:"max_files"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides
func (DynamicFormTemplate) TableName() string {
	return "dynamic_form_templates"
}

func (DynamicField) TableName() string {
	return "dynamic_fields"
}

// IsFileKind reports whether the field stores attachments rather than a
// scalar value.
func (f *DynamicField) IsFileKind() bool {
	return f.FieldType == FieldFile || f.FieldType == FieldMultiFile
}
