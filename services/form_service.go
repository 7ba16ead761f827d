package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"kpi-management-api/config"
	"kpi-management-api/models"

	"gorm.io/gorm"
)

// FormService loads dynamic form templates and validates raw values against
// their field definitions. Validation itself is pure: user input problems come
// back as (false, message), never as an error. Errors are reserved for
// structural misconfiguration such as malformed choices JSON.
type FormService struct {
	db *gorm.DB
}

func NewFormService(db *gorm.DB) *FormService {
	if db == nil {
		db = config.DB
	}
	return &FormService{db: db}
}

// GetTemplate returns the active form template for a sub-parameter with its
// active fields in display order, or nil when the sub-parameter has none.
func (s *FormService) GetTemplate(subParameterID int) (*models.DynamicFormTemplate, error) {
	var template models.DynamicFormTemplate
	err := s.db.
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("display_order ASC, field_id ASC")
		}).
		Where("sub_parameter_id = ? AND is_active = ?", subParameterID, true).
		First(&template).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// RequireTemplate is GetTemplate but treats a missing template as a
// configuration error, for callers that cannot proceed without one.
func (s *FormService) RequireTemplate(subParameterID int) (*models.DynamicFormTemplate, error) {
	template, err := s.GetTemplate(subParameterID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, configurationError(fmt.Sprintf("no form template defined for sub-parameter %d", subParameterID))
	}
	return template, nil
}

type fieldValidator func(field *models.DynamicField, value string) (bool, string, error)

// One validator per field kind, resolved through a single dispatch table.
var fieldValidators = map[string]fieldValidator{
	models.FieldText:        validateTextValue,
	models.FieldTextarea:    validateTextValue,
	models.FieldNumber:      validateNumberValue,
	models.FieldPercentage:  validateNumberValue,
	models.FieldDate:        validateNothing,
	models.FieldURL:         validateURLValue,
	models.FieldSelect:      validateSelectValue,
	models.FieldMultiSelect: validateMultiSelectValue,
	models.FieldFile:        validateNothing, // presence handled by the caller
	models.FieldMultiFile:   validateNothing,
}

// ValidateFieldValue checks a raw value against one field definition.
// Returns (false, message, nil) for invalid user input and a non-nil error
// only for misconfigured field definitions.
func ValidateFieldValue(field *models.DynamicField, value string) (bool, string, error) {
	if field.IsRequired && strings.TrimSpace(value) == "" {
		return false, fmt.Sprintf("%s is required", field.Label), nil
	}
	if strings.TrimSpace(value) == "" {
		return true, "", nil
	}

	validate, ok := fieldValidators[field.FieldType]
	if !ok {
		return false, "", configurationError(fmt.Sprintf("unknown field type %q for field %s", field.FieldType, field.Name))
	}
	return validate(field, value)
}

func validateNothing(_ *models.DynamicField, _ string) (bool, string, error) {
	return true, "", nil
}

func validateTextValue(field *models.DynamicField, value string) (bool, string, error) {
	if field.MaxLength != nil && len(value) > *field.MaxLength {
		return false, fmt.Sprintf("%s must be at most %d characters", field.Label, *field.MaxLength), nil
	}
	if field.Pattern != "" {
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return false, "", configurationError(fmt.Sprintf("invalid pattern for field %s: %v", field.Name, err))
		}
		if !re.MatchString(value) {
			return false, fmt.Sprintf("%s has an invalid format", field.Label), nil
		}
	}
	return true, "", nil
}

func validateNumberValue(field *models.DynamicField, value string) (bool, string, error) {
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false, fmt.Sprintf("%s must be a valid number", field.Label), nil
	}

	minValue := field.MinValue
	maxValue := field.MaxValue
	if field.FieldType == models.FieldPercentage {
		// Percentages are implicitly bounded [0,100].
		if minValue == nil {
			zero := 0.0
			minValue = &zero
		}
		if maxValue == nil {
			hundred := 100.0
			maxValue = &hundred
		}
	}

	if minValue != nil && num < *minValue {
		return false, fmt.Sprintf("%s must be at least %v", field.Label, *minValue), nil
	}
	if maxValue != nil && num > *maxValue {
		return false, fmt.Sprintf("%s must be at most %v", field.Label, *maxValue), nil
	}
	return true, "", nil
}

func validateURLValue(field *models.DynamicField, value string) (bool, string, error) {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return false, fmt.Sprintf("%s must be a valid URL", field.Label), nil
	}
	return true, "", nil
}

func validateSelectValue(field *models.DynamicField, value string) (bool, string, error) {
	choices, err := choiceKeys(field)
	if err != nil {
		return false, "", err
	}
	for _, choice := range choices {
		if value == choice {
			return true, "", nil
		}
	}
	return false, fmt.Sprintf("%s contains an invalid choice", field.Label), nil
}

func validateMultiSelectValue(field *models.DynamicField, value string) (bool, string, error) {
	choices, err := choiceKeys(field)
	if err != nil {
		return false, "", err
	}

	// Persisted multiselect values are JSON-serialized lists; a bare scalar is
	// treated as a single selection.
	var selected []string
	if err := json.Unmarshal([]byte(value), &selected); err != nil {
		selected = []string{value}
	}

	allowed := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		allowed[choice] = struct{}{}
	}
	for _, item := range selected {
		if _, ok := allowed[item]; !ok {
			return false, fmt.Sprintf("%s contains invalid choices", field.Label), nil
		}
	}
	return true, "", nil
}

// choiceKeys parses the declared choice set of a select/multiselect field.
// Choices are stored as a JSON array of scalars or [value, label] pairs.
func choiceKeys(field *models.DynamicField) ([]string, error) {
	raw := strings.TrimSpace(field.Choices)
	if raw == "" {
		return nil, nil
	}

	var entries []interface{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, configurationError(fmt.Sprintf("malformed choices JSON for field %s: %v", field.Name, err))
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case string:
			keys = append(keys, v)
		case float64:
			keys = append(keys, strconv.FormatFloat(v, 'f', -1, 64))
		case []interface{}:
			if len(v) != 2 {
				return nil, configurationError(fmt.Sprintf("choice pairs for field %s must have exactly 2 elements", field.Name))
			}
			key, ok := v[0].(string)
			if !ok {
				return nil, configurationError(fmt.Sprintf("choice keys for field %s must be strings", field.Name))
			}
			keys = append(keys, key)
		default:
			return nil, configurationError(fmt.Sprintf("unsupported choice entry for field %s", field.Name))
		}
	}
	return keys, nil
}
