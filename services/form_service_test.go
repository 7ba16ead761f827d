package services

import (
	"testing"

	"kpi-management-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestValidateFieldValueRequired(t *testing.T) {
	field := &models.DynamicField{Name: "title", Label: "Title", FieldType: models.FieldText, IsRequired: true}

	ok, msg, err := ValidateFieldValue(field, "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Title is required", msg)

	ok, msg, err = ValidateFieldValue(field, "   ")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Title is required", msg)
}

func TestValidateFieldValueOptionalEmptyPasses(t *testing.T) {
	field := &models.DynamicField{Name: "notes", Label: "Notes", FieldType: models.FieldTextarea}

	ok, msg, err := ValidateFieldValue(field, "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestValidateFieldValueTextConstraints(t *testing.T) {
	field := &models.DynamicField{
		Name:      "code",
		Label:     "Course Code",
		FieldType: models.FieldText,
		MaxLength: intPtr(6),
		Pattern:   `^[A-Z]{2}\d+$`,
	}

	ok, _, err := ValidateFieldValue(field, "CS101")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, msg, err := ValidateFieldValue(field, "CS10123")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, msg, "at most 6 characters")

	ok, msg, err = ValidateFieldValue(field, "cs101")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, msg, "invalid format")
}

func TestValidateFieldValueBadPatternIsConfigurationError(t *testing.T) {
	field := &models.DynamicField{Name: "code", Label: "Code", FieldType: models.FieldText, Pattern: "["}

	_, _, err := ValidateFieldValue(field, "anything")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestValidateFieldValueNumberBounds(t *testing.T) {
	field := &models.DynamicField{
		Name:      "count",
		Label:     "Count",
		FieldType: models.FieldNumber,
		MinValue:  floatPtr(1),
		MaxValue:  floatPtr(10),
	}

	ok, _, err := ValidateFieldValue(field, "5")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, msg, err := ValidateFieldValue(field, "0")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, msg, "at least")

	ok, msg, err = ValidateFieldValue(field, "11")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, msg, "at most")

	ok, msg, err = ValidateFieldValue(field, "not-a-number")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, msg, "valid number")
}

func TestValidateFieldValuePercentageImplicitBounds(t *testing.T) {
	field := &models.DynamicField{Name: "rate", Label: "Pass Rate", FieldType: models.FieldPercentage}

	ok, _, err := ValidateFieldValue(field, "0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = ValidateFieldValue(field, "100")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = ValidateFieldValue(field, "100.5")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _, err = ValidateFieldValue(field, "-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateFieldValueURL(t *testing.T) {
	field := &models.DynamicField{Name: "link", Label: "Link", FieldType: models.FieldURL}

	ok, _, err := ValidateFieldValue(field, "https://example.edu/paper")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = ValidateFieldValue(field, "ftp://example.edu")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateFieldValueSelect(t *testing.T) {
	field := &models.DynamicField{
		Name:      "level",
		Label:     "Level",
		FieldType: models.FieldSelect,
		Choices:   `["national", "international"]`,
	}

	ok, _, err := ValidateFieldValue(field, "national")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, msg, err := ValidateFieldValue(field, "galactic")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, msg, "invalid choice")
}

func TestValidateFieldValueSelectWithChoicePairs(t *testing.T) {
	field := &models.DynamicField{
		Name:      "quartile",
		Label:     "Quartile",
		FieldType: models.FieldSelect,
		Choices:   `[["q1", "Quartile 1"], ["q2", "Quartile 2"]]`,
	}

	ok, _, err := ValidateFieldValue(field, "q1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = ValidateFieldValue(field, "Quartile 1")
	require.NoError(t, err)
	assert.False(t, ok, "labels are not valid stored values")
}

func TestValidateFieldValueMultiSelect(t *testing.T) {
	field := &models.DynamicField{
		Name:      "tags",
		Label:     "Tags",
		FieldType: models.FieldMultiSelect,
		Choices:   `["teaching", "research", "service"]`,
	}

	ok, _, err := ValidateFieldValue(field, `["teaching", "research"]`)
	require.NoError(t, err)
	assert.True(t, ok)

	// A bare scalar counts as a single selection.
	ok, _, err = ValidateFieldValue(field, "service")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = ValidateFieldValue(field, `["teaching", "golf"]`)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateFieldValueMalformedChoicesIsConfigurationError(t *testing.T) {
	field := &models.DynamicField{
		Name:      "level",
		Label:     "Level",
		FieldType: models.FieldSelect,
		Choices:   `{"not": "a list"}`,
	}

	_, _, err := ValidateFieldValue(field, "anything")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestValidateFieldValueUnknownTypeIsConfigurationError(t *testing.T) {
	field := &models.DynamicField{Name: "x", Label: "X", FieldType: "hologram"}

	_, _, err := ValidateFieldValue(field, "anything")
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.False(t, IsGuardViolation(err))
}

func TestValidateFieldValueDateAndFileKindsPassThrough(t *testing.T) {
	for _, kind := range []string{models.FieldDate, models.FieldFile, models.FieldMultiFile} {
		field := &models.DynamicField{Name: "f", Label: "F", FieldType: kind}
		ok, _, err := ValidateFieldValue(field, "2026-01-15")
		require.NoError(t, err)
		assert.True(t, ok, kind)
	}
}
