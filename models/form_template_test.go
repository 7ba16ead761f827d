package models

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Field names must stay unique within one template so saved values resolve
// unambiguously. The composite unique index enforces that at the schema level.
func TestDynamicFieldNameUniquePerTemplate(t *testing.T) {
	typ := reflect.TypeOf(DynamicField{})

	for _, name := range []string{"TemplateID", "Name"} {
		field, ok := typ.FieldByName(name)
		require.True(t, ok)
		assert.Contains(t, field.Tag.Get("gorm"), "uniqueIndex:uniq_template_field_name")
	}
}

func TestIsFileKind(t *testing.T) {
	assert.True(t, (&DynamicField{FieldType: FieldFile}).IsFileKind())
	assert.True(t, (&DynamicField{FieldType: FieldMultiFile}).IsFileKind())
	assert.False(t, (&DynamicField{FieldType: FieldText}).IsFileKind())
	assert.False(t, (&DynamicField{FieldType: FieldNumber}).IsFileKind())
}
