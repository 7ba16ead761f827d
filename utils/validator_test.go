package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("faculty@university.edu"))
	assert.True(t, ValidateEmail("first.last+tag@sub.domain.org"))

	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail("@no-local.edu"))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hashed)

	assert.True(t, CheckPassword(hashed, "correct horse battery"))
	assert.False(t, CheckPassword(hashed, "wrong password"))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "user@university.edu", SanitizeInput("  user@university.edu \t"))
	assert.Equal(t, "plain", SanitizeInput("pla\x00in"))
	assert.Equal(t, "", SanitizeInput(" \x00 "))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report_final.pdf", SanitizeFilename("report final.pdf"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
}

func TestStoredFilenameKeepsExtension(t *testing.T) {
	name := StoredFilename("My Thesis.PDF")
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.NotContains(t, name, " ")

	// Distinct calls must not collide.
	assert.NotEqual(t, StoredFilename("a.pdf"), StoredFilename("a.pdf"))
}

func TestUploadPathLayout(t *testing.T) {
	path := UploadPath("./uploads", 2026, 3, 17, "abc.pdf")
	assert.Equal(t, "uploads/attachments/2026/03/17/abc.pdf", path)
}
