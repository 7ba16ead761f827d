package utils

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SanitizeFilename strips path components and replaces characters that are
// unsafe in stored filenames.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, " ", "_")
	filename = strings.ReplaceAll(filename, "\x00", "")
	return filename
}

// StoredFilename builds a unique on-disk name that keeps the original
// extension so downloads stay recognizable.
func StoredFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(SanitizeFilename(originalName)))
	return fmt.Sprintf("%s%s", uuid.NewString(), ext)
}

// UploadPath composes the storage path for one attachment:
// <base>/attachments/<year>/<month>/<user_id>/<stored name>.
func UploadPath(base string, year, month, userID int, storedName string) string {
	return filepath.Join(base, "attachments",
		fmt.Sprintf("%d", year), fmt.Sprintf("%02d", month), fmt.Sprintf("%d", userID), storedName)
}
