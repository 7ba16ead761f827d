package utils

import (
	"path/filepath"
	"strings"
)

// MaxUploadSize bounds a single attachment upload.
const MaxUploadSize = 10 * 1024 * 1024 // 10MB

var allowedExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".zip": {},
}

// ValidateFileExtension checks a filename against the allowed upload types.
func ValidateFileExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowedExtensions[ext]
	return ok
}

// ValidateFileSize checks an upload against the size limit.
func ValidateFileSize(size int64) bool {
	return size <= MaxUploadSize
}
