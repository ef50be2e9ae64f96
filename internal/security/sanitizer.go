package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeAuthorInput normalizes a question or option text received from a
// quiz creator: trims whitespace, strips null bytes and any HTML markup.
func SanitizeAuthorInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	input = htmlPolicy.Sanitize(input)
	return strings.TrimSpace(input)
}

// ValidateWorkbookName checks that an uploaded file looks like a spreadsheet.
func ValidateWorkbookName(filename string) bool {
	filename = strings.ToLower(filename)
	return strings.HasSuffix(filename, ".xlsx") || strings.HasSuffix(filename, ".xlsm")
}

// ValidateFileSize checks if file size is within limit.
func ValidateFileSize(size int64, maxSize int64) bool {
	return size > 0 && size <= maxSize
}
