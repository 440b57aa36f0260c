package validation

import (
	"strings"
	"unicode/utf8"
)

const maxTitleLen = 200

// ValidateTitle returns the message for an invalid title, or "".
func ValidateTitle(title string) string {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return "This field may not be blank."
	}

	if utf8.RuneCountInString(trimmed) > maxTitleLen {
		return "Ensure this field has no more than 200 characters."
	}

	return ""
}
