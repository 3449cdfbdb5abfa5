package errors

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxSelectionValues bounds how many checked tree values a single request may carry.
const maxSelectionValues = 1000

// maxSelectionValueLength bounds a checked tree value in runes.
const maxSelectionValueLength = 32

// ValidateSelectionValue validates one checked tree value.
//
// Values come from an external UI collaborator, so they are checked before
// being used as set members. Tree values are positional slices of registry
// codes and may hold any character a code holds, so only the shape is checked:
//   - No empty values
//   - Valid UTF-8, at most 32 characters
//   - No whitespace
func ValidateSelectionValue(value string) error {
	if value == "" {
		return New(ErrCodeInvalidInput, "selection value cannot be empty")
	}
	if !utf8.ValidString(value) || utf8.RuneCountInString(value) > maxSelectionValueLength {
		return New(ErrCodeInvalidInput, "invalid selection value: %q", value)
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return New(ErrCodeInvalidInput, "invalid selection value: %q", value)
	}
	return nil
}

// ValidateSelection validates a whole selection set.
func ValidateSelection(values []string) error {
	if len(values) > maxSelectionValues {
		return New(ErrCodeInvalidInput, "too many selection values (max %d)", maxSelectionValues)
	}
	for _, v := range values {
		if err := ValidateSelectionValue(v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
// The comparison is case-sensitive.
func ValidateFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of: %s)", format, strings.Join(allowed, ", "))
}

// ValidateCachePath validates the location of a cache artifact.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidateCachePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidConfig, "cache path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidConfig, "cache path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "cache path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
