package errors

import (
	"strings"
	"unicode"
)

// MaxWidth bounds the converse budget accepted from users. Larger values
// are treated as "unbounded" by callers that need that.
const MaxWidth = 10_000_000

// ValidateWidth validates a converse budget supplied on the command line or
// in a config file.
func ValidateWidth(width int) error {
	if width <= 0 {
		return New(ErrCodeInvalidInput, "width must be positive, got %d", width)
	}
	if width > MaxWidth {
		return New(ErrCodeInvalidInput, "width too large (max %d)", MaxWidth)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

// ValidatePath validates a selection path such as "0.2.1".
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - Only digits separated by single dots
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return New(ErrCodeInvalidPath, "path %q has an empty segment", path)
		}
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return New(ErrCodeInvalidPath, "path %q contains non-digit %q", path, r)
			}
		}
	}

	return nil
}
