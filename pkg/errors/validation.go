package errors

import (
	"strings"
	"unicode"
)

// ValidateTypeName validates a series-type identifier.
// Type names key the series registry and appear in cache keys and file
// names, so the rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Lowercase letters, digits, and single dashes only
//   - Maximum length of 64 characters
func ValidateTypeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidOption, "series type cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidOption, "series type too long (max 64 characters)")
	}
	for _, r := range name {
		switch {
		case unicode.IsLower(r), unicode.IsDigit(r), r == '-':
		default:
			return New(ErrCodeInvalidOption, "series type %q contains invalid character %q", name, r)
		}
	}
	if strings.Contains(name, "--") || strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return New(ErrCodeInvalidOption, "series type %q has malformed dashes", name)
	}
	return nil
}

// ValidateDimName validates a dataset dimension name.
// Dimension names come from user config and document stores; they must be
// simple identifiers without control characters.
func ValidateDimName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDataset, "dimension name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidDataset, "dimension name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidDataset, "dimension name %q contains invalid characters", name)
		}
	}
	return nil
}
