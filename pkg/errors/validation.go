package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// districtIDRegex matches district identifiers accepted in assignments and
// run configs: a letter or digit followed by letters, digits, dashes or
// underscores.
var districtIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateDistrictID validates a district identifier.
func ValidateDistrictID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidAssignment, "district ID cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidAssignment, "district ID too long (max 64 characters)")
	}
	if !districtIDRegex.MatchString(id) {
		return New(ErrCodeInvalidAssignment, "invalid district ID: %q", id)
	}
	return nil
}

// ValidateScoreName validates a score name against the registered set.
// Registered names are supplied by the caller to keep this package free of
// score dependencies.
func ValidateScoreName(name string, registered []string) error {
	if name == "" {
		return New(ErrCodeInvalidScore, "score name cannot be empty")
	}
	for _, r := range registered {
		if r == name {
			return nil
		}
	}
	return New(ErrCodeInvalidScore, "unknown score %q (registered: %s)", name, strings.Join(registered, ", "))
}

// ValidatePath validates a file path supplied through configs or API
// requests. It prevents path traversal and ensures reasonable length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidInput, "path cannot contain backslashes")
	}

	return nil
}
