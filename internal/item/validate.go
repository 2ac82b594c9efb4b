package item

import (
	"fmt"
	"strings"
)

// ValidationError reports bad input shape: a missing title, an unknown
// status value, or a malformed identifier. Transports map it to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateTitle checks that a title is non-empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return validationErrorf("title", "required and must be a non-empty string")
	}
	return nil
}

// ValidateEpicStatus checks membership in the epic status set.
func ValidateEpicStatus(s Status) error {
	return validateStatus(s, EpicStatuses)
}

// ValidateItemStatus checks membership in the feature/task status set.
func ValidateItemStatus(s Status) error {
	return validateStatus(s, ItemStatuses)
}

func validateStatus(s Status, allowed []Status) error {
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return validationErrorf("status", "must be one of: %s", strings.Join(names, ", "))
}

// ValidateID checks that id is syntactically a store object ID: 24 hex
// characters. Purely structural: existence of the referenced document
// is checked separately by the owning operation.
func ValidateID(field, id string) error {
	if len(id) != 24 {
		return validationErrorf(field, "must be a valid 24-character object id")
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return validationErrorf(field, "must be a valid 24-character object id")
		}
	}
	return nil
}
