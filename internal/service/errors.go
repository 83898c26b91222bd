package service

import (
	"errors"
	"fmt"
)

// --- Shared Error Definitions ---
// Errors reused across services live here; service-specific sentinels stay
// next to their service.
var (
	ErrInvalidTransition = errors.New("invalid plan status transition")
	ErrAccessDenied      = errors.New("access denied to this resource")
	ErrActiveConflict    = errors.New("another plan is already active for this client and type")
)

// ValidationError reports malformed input caught before persistence. Path
// identifies the offending element (e.g. "meals[0].options[1]") so the UI
// can point at it instead of failing silently.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed at %s: %s", e.Path, e.Reason)
}

func newValidationError(path, reason string) error {
	return &ValidationError{Path: path, Reason: reason}
}

// pathf builds a validation path like "meals[2].options[0]".
func pathf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
