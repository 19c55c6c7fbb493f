package limiter

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when an algorithm name does not match any
// registered Kind.
var ErrUnknownKind = errors.New("unknown algorithm")

// ValidationError reports a malformed or out-of-range configuration field.
// Reconfiguration fails before touching any state when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
