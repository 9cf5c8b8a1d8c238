package script

import (
	"errors"
	"fmt"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")
)

// ConversionError describes a Lua value that could not be converted to a
// native byte sequence.
type ConversionError struct {
	// Value is the debug rendering of the offending value.
	Value string

	// Reason explains why the conversion failed.
	Reason string
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Value)
}
