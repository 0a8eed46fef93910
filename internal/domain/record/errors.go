package record

import "errors"

// Sentinel error kinds for field access. These allow errors.Is/As from callers.
var (
	ErrFieldRange     = errors.New("field index out of range")
	ErrNullField      = errors.New("required field is NULL")
	ErrMalformedField = errors.New("malformed field")
)
