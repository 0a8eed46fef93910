package model

import "errors"

// Sentinel error kinds shared by the assemblers.
var (
	ErrMissingKey   = errors.New("missing join key")
	ErrUnknownTable = errors.New("unknown table")
)
