package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidKey = errors.New("invalid document key")
	ErrWrite      = errors.New("document write failed")
)
