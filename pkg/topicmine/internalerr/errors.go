package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrStoreUnavailable   = errors.New("store unavailable")
)
