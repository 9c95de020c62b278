package domain

import "errors"

// Error kinds surfaced by the storefront core. Repositories and clients wrap
// these with context; callers compare with errors.Is.
var (
	ErrNotAuthenticated   = errors.New("authentication required")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
)
