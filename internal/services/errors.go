package services

import "errors"

// Error taxonomy raised by the services. Handlers map these to transport
// statuses with errors.Is; no retries happen below this layer.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
)
