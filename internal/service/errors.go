package service

import "errors"

// Error taxonomy shared by all services. Handlers translate these to HTTP
// statuses; anything else is a 500.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrConflict           = errors.New("conflict")
)
