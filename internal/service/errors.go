package service

import "errors"

// Domain errors shared across services. Handlers map these onto HTTP
// status codes; everything else is treated as an internal failure.
var (
	ErrBadRequest    = errors.New("missing or malformed field")
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrForbidden     = errors.New("insufficient privileges")
	ErrNotFound      = errors.New("user not found")
	ErrConflict      = errors.New("user already exists")
	ErrUnprocessable = errors.New("semantically invalid value")
)
