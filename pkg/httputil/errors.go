package httputil

import "errors"

// Sentinel errors mapped to HTTP status codes at the handler boundary.
// Services wrap these with context so handlers can classify with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrPaymentRequired    = errors.New("payment required")
	ErrUpstream           = errors.New("upstream service unavailable")
)
