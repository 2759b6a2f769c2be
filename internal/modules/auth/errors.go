package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidRole        = errors.New("role must be student or teacher")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)
