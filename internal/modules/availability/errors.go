package availability

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrInvalidDate    = errors.New("invalid date")
	ErrTeacherMissing = errors.New("teacher not found")
	ErrWindowNotFound = errors.New("availability window not found")
	ErrForbidden      = errors.New("forbidden")
)
