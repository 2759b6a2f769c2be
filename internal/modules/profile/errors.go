package profile

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("invalid input")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile    = errors.New("file is empty")
	ErrInvalidImage = errors.New("file is not a supported image")
)
