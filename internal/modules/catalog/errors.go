package catalog

import "errors"

var (
	ErrNotFound   = errors.New("teacher not found")
	ErrValidation = errors.New("invalid teacher profile")
)
