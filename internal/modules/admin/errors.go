package admin

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrReasonRequired = errors.New("reason is required")
	ErrAlreadyActive  = errors.New("teacher already active")
)
