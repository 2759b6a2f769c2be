package chat

import "errors"

var (
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrMessageTooLong   = errors.New("message content is too long")
	ErrSelfMessage      = errors.New("cannot message yourself")
	ErrRecipientMissing = errors.New("recipient not found")
)
