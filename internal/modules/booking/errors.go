package booking

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrTeacherNotFound  = errors.New("teacher not found")
	ErrSelfBooking      = errors.New("teachers cannot book themselves")
	ErrSlotTaken        = errors.New("slot already booked")
	ErrNotFound         = errors.New("booking not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrStatusChanged    = errors.New("booking status changed")
)
