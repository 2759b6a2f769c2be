package payment

import (
	"errors"

	"tutorhub/internal/modules/wallet"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrInvalidAmount       = wallet.ErrInvalidAmount
	ErrInvalidPaymentType  = errors.New("unknown payment type")
	ErrMethodNotFound      = errors.New("payment method not found")
	ErrAmountMismatch      = errors.New("amount does not match plan price")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrInsufficientFunds   = wallet.ErrInsufficientFunds
	ErrBookingNotFound     = errors.New("booking not found")
	ErrBookingNotPayable   = errors.New("booking is not pending")
	ErrBookingNotConfirmed = errors.New("booking is not confirmed")
	ErrForbidden           = errors.New("forbidden")
)
