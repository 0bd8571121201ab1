package booking

import (
	"artbook/src/pricing"
	"errors"
)

var (
	ErrLoginRequired         = errors.New("login required")
	ErrSubjectNotFound       = errors.New("cannot complete booking: subject not found")
	ErrBookingFailed         = errors.New("cannot complete booking")
	ErrSessionNotFound       = errors.New("booking session not found")
	ErrCapacityExhausted     = errors.New("not enough places left")
	ErrPaymentDeclined       = errors.New("payment was declined")
	ErrPaymentUnavailable    = errors.New("payment could not be processed, try again")
	ErrPaymentMethodRequired = errors.New("a payment method is required")
	ErrSubmitting            = errors.New("booking is being processed")
	ErrInvalidStep           = errors.New("action not allowed at this step")
	ErrNoSlots               = errors.New("no time slots left on this date")
	ErrDateOutOfRange        = errors.New("date is outside the booking window")
	ErrInvalidSlot           = errors.New("time slot is not available")
	ErrEmptyComposition      = errors.New("select at least one ticket")
	ErrUnknownTicketClass    = pricing.ErrUnknownClass
	ErrWaitlistOnly          = errors.New("sold out, only the waitlist is open")
	ErrNotOwner              = errors.New("registration belongs to another user")
)

// Visible reports whether err is a booking failure the user must see as an
// alert. Everything else is either a validation prompt or absorbed.
func Visible(err error) bool {
	return errors.Is(err, ErrCapacityExhausted) ||
		errors.Is(err, ErrPaymentDeclined) ||
		errors.Is(err, ErrPaymentUnavailable)
}
