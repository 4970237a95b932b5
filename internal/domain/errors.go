package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	// ErrNoRoomsAvailable is a routed fallback: callers are sent to the waiting list.
	ErrNoRoomsAvailable = errors.New("no rooms available")

	ErrConflict                 = errors.New("booking state changed concurrently")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrForbidden                = errors.New("forbidden")
	ErrPaymentDeclined          = errors.New("payment declined")
	ErrNotConfirmed             = errors.New("booking is not confirmed")
)

var (
	ErrTripEnded        = fmt.Errorf("%w: trip has already ended", ErrValidation)
	ErrBookingClosed    = fmt.Errorf("%w: booking deadline has passed", ErrValidation)
	ErrTooManyUpcoming  = fmt.Errorf("%w: you can only book up to 3 upcoming trips", ErrValidation)
	ErrDuplicateBooking = fmt.Errorf("%w: you already have an active booking for this trip", ErrValidation)
	ErrAgeRestricted    = fmt.Errorf("%w: you do not meet the age limit for this trip", ErrValidation)
	ErrRoomsAvailable   = fmt.Errorf("%w: rooms are still available, book directly", ErrValidation)
	ErrAlreadyWaiting   = fmt.Errorf("%w: you are already on the waiting list", ErrValidation)
	ErrInvalidCapacity  = fmt.Errorf("%w: total rooms must not be negative", ErrValidation)
	ErrInvalidDiscount  = fmt.Errorf("%w: discount end date is required with a discounted price", ErrValidation)
	ErrInvalidDates     = fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	ErrPackageInUse     = fmt.Errorf("%w: package has active bookings", ErrValidation)
	ErrEmptyCart        = fmt.Errorf("%w: cart is empty", ErrValidation)
)
