package domain

import "time"

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "PENDING_PAYMENT"
	BookingStatusConfirmed      BookingStatus = "CONFIRMED"
	BookingStatusCancelled      BookingStatus = "CANCELLED"
)

// CancellationLeadTime is how long before departure a confirmed booking can still be cancelled.
const CancellationLeadTime = 7 * 24 * time.Hour

type Booking struct {
	ID                       int64
	UserID                   string
	PackageID                int64
	TotalPriceCents          int64
	BookingDate              time.Time
	DepartureDate            time.Time
	CancellationAllowedUntil time.Time
	Status                   BookingStatus
	PaymentID                *int64
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// Active reports whether the booking still holds a room.
func (b *Booking) Active() bool {
	return b.Status != BookingStatusCancelled
}

// CanCancel applies the cancellation window: pending bookings can always be
// cancelled, confirmed ones only until CancellationAllowedUntil (by date).
func (b *Booking) CanCancel(now time.Time) bool {
	switch b.Status {
	case BookingStatusPendingPayment:
		return true
	case BookingStatusConfirmed:
		return !DateOf(now).After(DateOf(b.CancellationAllowedUntil))
	default:
		return false
	}
}

// NewPendingBooking builds a booking for pkg with the price frozen at now.
func NewPendingBooking(userID string, pkg *TravelPackage, now time.Time) *Booking {
	return &Booking{
		UserID:                   userID,
		PackageID:                pkg.ID,
		TotalPriceCents:          pkg.PriceAt(now),
		BookingDate:              now,
		DepartureDate:            pkg.StartDate,
		CancellationAllowedUntil: pkg.StartDate.Add(-CancellationLeadTime),
		Status:                   BookingStatusPendingPayment,
	}
}

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

type Payment struct {
	ID                   int64
	UserID               string
	AmountCents          int64
	Method               string
	TransactionReference string
	Status               PaymentStatus
	PaymentDate          time.Time
}
