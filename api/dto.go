package api

import (
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

const dateLayout = time.DateOnly

type tripResponse struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Destination          string  `json:"destination"`
	Country              string  `json:"country"`
	PackageType          string  `json:"package_type"`
	Description          string  `json:"description"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
	BookingDeadline      *string `json:"booking_deadline,omitempty"`
	BasePriceCents       int64   `json:"base_price_cents"`
	DiscountedPriceCents *int64  `json:"discounted_price_cents,omitempty"`
	DiscountEndDate      *string `json:"discount_end_date,omitempty"`
	PriceCents           int64   `json:"price_cents"`
	TotalRooms           int     `json:"total_rooms"`
	AvailableRooms       int     `json:"available_rooms"`
	AgeLimit             *int    `json:"age_limit,omitempty"`
}

func toTripResponse(p *domain.TravelPackage, now time.Time) tripResponse {
	return tripResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Destination:          p.Destination,
		Country:              p.Country,
		PackageType:          p.PackageType,
		Description:          p.Description,
		StartDate:            p.StartDate.Format(dateLayout),
		EndDate:              p.EndDate.Format(dateLayout),
		BookingDeadline:      formatDate(p.BookingDeadline),
		BasePriceCents:       p.BasePriceCents,
		DiscountedPriceCents: p.DiscountedPriceCents,
		DiscountEndDate:      formatDate(p.DiscountEndDate),
		PriceCents:           p.PriceAt(now),
		TotalRooms:           p.TotalRooms,
		AvailableRooms:       p.AvailableRooms,
		AgeLimit:             p.AgeLimit,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

type bookingResponse struct {
	ID                       int64  `json:"id"`
	PackageID                int64  `json:"package_id"`
	Status                   string `json:"status"`
	TotalPriceCents          int64  `json:"total_price_cents"`
	BookingDate              string `json:"booking_date"`
	DepartureDate            string `json:"departure_date"`
	CancellationAllowedUntil string `json:"cancellation_allowed_until"`
	PaymentID                *int64 `json:"payment_id,omitempty"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:                       b.ID,
		PackageID:                b.PackageID,
		Status:                   string(b.Status),
		TotalPriceCents:          b.TotalPriceCents,
		BookingDate:              b.BookingDate.Format(time.RFC3339),
		DepartureDate:            b.DepartureDate.Format(dateLayout),
		CancellationAllowedUntil: b.CancellationAllowedUntil.Format(dateLayout),
		PaymentID:                b.PaymentID,
	}
}

type bookingDetailsResponse struct {
	bookingResponse
	TripName    string `json:"trip_name"`
	Destination string `json:"destination"`
	CanCancel   bool   `json:"can_cancel"`
}

func toBookingDetails(d *booking.Details) bookingDetailsResponse {
	return bookingDetailsResponse{
		bookingResponse: toBookingResponse(&d.Booking),
		TripName:        d.Package.Name,
		Destination:     d.Package.Destination,
		CanCancel:       d.CanCancel,
	}
}

type paymentResponse struct {
	ID                   int64  `json:"id"`
	AmountCents          int64  `json:"amount_cents"`
	Method               string `json:"method"`
	TransactionReference string `json:"transaction_reference"`
	Status               string `json:"status"`
	PaymentDate          string `json:"payment_date"`
}

type payResponse struct {
	Booking bookingResponse `json:"booking"`
	Payment paymentResponse `json:"payment"`
}

func toPayResponse(r *booking.PayResult) payResponse {
	return payResponse{
		Booking: toBookingResponse(&r.Booking),
		Payment: paymentResponse{
			ID:                   r.Payment.ID,
			AmountCents:          r.Payment.AmountCents,
			Method:               r.Payment.Method,
			TransactionReference: r.Payment.TransactionReference,
			Status:               string(r.Payment.Status),
			PaymentDate:          r.Payment.PaymentDate.Format(time.RFC3339),
		},
	}
}

type waitlistJoinResponse struct {
	EntryID           int64 `json:"entry_id"`
	PackageID         int64 `json:"package_id"`
	Position          int   `json:"position"`
	EstimatedWaitDays int   `json:"estimated_wait_days"`
}

func toWaitlistJoin(r *waitlist.JoinResult) waitlistJoinResponse {
	return waitlistJoinResponse{
		EntryID:           r.Entry.ID,
		PackageID:         r.Entry.PackageID,
		Position:          r.Position,
		EstimatedWaitDays: r.EstimatedWaitDays,
	}
}

type waitlistInfoResponse struct {
	PackageID         int64  `json:"package_id"`
	PackageName       string `json:"package_name"`
	AvailableRooms    int    `json:"available_rooms"`
	WaitingCount      int    `json:"waiting_count"`
	EstimatedWaitDays int    `json:"estimated_wait_days"`
}

type cartLineResponse struct {
	ItemID  int64        `json:"item_id"`
	AddedAt string       `json:"added_at"`
	Trip    tripResponse `json:"trip"`
}

type checkoutSkipResponse struct {
	PackageID int64  `json:"package_id"`
	Reason    string `json:"reason"`
}

type checkoutResponse struct {
	Bookings []bookingResponse      `json:"bookings"`
	Skipped  []checkoutSkipResponse `json:"skipped"`
}

type notificationResponse struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}
