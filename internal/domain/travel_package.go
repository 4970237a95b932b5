package domain

import "time"

type TravelPackage struct {
	ID                   int64
	Name                 string
	Destination          string
	Country              string
	PackageType          string
	Description          string
	StartDate            time.Time
	EndDate              time.Time
	BookingDeadline      *time.Time
	BasePriceCents       int64
	DiscountedPriceCents *int64
	DiscountEndDate      *time.Time
	TotalRooms           int
	AvailableRooms       int
	AgeLimit             *int
	IsVisible            bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// BookedRooms is the number of rooms currently held by bookings.
func (p *TravelPackage) BookedRooms() int {
	return p.TotalRooms - p.AvailableRooms
}

// Ended reports whether the trip end date is before today.
func (p *TravelPackage) Ended(now time.Time) bool {
	return DateOf(now).After(DateOf(p.EndDate))
}

// BookingClosed reports whether a booking deadline is set and has passed.
func (p *TravelPackage) BookingClosed(now time.Time) bool {
	return p.BookingDeadline != nil && DateOf(now).After(DateOf(*p.BookingDeadline))
}

// DiscountActive reports whether the discounted price applies today.
func (p *TravelPackage) DiscountActive(now time.Time) bool {
	if p.DiscountedPriceCents == nil || p.DiscountEndDate == nil {
		return false
	}
	return !DateOf(*p.DiscountEndDate).Before(DateOf(now))
}

// PriceAt returns the price a booking made at now is frozen to.
func (p *TravelPackage) PriceAt(now time.Time) int64 {
	if p.DiscountActive(now) {
		return *p.DiscountedPriceCents
	}
	return p.BasePriceCents
}

// Validate checks the fields an administrator controls.
func (p *TravelPackage) Validate() error {
	if p.TotalRooms < 0 {
		return ErrInvalidCapacity
	}
	if p.DiscountedPriceCents != nil && p.DiscountEndDate == nil {
		return ErrInvalidDiscount
	}
	if p.EndDate.Before(p.StartDate) {
		return ErrInvalidDates
	}
	return nil
}

// DateOf truncates t to a UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
