package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

type CartUseCase interface {
	AddToCart(ctx context.Context, userID string, packageID int64) (*domain.CartItem, error)
	RemoveFromCart(ctx context.Context, userID string, itemID int64) error
	Cart(ctx context.Context, userID string) ([]CartLine, error)
	Checkout(ctx context.Context, userID string) (*CheckoutResult, error)
}

type CartLine struct {
	Item    domain.CartItem
	Package domain.TravelPackage
}

type CheckoutResult struct {
	Bookings []domain.Booking
	Skipped  []CheckoutSkip
}

// CheckoutSkip is a cart item that could not be booked and why.
type CheckoutSkip struct {
	PackageID int64
	Reason    string
}

func (s *BookingService) AddToCart(ctx context.Context, userID string, packageID int64) (*domain.CartItem, error) {
	const op = "booking.BookingService.AddToCart"

	if _, err := s.store.Packages().GetByID(ctx, packageID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	item := &domain.CartItem{UserID: userID, PackageID: packageID}
	if err := s.store.Carts().Add(ctx, item); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

func (s *BookingService) RemoveFromCart(ctx context.Context, userID string, itemID int64) error {
	const op = "booking.BookingService.RemoveFromCart"

	if err := s.store.Carts().Remove(ctx, itemID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *BookingService) Cart(ctx context.Context, userID string) ([]CartLine, error) {
	const op = "booking.BookingService.Cart"

	items, err := s.store.Carts().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		pkg, err := s.store.Packages().GetByID(ctx, it.PackageID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lines = append(lines, CartLine{Item: it, Package: *pkg})
	}
	return lines, nil
}

// Checkout books every package in the cart through CreateBooking. Items that
// fail eligibility or are full are skipped and reported; the cart is emptied
// either way.
func (s *BookingService) Checkout(ctx context.Context, userID string) (*CheckoutResult, error) {
	const op = "booking.BookingService.Checkout"

	items, err := s.store.Carts().List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	res := &CheckoutResult{}
	for _, it := range items {
		b, err := s.CreateBooking(ctx, userID, it.PackageID)
		if err != nil {
			if !errors.Is(err, domain.ErrValidation) && !errors.Is(err, domain.ErrNoRoomsAvailable) &&
				!errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			res.Skipped = append(res.Skipped, CheckoutSkip{PackageID: it.PackageID, Reason: skipReason(err)})
			continue
		}
		res.Bookings = append(res.Bookings, *b)
	}

	if err := s.store.Carts().Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("cart checked out",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Int("booked", len(res.Bookings)),
		slog.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoRoomsAvailable):
		return domain.ErrNoRoomsAvailable.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "package no longer exists"
	}
	// Validation sentinels read "validation failed: <reason>".
	var reason string
	for _, target := range []error{
		domain.ErrTripEnded, domain.ErrBookingClosed, domain.ErrTooManyUpcoming,
		domain.ErrDuplicateBooking, domain.ErrAgeRestricted,
	} {
		if errors.Is(err, target) {
			reason = target.Error()
			break
		}
	}
	if reason == "" {
		reason = err.Error()
	}
	return reason
}

var _ CartUseCase = (*BookingService)(nil)
