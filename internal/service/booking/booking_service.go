package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/inventory"
	"github.com/Domenick1991/travelbooking/internal/itinerary"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/Domenick1991/travelbooking/internal/notify"
	"github.com/Domenick1991/travelbooking/internal/payment"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

// DefaultMaxUpcoming is how many non-cancelled bookings departing in the future a user may hold.
const DefaultMaxUpcoming = 3

type BookingUseCase interface {
	CreateBooking(ctx context.Context, userID string, packageID int64) (*domain.Booking, error)
	Pay(ctx context.Context, input PayInput) (*PayResult, error)
	Cancel(ctx context.Context, userID string, bookingID int64) (*domain.Booking, error)
	Get(ctx context.Context, userID string, bookingID int64) (*Details, error)
	MyBookings(ctx context.Context, userID string) ([]Details, error)
	Itinerary(ctx context.Context, userID string, bookingID int64) ([]byte, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
}

// Expirer cancels a stale pending booking. Used by the sweeper.
type Expirer interface {
	Expire(ctx context.Context, packageID, bookingID int64, cutoff time.Time) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

type Promoter interface {
	PromoteUpTo(ctx context.Context, tx repository.Tx, pkg *domain.TravelPackage, n int, now time.Time) ([]waitlist.Promotion, error)
	Announce(ctx context.Context, pkg *domain.TravelPackage, promoted []waitlist.Promotion)
}

type BookingService struct {
	store       repository.Store
	waitlist    Promoter
	payments    payment.Processor
	notifier    Notifier
	log         *slog.Logger
	now         func() time.Time
	maxUpcoming int
}

type BookingServiceOption func(*BookingService)

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithMaxUpcoming(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.maxUpcoming = n
		}
	}
}

func NewBookingService(
	log *slog.Logger,
	store repository.Store,
	promoter Promoter,
	payments payment.Processor,
	notifier Notifier,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		store:       store,
		waitlist:    promoter,
		payments:    payments,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
		maxUpcoming: DefaultMaxUpcoming,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type PayInput struct {
	UserID    string
	BookingID int64
	Method    string
	Details   payment.Details
}

type PayResult struct {
	Booking domain.Booking
	Payment domain.Payment
}

// Details is a booking together with its package, as shown to its owner.
type Details struct {
	Booking   domain.Booking
	Package   domain.TravelPackage
	CanCancel bool
}

// CreateBooking reserves a room for the user. Eligibility is checked in order
// (trip ended, booking closed, upcoming quota, duplicate, age) and the room is
// taken in the same unit of work. A full package yields domain.ErrNoRoomsAvailable.
func (s *BookingService) CreateBooking(ctx context.Context, userID string, packageID int64) (*domain.Booking, error) {
	const op = "booking.BookingService.CreateBooking"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Int64("package_id", packageID),
	)

	var (
		booking *domain.Booking
		pkgName string
	)
	err := s.store.InPackageTx(ctx, packageID, func(ctx context.Context, tx repository.Tx) error {
		now := s.now()

		pkg, err := tx.GetPackage(ctx)
		if err != nil {
			return err
		}
		if err := s.checkEligibility(ctx, tx, userID, pkg, now); err != nil {
			return err
		}
		if err := inventory.Reserve(ctx, tx, pkg); err != nil {
			return err
		}

		booking = domain.NewPendingBooking(userID, pkg, now)
		pkgName = pkg.Name
		return tx.InsertBooking(ctx, booking)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) && !errors.Is(err, domain.ErrNoRoomsAvailable) {
			log.Error("failed to create booking", sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking created", slog.Int64("booking_id", booking.ID))
	s.notifier.Notify(ctx, notify.Notification{
		UserID:    userID,
		Type:      kafka.EventBookingCreated,
		Message:   fmt.Sprintf("Booking #%d for %s is reserved. Please complete the payment.", booking.ID, pkgName),
		BookingID: booking.ID,
		PackageID: packageID,
	})
	return booking, nil
}

func (s *BookingService) checkEligibility(ctx context.Context, tx repository.Tx, userID string, pkg *domain.TravelPackage, now time.Time) error {
	if pkg.Ended(now) {
		return domain.ErrTripEnded
	}
	if pkg.BookingClosed(now) {
		return domain.ErrBookingClosed
	}

	if err := tx.LockUser(ctx, userID); err != nil {
		return err
	}
	upcoming, err := tx.CountUpcomingBookings(ctx, userID, now)
	if err != nil {
		return err
	}
	if upcoming >= s.maxUpcoming {
		return domain.ErrTooManyUpcoming
	}

	booked, err := tx.HasActiveBooking(ctx, userID)
	if err != nil {
		return err
	}
	if booked {
		return domain.ErrDuplicateBooking
	}

	if pkg.AgeLimit != nil {
		profile, err := s.store.Profiles().GetProfile(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrAgeRestricted
			}
			return err
		}
		if profile.AgeAt(now) < *pkg.AgeLimit {
			return domain.ErrAgeRestricted
		}
	}
	return nil
}

// Pay charges the booking through the payment processor and confirms it. The
// processor runs outside the package lock; the status is checked again before
// confirming and a booking that expired or was cancelled meanwhile yields
// domain.ErrConflict.
func (s *BookingService) Pay(ctx context.Context, input PayInput) (*PayResult, error) {
	const op = "booking.BookingService.Pay"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", input.UserID),
		slog.Int64("booking_id", input.BookingID),
	)

	current, err := s.owned(ctx, input.UserID, input.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if current.Status != domain.BookingStatusPendingPayment {
		return nil, fmt.Errorf("%s: booking is %s: %w", op, current.Status, domain.ErrConflict)
	}

	charged, err := s.payments.Process(ctx, current.ID, current.TotalPriceCents, input.Method, input.Details)
	if err != nil {
		log.Warn("payment rejected", slog.String("method", input.Method), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var res PayResult
	err = s.store.InPackageTx(ctx, current.PackageID, func(ctx context.Context, tx repository.Tx) error {
		b, err := tx.GetBooking(ctx, current.ID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPendingPayment {
			return fmt.Errorf("booking is %s: %w", b.Status, domain.ErrConflict)
		}

		p := domain.Payment{
			UserID:               input.UserID,
			AmountCents:          b.TotalPriceCents,
			Method:               charged.Method,
			TransactionReference: charged.TransactionReference,
			Status:               domain.PaymentStatusSuccess,
		}
		if err := tx.InsertPayment(ctx, &p); err != nil {
			return err
		}
		if err := tx.ConfirmBooking(ctx, b.ID, p.ID); err != nil {
			return err
		}

		b.Status = domain.BookingStatusConfirmed
		b.PaymentID = &p.ID
		res = PayResult{Booking: *b, Payment: p}
		return nil
	})
	if err != nil {
		log.Error("payment taken but booking not confirmed",
			slog.String("reference", charged.TransactionReference), sl.Err(err))
		s.recordUnattachedCharge(ctx, log, current, input.UserID, charged)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("booking paid", slog.String("reference", res.Payment.TransactionReference))
	s.notifier.Notify(ctx, notify.Notification{
		UserID:    input.UserID,
		Type:      kafka.EventBookingConfirmed,
		Message:   fmt.Sprintf("Payment received. Booking #%d is confirmed.", res.Booking.ID),
		BookingID: res.Booking.ID,
		PackageID: res.Booking.PackageID,
	})
	return &res, nil
}

// recordUnattachedCharge stores a FAILED payment for a charge whose booking
// could not be confirmed, so the reference stays on record for a refund.
func (s *BookingService) recordUnattachedCharge(ctx context.Context, log *slog.Logger, b *domain.Booking, userID string, charged *payment.Result) {
	err := s.store.InPackageTx(ctx, b.PackageID, func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertPayment(ctx, &domain.Payment{
			UserID:               userID,
			AmountCents:          b.TotalPriceCents,
			Method:               charged.Method,
			TransactionReference: charged.TransactionReference,
			Status:               domain.PaymentStatusFailed,
		})
	})
	if err != nil {
		log.Error("failed to record unattached charge",
			slog.String("reference", charged.TransactionReference), sl.Err(err))
	}
}

// Cancel cancels the user's booking, frees its room and offers the room to the
// first user on the waiting list, all in one unit of work.
func (s *BookingService) Cancel(ctx context.Context, userID string, bookingID int64) (*domain.Booking, error) {
	const op = "booking.BookingService.Cancel"

	current, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		cancelled *domain.Booking
		pkg       *domain.TravelPackage
		promoted  []waitlist.Promotion
	)
	err = s.store.InPackageTx(ctx, current.PackageID, func(ctx context.Context, tx repository.Tx) error {
		now := s.now()

		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.CanCancel(now) {
			return domain.ErrCancellationWindowClosed
		}

		pkg, promoted, err = s.cancelAndPromote(ctx, tx, b, now)
		cancelled = b
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("booking cancelled",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Int64("booking_id", bookingID),
		slog.Int("promoted", len(promoted)),
	)
	s.notifier.Notify(ctx, notify.Notification{
		UserID:    userID,
		Type:      kafka.EventBookingCancelled,
		Message:   fmt.Sprintf("Booking #%d for %s was cancelled.", bookingID, pkg.Name),
		BookingID: bookingID,
		PackageID: pkg.ID,
	})
	s.waitlist.Announce(ctx, pkg, promoted)
	return cancelled, nil
}

// Expire cancels a pending booking made before cutoff. It reports false when
// the booking was already paid, cancelled or is not stale yet, so running it
// twice for the same booking changes nothing.
func (s *BookingService) Expire(ctx context.Context, packageID, bookingID int64, cutoff time.Time) (bool, error) {
	const op = "booking.BookingService.Expire"

	var (
		expired  *domain.Booking
		pkg      *domain.TravelPackage
		promoted []waitlist.Promotion
	)
	err := s.store.InPackageTx(ctx, packageID, func(ctx context.Context, tx repository.Tx) error {
		b, err := tx.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPendingPayment || !b.BookingDate.Before(cutoff) {
			return nil
		}

		pkg, promoted, err = s.cancelAndPromote(ctx, tx, b, s.now())
		expired = b
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if expired == nil {
		return false, nil
	}

	s.notifier.Notify(ctx, notify.Notification{
		UserID:    expired.UserID,
		Type:      kafka.EventBookingExpired,
		Message:   fmt.Sprintf("Booking #%d for %s was cancelled because it was not paid in time.", expired.ID, pkg.Name),
		BookingID: expired.ID,
		PackageID: pkg.ID,
	})
	s.waitlist.Announce(ctx, pkg, promoted)
	return true, nil
}

// cancelAndPromote marks b cancelled, returns its room and hands that room to
// the waiting list. b is updated in place.
func (s *BookingService) cancelAndPromote(ctx context.Context, tx repository.Tx, b *domain.Booking, now time.Time) (*domain.TravelPackage, []waitlist.Promotion, error) {
	if err := tx.UpdateBookingStatus(ctx, b.ID, domain.BookingStatusCancelled); err != nil {
		return nil, nil, err
	}
	b.Status = domain.BookingStatusCancelled

	pkg, err := tx.GetPackage(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := inventory.Release(ctx, tx, pkg); err != nil {
		return nil, nil, err
	}

	promoted, err := s.waitlist.PromoteUpTo(ctx, tx, pkg, 1, now)
	if err != nil {
		return nil, nil, err
	}
	return pkg, promoted, nil
}

func (s *BookingService) Get(ctx context.Context, userID string, bookingID int64) (*Details, error) {
	const op = "booking.BookingService.Get"

	b, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	d, err := s.details(ctx, *b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// MyBookings lists the user's bookings, newest first.
func (s *BookingService) MyBookings(ctx context.Context, userID string) ([]Details, error) {
	const op = "booking.BookingService.MyBookings"

	bookings, err := s.store.Bookings().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]Details, 0, len(bookings))
	for _, b := range bookings {
		d, err := s.details(ctx, b)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *d)
	}
	return out, nil
}

// Itinerary renders the travel document of a confirmed booking.
func (s *BookingService) Itinerary(ctx context.Context, userID string, bookingID int64) ([]byte, error) {
	const op = "booking.BookingService.Itinerary"

	b, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if b.Status != domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotConfirmed)
	}
	pkg, err := s.store.Packages().GetByID(ctx, b.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	doc, err := itinerary.Render(b, pkg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

func (s *BookingService) ListAll(ctx context.Context) ([]domain.Booking, error) {
	const op = "booking.BookingService.ListAll"

	bookings, err := s.store.Bookings().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bookings, nil
}

// owned loads a booking and checks it belongs to userID.
func (s *BookingService) owned(ctx context.Context, userID string, bookingID int64) (*domain.Booking, error) {
	b, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

func (s *BookingService) details(ctx context.Context, b domain.Booking) (*Details, error) {
	pkg, err := s.store.Packages().GetByID(ctx, b.PackageID)
	if err != nil {
		return nil, err
	}
	return &Details{Booking: b, Package: *pkg, CanCancel: b.CanCancel(s.now())}, nil
}

var (
	_ BookingUseCase = (*BookingService)(nil)
	_ Expirer        = (*BookingService)(nil)
)
