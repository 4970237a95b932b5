package waitlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/inventory"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/notify"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

type WaitlistUseCase interface {
	Join(ctx context.Context, userID string, packageID int64) (*JoinResult, error)
	Info(ctx context.Context, packageID int64) (*Info, error)
	List(ctx context.Context, packageID int64) ([]domain.WaitingListEntry, error)
}

type Notifier interface {
	Notify(ctx context.Context, n notify.Notification)
}

type Service struct {
	store    repository.Store
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(log *slog.Logger, store repository.Store, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type JoinResult struct {
	Entry             domain.WaitingListEntry
	Position          int
	EstimatedWaitDays int
}

type Info struct {
	PackageID         int64
	PackageName       string
	AvailableRooms    int
	WaitingCount      int
	EstimatedWaitDays int
}

// Promotion is a waiting list entry turned into a pending booking.
type Promotion struct {
	Entry   domain.WaitingListEntry
	Booking domain.Booking
}

// Join puts the user at the end of a full package's queue.
func (s *Service) Join(ctx context.Context, userID string, packageID int64) (*JoinResult, error) {
	const op = "waitlist.Service.Join"

	var res JoinResult
	err := s.store.InPackageTx(ctx, packageID, func(ctx context.Context, tx repository.Tx) error {
		now := s.now()

		pkg, err := tx.GetPackage(ctx)
		if err != nil {
			return err
		}
		if pkg.AvailableRooms > 0 {
			return domain.ErrRoomsAvailable
		}

		waiting, err := tx.HasWaiting(ctx, userID)
		if err != nil {
			return err
		}
		if waiting {
			return domain.ErrAlreadyWaiting
		}
		if pkg.Ended(now) {
			return domain.ErrTripEnded
		}

		booked, err := tx.HasActiveBooking(ctx, userID)
		if err != nil {
			return err
		}
		if booked {
			return domain.ErrDuplicateBooking
		}

		entry := domain.WaitingListEntry{UserID: userID, CreatedAt: now}
		if err := tx.InsertWaiting(ctx, &entry); err != nil {
			return err
		}
		pos, err := tx.WaitingPosition(ctx, &entry)
		if err != nil {
			return err
		}

		res = JoinResult{Entry: entry, Position: pos, EstimatedWaitDays: domain.EstimatedWaitDays(pos)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("joined waiting list",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Int64("package_id", packageID),
		slog.Int("position", res.Position),
	)
	return &res, nil
}

// Info is what a user sees before joining: queue length and a rough wait.
func (s *Service) Info(ctx context.Context, packageID int64) (*Info, error) {
	const op = "waitlist.Service.Info"

	pkg, err := s.store.Packages().GetByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	count, err := s.store.Waitlist().CountByPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Info{
		PackageID:         pkg.ID,
		PackageName:       pkg.Name,
		AvailableRooms:    pkg.AvailableRooms,
		WaitingCount:      count,
		EstimatedWaitDays: domain.EstimatedWaitDays(count + 1),
	}, nil
}

// List returns the queue of a package in promotion order.
func (s *Service) List(ctx context.Context, packageID int64) ([]domain.WaitingListEntry, error) {
	const op = "waitlist.Service.List"

	if _, err := s.store.Packages().GetByID(ctx, packageID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	entries, err := s.store.Waitlist().ListByPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// PromoteUpTo turns at most n queued users into pending bookings, earliest
// first, each consuming one available room. It must run inside the unit of work
// that freed the rooms. Entries of users who already hold an active booking for
// the package are dropped without consuming a room.
func (s *Service) PromoteUpTo(ctx context.Context, tx repository.Tx, pkg *domain.TravelPackage, n int, now time.Time) ([]Promotion, error) {
	const op = "waitlist.Service.PromoteUpTo"

	var promoted []Promotion
	for len(promoted) < n && pkg.AvailableRooms > 0 {
		entry, err := tx.FirstWaiting(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		booked, err := tx.HasActiveBooking(ctx, entry.UserID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := tx.DeleteWaiting(ctx, entry.ID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if booked {
			continue
		}

		if err := inventory.Reserve(ctx, tx, pkg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		booking := domain.NewPendingBooking(entry.UserID, pkg, now)
		if err := tx.InsertBooking(ctx, booking); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		promoted = append(promoted, Promotion{Entry: *entry, Booking: *booking})
	}
	return promoted, nil
}

// Announce notifies promoted users. Call it after the unit of work committed.
func (s *Service) Announce(ctx context.Context, pkg *domain.TravelPackage, promoted []Promotion) {
	for _, p := range promoted {
		s.log.Info("promoted from waiting list",
			slog.String("user_id", p.Entry.UserID),
			slog.Int64("package_id", pkg.ID),
			slog.Int64("booking_id", p.Booking.ID),
		)
		s.notifier.Notify(ctx, notify.Notification{
			UserID:    p.Entry.UserID,
			Type:      kafka.EventWaitlistPromoted,
			Message:   fmt.Sprintf("A room opened up on %s. Your booking #%d is reserved, please complete the payment.", pkg.Name, p.Booking.ID),
			BookingID: p.Booking.ID,
			PackageID: pkg.ID,
		})
	}
}

var _ WaitlistUseCase = (*Service)(nil)
