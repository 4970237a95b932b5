// Package sweeper cancels bookings that stayed unpaid past the grace period and
// hands their rooms to the waiting list.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultGrace    = 15 * time.Minute

	lockKey = "lock:sweeper"
)

// Locker elects one sweeper per tick when several workers run.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

type Sweeper struct {
	bookings repository.BookingRepository
	expirer  booking.Expirer
	locker   Locker
	interval time.Duration
	grace    time.Duration
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Sweeper)

func WithLocker(l Locker) Option {
	return func(s *Sweeper) {
		s.locker = l
	}
}

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithGrace(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.grace = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

func New(log *slog.Logger, bookings repository.BookingRepository, expirer booking.Expirer, opts ...Option) *Sweeper {
	s := &Sweeper{
		bookings: bookings,
		expirer:  expirer,
		interval: DefaultInterval,
		grace:    DefaultGrace,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Result struct {
	Expired int
	Skipped int
	Failed  int
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	const op = "sweeper.Sweeper.Run"

	log := s.log.With(slog.String("op", op))
	log.Info("expiry sweeper started",
		slog.Duration("interval", s.interval), slog.Duration("grace", s.grace))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.SweepOnce(ctx)
			if err != nil {
				log.Error("sweep failed", sl.Err(err))
				continue
			}
			if res.Expired > 0 || res.Failed > 0 {
				log.Info("sweep finished",
					slog.Int("expired", res.Expired), slog.Int("skipped", res.Skipped), slog.Int("failed", res.Failed))
			}
		case <-ctx.Done():
			log.Info("expiry sweeper stopped")
			return
		}
	}
}

// SweepOnce expires every pending booking made before now minus the grace
// period. Each booking is handled in its own unit of work; a failure is logged
// and the rest of the batch continues.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	const op = "sweeper.Sweeper.SweepOnce"

	var res Result
	if s.locker != nil {
		ok, err := s.locker.AcquireLock(ctx, lockKey, s.interval)
		if err != nil {
			return res, fmt.Errorf("%s: acquire lock: %w", op, err)
		}
		if !ok {
			s.log.Debug("another worker is sweeping", slog.String("op", op))
			return res, nil
		}
		defer func() {
			if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), lockKey); err != nil {
				s.log.Warn("failed to release sweeper lock", slog.String("op", op), sl.Err(err))
			}
		}()
	}

	cutoff := s.now().Add(-s.grace)
	stale, err := s.bookings.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	for _, b := range stale {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		expired, err := s.expirer.Expire(ctx, b.PackageID, b.ID, cutoff)
		switch {
		case err != nil:
			res.Failed++
			s.log.Error("failed to expire booking",
				slog.String("op", op), slog.Int64("booking_id", b.ID), sl.Err(err))
		case expired:
			res.Expired++
			s.log.Info("booking expired", slog.Int64("booking_id", b.ID), slog.String("user_id", b.UserID))
		default:
			res.Skipped++
		}
	}
	return res, nil
}
