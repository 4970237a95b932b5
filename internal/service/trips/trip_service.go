package trips

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/inventory"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

type TripUseCase interface {
	List(ctx context.Context, q Query) ([]domain.TravelPackage, error)
	GetByID(ctx context.Context, id int64) (*domain.TravelPackage, error)
}

type AdminUseCase interface {
	ListAll(ctx context.Context, q Query) ([]domain.TravelPackage, error)
	Create(ctx context.Context, in PackageInput) (*domain.TravelPackage, error)
	Update(ctx context.Context, id int64, in PackageInput) (*CapacityResult, error)
	SetCapacity(ctx context.Context, id int64, totalRooms int) (*CapacityResult, error)
	SetVisibility(ctx context.Context, id int64, visible bool) (*domain.TravelPackage, error)
	Delete(ctx context.Context, id int64) error
}

// Cache keeps listing results. GetTrips returns nil, nil on a miss.
type Cache interface {
	GetTrips(ctx context.Context, key string) ([]domain.TravelPackage, error)
	SetTrips(ctx context.Context, key string, trips []domain.TravelPackage) error
	InvalidateTrips(ctx context.Context) error
}

type Promoter interface {
	PromoteUpTo(ctx context.Context, tx repository.Tx, pkg *domain.TravelPackage, n int, now time.Time) ([]waitlist.Promotion, error)
	Announce(ctx context.Context, pkg *domain.TravelPackage, promoted []waitlist.Promotion)
}

type TripService struct {
	store    repository.Store
	waitlist Promoter
	cache    Cache
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*TripService)

// WithCache enables the listing cache. Without it every listing hits the store.
func WithCache(c Cache) Option {
	return func(s *TripService) {
		s.cache = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TripService) {
		s.now = now
	}
}

func NewTripService(log *slog.Logger, store repository.Store, promoter Promoter, opts ...Option) *TripService {
	s := &TripService{
		store:    store,
		waitlist: promoter,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Query struct {
	Search         string
	Category       string
	DiscountedOnly bool
	Sort           repository.TripSort
}

// PackageInput is what an administrator sets on a package.
type PackageInput struct {
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
	AgeLimit             *int
	IsVisible            bool
}

type CapacityResult struct {
	Package  domain.TravelPackage
	Promoted []waitlist.Promotion
}

// List returns the trips a customer can see: visible, not ended and still open for booking.
func (s *TripService) List(ctx context.Context, q Query) ([]domain.TravelPackage, error) {
	const op = "trips.TripService.List"

	filter := s.filter(q)
	key := cacheKey(filter)

	if s.cache != nil {
		if cached, err := s.cache.GetTrips(ctx, key); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn("trips cache read failed", slog.String("op", op), sl.Err(err))
		}
	}

	trips, err := s.store.Packages().Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err := s.cache.SetTrips(ctx, key, trips); err != nil {
			s.log.Warn("trips cache write failed", slog.String("op", op), sl.Err(err))
		}
	}
	return trips, nil
}

// ListAll is the administrator view: hidden and ended packages included, never cached.
func (s *TripService) ListAll(ctx context.Context, q Query) ([]domain.TravelPackage, error) {
	const op = "trips.TripService.ListAll"

	filter := s.filter(q)
	filter.IncludeEnded = true
	filter.IncludeHidden = true
	trips, err := s.store.Packages().Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return trips, nil
}

func (s *TripService) GetByID(ctx context.Context, id int64) (*domain.TravelPackage, error) {
	const op = "trips.TripService.GetByID"

	pkg, err := s.store.Packages().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pkg, nil
}

func (s *TripService) Create(ctx context.Context, in PackageInput) (*domain.TravelPackage, error) {
	const op = "trips.TripService.Create"

	pkg := &domain.TravelPackage{}
	in.apply(pkg)
	pkg.TotalRooms = in.TotalRooms
	pkg.AvailableRooms = in.TotalRooms
	if err := pkg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Packages().Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("package created", slog.String("op", op), slog.Int64("package_id", pkg.ID))
	s.invalidate(ctx)
	return pkg, nil
}

// Update replaces the package details and applies TotalRooms like SetCapacity.
func (s *TripService) Update(ctx context.Context, id int64, in PackageInput) (*CapacityResult, error) {
	const op = "trips.TripService.Update"

	res, err := s.mutateRooms(ctx, id, in.TotalRooms, func(ctx context.Context, tx repository.Tx, pkg *domain.TravelPackage) error {
		in.apply(pkg)
		if err := pkg.Validate(); err != nil {
			return err
		}
		return tx.UpdatePackage(ctx, pkg)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SetCapacity changes the number of rooms. Rooms freed by an increase go to
// the waiting list, earliest entry first, in the same unit of work.
func (s *TripService) SetCapacity(ctx context.Context, id int64, totalRooms int) (*CapacityResult, error) {
	const op = "trips.TripService.SetCapacity"

	res, err := s.mutateRooms(ctx, id, totalRooms, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

func (s *TripService) mutateRooms(ctx context.Context, id int64, totalRooms int,
	before func(ctx context.Context, tx repository.Tx, pkg *domain.TravelPackage) error,
) (*CapacityResult, error) {
	var res CapacityResult
	err := s.store.InPackageTx(ctx, id, func(ctx context.Context, tx repository.Tx) error {
		pkg, err := tx.GetPackage(ctx)
		if err != nil {
			return err
		}
		if before != nil {
			if err := before(ctx, tx, pkg); err != nil {
				return err
			}
		}

		freed, err := inventory.SetCapacity(ctx, tx, pkg, totalRooms)
		if err != nil {
			return err
		}
		if freed > 0 {
			promoted, err := s.waitlist.PromoteUpTo(ctx, tx, pkg, freed, s.now())
			if err != nil {
				return err
			}
			res.Promoted = promoted
		}
		res.Package = *pkg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("package rooms updated",
		slog.Int64("package_id", id),
		slog.Int("total_rooms", res.Package.TotalRooms),
		slog.Int("available_rooms", res.Package.AvailableRooms),
		slog.Int("promoted", len(res.Promoted)),
	)
	s.waitlist.Announce(ctx, &res.Package, res.Promoted)
	s.invalidate(ctx)
	return &res, nil
}

func (s *TripService) SetVisibility(ctx context.Context, id int64, visible bool) (*domain.TravelPackage, error) {
	const op = "trips.TripService.SetVisibility"

	var out domain.TravelPackage
	err := s.store.InPackageTx(ctx, id, func(ctx context.Context, tx repository.Tx) error {
		pkg, err := tx.GetPackage(ctx)
		if err != nil {
			return err
		}
		pkg.IsVisible = visible
		if err := tx.UpdatePackage(ctx, pkg); err != nil {
			return err
		}
		out = *pkg
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx)
	return &out, nil
}

// Delete removes a package together with its waiting list. Packages holding
// active bookings are refused.
func (s *TripService) Delete(ctx context.Context, id int64) error {
	const op = "trips.TripService.Delete"

	err := s.store.InPackageTx(ctx, id, func(ctx context.Context, tx repository.Tx) error {
		active, err := tx.CountActiveBookings(ctx)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.ErrPackageInUse
		}
		return tx.DeletePackage(ctx)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("package deleted", slog.String("op", op), slog.Int64("package_id", id))
	s.invalidate(ctx)
	return nil
}

func (s *TripService) filter(q Query) repository.TripFilter {
	return repository.TripFilter{
		Search:         strings.TrimSpace(q.Search),
		Category:       q.Category,
		DiscountedOnly: q.DiscountedOnly,
		Sort:           q.Sort,
		Today:          domain.DateOf(s.now()),
	}
}

func (s *TripService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTrips(ctx); err != nil {
		s.log.Warn("trips cache invalidation failed", sl.Err(err))
	}
}

// cacheKey identifies a listing. The date is part of it so entries roll over at midnight.
func cacheKey(f repository.TripFilter) string {
	return fmt.Sprintf("%s:%s:%s:%t:%s",
		f.Today.Format("2006-01-02"), strings.ToLower(f.Search), f.Category, f.DiscountedOnly, f.Sort)
}

func (in PackageInput) apply(p *domain.TravelPackage) {
	p.Name = in.Name
	p.Destination = in.Destination
	p.Country = in.Country
	p.PackageType = in.PackageType
	p.Description = in.Description
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	p.BookingDeadline = in.BookingDeadline
	p.BasePriceCents = in.BasePriceCents
	p.DiscountedPriceCents = in.DiscountedPriceCents
	p.DiscountEndDate = in.DiscountEndDate
	p.AgeLimit = in.AgeLimit
	p.IsVisible = in.IsVisible
}

var (
	_ TripUseCase  = (*TripService)(nil)
	_ AdminUseCase = (*TripService)(nil)
)
