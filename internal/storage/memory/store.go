// Package memory is an in-process implementation of repository.Store used for
// local runs and tests. A unit of work holds a per-package mutex for its whole
// duration and keeps an undo log, so a failed unit of work leaves no trace.
// Reads outside a unit of work may observe uncommitted writes.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

type Store struct {
	mu            sync.Mutex
	seq           int64
	packages      map[int64]*domain.TravelPackage
	bookings      map[int64]*domain.Booking
	waiting       map[int64]*domain.WaitingListEntry
	payments      map[int64]*domain.Payment
	notifications map[int64]*domain.UserNotification
	carts         map[int64]*domain.CartItem
	profiles      map[string]*domain.UserProfile
	now           func() time.Time

	lockMu       sync.Mutex
	packageLocks map[int64]*sync.Mutex
	userLocks    map[string]*sync.Mutex
}

type Option func(*Store)

// WithClock sets the source of row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		packages:      make(map[int64]*domain.TravelPackage),
		bookings:      make(map[int64]*domain.Booking),
		waiting:       make(map[int64]*domain.WaitingListEntry),
		payments:      make(map[int64]*domain.Payment),
		notifications: make(map[int64]*domain.UserNotification),
		carts:         make(map[int64]*domain.CartItem),
		profiles:      make(map[string]*domain.UserProfile),
		now:           time.Now,
		packageLocks:  make(map[int64]*sync.Mutex),
		userLocks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Packages() repository.PackageRepository           { return packageRepo{s} }
func (s *Store) Bookings() repository.BookingRepository           { return bookingRepo{s} }
func (s *Store) Waitlist() repository.WaitlistRepository          { return waitlistRepo{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }
func (s *Store) Carts() repository.CartRepository                 { return cartRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository           { return profileRepo{s} }

// PutProfile stores or replaces a user profile.
func (s *Store) PutProfile(p domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = &p
}

// PaymentsOf returns the user's payment records ordered by id.
func (s *Store) PaymentsOf(userID string) []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Payment, 0)
	for _, p := range s.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) InPackageTx(ctx context.Context, packageID int64, fn func(ctx context.Context, tx repository.Tx) error) error {
	lock := s.packageLock(packageID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	_, ok := s.packages[packageID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("package %d: %w", packageID, domain.ErrNotFound)
	}

	tx := &memTx{s: s, packageID: packageID, users: make(map[string]*sync.Mutex)}
	defer tx.unlockUsers()

	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *Store) packageLock(id int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.packageLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.packageLocks[id] = l
	}
	return l
}

func (s *Store) userLock(id string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.userLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[id] = l
	}
	return l
}

// nextID must be called with s.mu held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

type packageRepo struct{ s *Store }

func (r packageRepo) Create(_ context.Context, p *domain.TravelPackage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.packages[p.ID] = &cp
	return nil
}

func (r packageRepo) GetByID(_ context.Context, id int64) (*domain.TravelPackage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.packages[id]
	if !ok {
		return nil, fmt.Errorf("package %d: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r packageRepo) Search(_ context.Context, f repository.TripFilter) ([]domain.TravelPackage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	today := domain.DateOf(f.Today)
	search := strings.ToLower(f.Search)
	out := make([]domain.TravelPackage, 0)
	for _, p := range r.s.packages {
		if p.BookingDeadline != nil && domain.DateOf(*p.BookingDeadline).Before(today) {
			continue
		}
		if !f.IncludeHidden && !p.IsVisible {
			continue
		}
		if !f.IncludeEnded && domain.DateOf(p.EndDate).Before(today) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Destination), search) &&
			!strings.Contains(strings.ToLower(p.Country), search) {
			continue
		}
		if f.Category != "" && p.PackageType != f.Category {
			continue
		}
		if f.DiscountedOnly && !p.DiscountActive(today) {
			continue
		}
		out = append(out, *p)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch f.Sort {
		case repository.SortByPriceAsc:
			if pa, pb := a.PriceAt(today), b.PriceAt(today); pa != pb {
				return pa < pb
			}
		case repository.SortByPriceDesc:
			if pa, pb := a.PriceAt(today), b.PriceAt(today); pa != pb {
				return pa > pb
			}
		case repository.SortByDateDesc:
			if !a.StartDate.Equal(b.StartDate) {
				return a.StartDate.After(b.StartDate)
			}
		case repository.SortByRoomsAsc:
			if a.AvailableRooms != b.AvailableRooms {
				return a.AvailableRooms < b.AvailableRooms
			}
		case repository.SortByRoomsDesc:
			if a.AvailableRooms != b.AvailableRooms {
				return a.AvailableRooms > b.AvailableRooms
			}
		case repository.SortByName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		default:
			if !a.StartDate.Equal(b.StartDate) {
				return a.StartDate.Before(b.StartDate)
			}
		}
		return a.ID < b.ID
	})
	return out, nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (r bookingRepo) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool { return b.UserID == userID }, true), nil
}

func (r bookingRepo) List(_ context.Context) ([]domain.Booking, error) {
	return r.list(func(*domain.Booking) bool { return true }, true), nil
}

func (r bookingRepo) ListPendingBefore(_ context.Context, cutoff time.Time) ([]domain.Booking, error) {
	return r.list(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusPendingPayment && b.BookingDate.Before(cutoff)
	}, false), nil
}

func (r bookingRepo) list(match func(*domain.Booking) bool, newestFirst bool) []domain.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range r.s.bookings {
		if match(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookingDate.Equal(out[j].BookingDate) {
			return out[i].BookingDate.Before(out[j].BookingDate) != newestFirst
		}
		return (out[i].ID < out[j].ID) != newestFirst
	})
	return out
}

type waitlistRepo struct{ s *Store }

func (r waitlistRepo) ListByPackage(_ context.Context, packageID int64) ([]domain.WaitingListEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.queue(packageID), nil
}

func (r waitlistRepo) CountByPackage(_ context.Context, packageID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.queue(packageID)), nil
}

// queue returns the package's entries in promotion order. Caller holds s.mu.
func (s *Store) queue(packageID int64) []domain.WaitingListEntry {
	out := make([]domain.WaitingListEntry, 0)
	for _, e := range s.waiting {
		if e.PackageID == packageID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(&out[j]) })
	return out
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *domain.UserNotification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = r.s.nextID()
	n.CreatedAt = r.s.now()
	cp := *n
	r.s.notifications[n.ID] = &cp
	return nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID string) ([]domain.UserNotification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.UserNotification, 0)
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r notificationRepo) MarkRead(_ context.Context, id int64, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification %d: %w", id, domain.ErrNotFound)
	}
	n.IsRead = true
	return nil
}

type cartRepo struct{ s *Store }

func (r cartRepo) Add(_ context.Context, item *domain.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.carts {
		if it.UserID == item.UserID && it.PackageID == item.PackageID {
			*item = *it
			return nil
		}
	}
	item.ID = r.s.nextID()
	item.AddedAt = r.s.now()
	cp := *item
	r.s.carts[item.ID] = &cp
	return nil
}

func (r cartRepo) Remove(_ context.Context, id int64, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.carts[id]
	if !ok || it.UserID != userID {
		return fmt.Errorf("cart item %d: %w", id, domain.ErrNotFound)
	}
	delete(r.s.carts, id)
	return nil
}

func (r cartRepo) List(_ context.Context, userID string) ([]domain.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.CartItem, 0)
	for _, it := range r.s.carts {
		if it.UserID == userID {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r cartRepo) Clear(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.carts {
		if it.UserID == userID {
			delete(r.s.carts, id)
		}
	}
	return nil
}

type profileRepo struct{ s *Store }

func (r profileRepo) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

var _ repository.Store = (*Store)(nil)
