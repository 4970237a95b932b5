package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

// Store is the persistence boundary. Every mutation of a package's rooms,
// bookings or waiting list happens inside InPackageTx, which serializes all
// units of work for the same package and commits or rolls back as a whole.
type Store interface {
	Packages() PackageRepository
	Bookings() BookingRepository
	Waitlist() WaitlistRepository
	Notifications() NotificationRepository
	Carts() CartRepository
	Profiles() ProfileRepository

	InPackageTx(ctx context.Context, packageID int64, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is a unit of work holding the lock on a single package.
type Tx interface {
	PackageID() int64
	GetPackage(ctx context.Context) (*domain.TravelPackage, error)
	UpdatePackage(ctx context.Context, pkg *domain.TravelPackage) error
	DeletePackage(ctx context.Context) error

	// Room counters. Only the inventory ledger calls these.
	DecrementRooms(ctx context.Context) (int, error)
	IncrementRooms(ctx context.Context) (int, error)
	SetRooms(ctx context.Context, total, available int) error

	// LockUser serializes units of work of the same user until the end of the transaction.
	LockUser(ctx context.Context, userID string) error
	CountUpcomingBookings(ctx context.Context, userID string, after time.Time) (int, error)
	HasActiveBooking(ctx context.Context, userID string) (bool, error)
	CountActiveBookings(ctx context.Context) (int, error)
	InsertBooking(ctx context.Context, booking *domain.Booking) error
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error
	InsertPayment(ctx context.Context, payment *domain.Payment) error
	ConfirmBooking(ctx context.Context, bookingID, paymentID int64) error

	InsertWaiting(ctx context.Context, entry *domain.WaitingListEntry) error
	HasWaiting(ctx context.Context, userID string) (bool, error)
	FirstWaiting(ctx context.Context) (*domain.WaitingListEntry, error)
	DeleteWaiting(ctx context.Context, entryID int64) error
	WaitingPosition(ctx context.Context, entry *domain.WaitingListEntry) (int, error)
}

// TripSort orders the catalogue. Price sorts use the effective price on
// TripFilter.Today.
type TripSort string

const (
	SortByDate      TripSort = "date"
	SortByDateDesc  TripSort = "date_desc"
	SortByPriceAsc  TripSort = "price_asc"
	SortByPriceDesc TripSort = "price_desc"
	SortByRoomsAsc  TripSort = "rooms_asc"
	SortByRoomsDesc TripSort = "rooms_desc"
	SortByName      TripSort = "name"
)

type TripFilter struct {
	Search         string
	Category       string
	DiscountedOnly bool
	Sort           TripSort
	// IncludeEnded keeps trips whose end date has passed (admin view).
	IncludeEnded bool
	// IncludeHidden keeps invisible trips (admin view).
	IncludeHidden bool
	Today         time.Time
}

type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.TravelPackage) error
	GetByID(ctx context.Context, id int64) (*domain.TravelPackage, error)
	Search(ctx context.Context, filter TripFilter) ([]domain.TravelPackage, error)
}

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

type WaitlistRepository interface {
	ListByPackage(ctx context.Context, packageID int64) ([]domain.WaitingListEntry, error)
	CountByPackage(ctx context.Context, packageID int64) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.UserNotification) error
	ListByUser(ctx context.Context, userID string) ([]domain.UserNotification, error)
	MarkRead(ctx context.Context, id int64, userID string) error
}

type CartRepository interface {
	Add(ctx context.Context, item *domain.CartItem) error
	Remove(ctx context.Context, id int64, userID string) error
	List(ctx context.Context, userID string) ([]domain.CartItem, error)
	Clear(ctx context.Context, userID string) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
}
