package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PGStore struct {
	db            *pgxpool.Pool
	packages      *PGPackageRepository
	bookings      *PGBookingRepository
	waitlist      *PGWaitlistRepository
	notifications *PGNotificationRepository
	carts         *PGCartRepository
	profiles      *PGProfileRepository
	maxAttempts   int
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{
		db:            db,
		packages:      &PGPackageRepository{db: db},
		bookings:      &PGBookingRepository{db: db},
		waitlist:      &PGWaitlistRepository{db: db},
		notifications: &PGNotificationRepository{db: db},
		carts:         &PGCartRepository{db: db},
		profiles:      &PGProfileRepository{db: db},
		maxAttempts:   defaultMaxAttempts,
	}
}

func (s *PGStore) Packages() PackageRepository           { return s.packages }
func (s *PGStore) Bookings() BookingRepository           { return s.bookings }
func (s *PGStore) Waitlist() WaitlistRepository          { return s.waitlist }
func (s *PGStore) Notifications() NotificationRepository { return s.notifications }
func (s *PGStore) Carts() CartRepository                 { return s.carts }
func (s *PGStore) Profiles() ProfileRepository           { return s.profiles }

// InPackageTx opens a transaction, takes the row lock on the package and runs
// fn. Serialization failures and deadlocks restart the whole unit of work.
func (s *PGStore) InPackageTx(ctx context.Context, packageID int64, fn func(ctx context.Context, tx Tx) error) error {
	return retryOnConflict(ctx, s.maxAttempts, defaultBaseDelay, func(ctx context.Context) error {
		return s.runPackageTx(ctx, packageID, fn)
	})
}

func (s *PGStore) runPackageTx(ctx context.Context, packageID int64, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `SELECT id FROM travel_packages WHERE id=$1 FOR UPDATE`, packageID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("package %d: %w", packageID, domain.ErrNotFound)
		}
		return err
	}

	if err := fn(ctx, &pgTx{tx: tx, packageID: packageID}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var _ Store = (*PGStore)(nil)
