package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingSelect = `SELECT id, user_id, package_id, total_price_cents, booking_date, departure_date,
	cancellation_allowed_until, status, payment_id, created_at, updated_at FROM bookings`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, bookingSelect+` WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return queryBookings(ctx, r.db, bookingSelect+` WHERE user_id=$1 ORDER BY booking_date DESC, id DESC`, userID)
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return queryBookings(ctx, r.db, bookingSelect+` ORDER BY booking_date DESC, id DESC`)
}

// ListPendingBefore returns unpaid bookings created before cutoff, oldest first.
func (r *PGBookingRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	return queryBookings(ctx, r.db, bookingSelect+` WHERE status=$1 AND booking_date < $2 ORDER BY booking_date, id`,
		domain.BookingStatusPendingPayment, cutoff)
}

func queryBookings(ctx context.Context, q querier, sql string, args ...any) ([]domain.Booking, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.PackageID, &b.TotalPriceCents, &b.BookingDate, &b.DepartureDate,
		&b.CancellationAllowedUntil, &b.Status, &b.PaymentID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
