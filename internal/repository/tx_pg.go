package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// pgTx runs every statement on the transaction that holds the package row lock.
type pgTx struct {
	tx        pgx.Tx
	packageID int64
}

func (t *pgTx) PackageID() int64 { return t.packageID }

func (t *pgTx) GetPackage(ctx context.Context) (*domain.TravelPackage, error) {
	return getPackage(ctx, t.tx, t.packageID)
}

// UpdatePackage writes the descriptive fields. Room counters are left to SetRooms.
func (t *pgTx) UpdatePackage(ctx context.Context, p *domain.TravelPackage) error {
	_, err := t.tx.Exec(ctx, `UPDATE travel_packages SET name=$2, destination=$3, country=$4, package_type=$5,
		description=$6, start_date=$7, end_date=$8, booking_deadline=$9, base_price_cents=$10,
		discounted_price_cents=$11, discount_end_date=$12, age_limit=$13, is_visible=$14, updated_at=now()
		WHERE id=$1`,
		t.packageID, p.Name, p.Destination, p.Country, p.PackageType, p.Description, p.StartDate, p.EndDate,
		p.BookingDeadline, p.BasePriceCents, p.DiscountedPriceCents, p.DiscountEndDate, p.AgeLimit, p.IsVisible)
	return err
}

func (t *pgTx) DeletePackage(ctx context.Context) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM waiting_list_entries WHERE package_id=$1`, t.packageID); err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE package_id=$1`, t.packageID); err != nil {
		return err
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM bookings WHERE package_id=$1 AND status=$2`,
		t.packageID, domain.BookingStatusCancelled); err != nil {
		return err
	}
	_, err := t.tx.Exec(ctx, `DELETE FROM travel_packages WHERE id=$1`, t.packageID)
	return err
}

func (t *pgTx) DecrementRooms(ctx context.Context) (int, error) {
	var available int
	err := t.tx.QueryRow(ctx, `UPDATE travel_packages SET available_rooms = available_rooms - 1, updated_at = now()
		WHERE id=$1 AND available_rooms > 0 RETURNING available_rooms`, t.packageID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNoRoomsAvailable
		}
		return 0, err
	}
	return available, nil
}

func (t *pgTx) IncrementRooms(ctx context.Context) (int, error) {
	var available int
	err := t.tx.QueryRow(ctx, `UPDATE travel_packages SET available_rooms = LEAST(available_rooms + 1, total_rooms),
		updated_at = now() WHERE id=$1 RETURNING available_rooms`, t.packageID).Scan(&available)
	return available, err
}

func (t *pgTx) SetRooms(ctx context.Context, total, available int) error {
	_, err := t.tx.Exec(ctx, `UPDATE travel_packages SET total_rooms=$2, available_rooms=$3, updated_at=now()
		WHERE id=$1`, t.packageID, total, available)
	return err
}

// LockUser takes a transaction-scoped advisory lock keyed by the user id.
func (t *pgTx) LockUser(ctx context.Context, userID string) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID)
	return err
}

func (t *pgTx) CountUpcomingBookings(ctx context.Context, userID string, after time.Time) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id=$1 AND status <> $2 AND departure_date > $3`,
		userID, domain.BookingStatusCancelled, after).Scan(&count)
	return count, err
}

func (t *pgTx) HasActiveBooking(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE user_id=$1 AND package_id=$2 AND status <> $3)`,
		userID, t.packageID, domain.BookingStatusCancelled).Scan(&exists)
	return exists, err
}

func (t *pgTx) CountActiveBookings(ctx context.Context) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE package_id=$1 AND status <> $2`,
		t.packageID, domain.BookingStatusCancelled).Scan(&count)
	return count, err
}

func (t *pgTx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	return t.tx.QueryRow(ctx, `INSERT INTO bookings (user_id, package_id, total_price_cents, booking_date,
		departure_date, cancellation_allowed_until, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		b.UserID, t.packageID, b.TotalPriceCents, b.BookingDate, b.DepartureDate, b.CancellationAllowedUntil, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (t *pgTx) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := scanBooking(t.tx.QueryRow(ctx, bookingSelect+` WHERE id=$1 AND package_id=$2`, bookingID, t.packageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, domain.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (t *pgTx) UpdateBookingStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error {
	res, err := t.tx.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND package_id=$3`,
		status, bookingID, t.packageID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("booking %d: %w", bookingID, domain.ErrNotFound)
	}
	return nil
}

func (t *pgTx) InsertPayment(ctx context.Context, p *domain.Payment) error {
	return t.tx.QueryRow(ctx, `INSERT INTO payments (user_id, amount_cents, payment_method, transaction_reference, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, payment_date`,
		p.UserID, p.AmountCents, p.Method, p.TransactionReference, p.Status).
		Scan(&p.ID, &p.PaymentDate)
}

func (t *pgTx) ConfirmBooking(ctx context.Context, bookingID, paymentID int64) error {
	res, err := t.tx.Exec(ctx, `UPDATE bookings SET status=$1, payment_id=$2, updated_at=now()
		WHERE id=$3 AND package_id=$4 AND status=$5`,
		domain.BookingStatusConfirmed, paymentID, bookingID, t.packageID, domain.BookingStatusPendingPayment)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("booking %d: %w", bookingID, domain.ErrConflict)
	}
	return nil
}

func (t *pgTx) InsertWaiting(ctx context.Context, e *domain.WaitingListEntry) error {
	return t.tx.QueryRow(ctx, `INSERT INTO waiting_list_entries (package_id, user_id, created_at)
		VALUES ($1, $2, $3) RETURNING id`, t.packageID, e.UserID, e.CreatedAt).
		Scan(&e.ID)
}

func (t *pgTx) HasWaiting(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM waiting_list_entries WHERE package_id=$1 AND user_id=$2)`,
		t.packageID, userID).Scan(&exists)
	return exists, err
}

func (t *pgTx) FirstWaiting(ctx context.Context) (*domain.WaitingListEntry, error) {
	var e domain.WaitingListEntry
	err := t.tx.QueryRow(ctx, `SELECT id, package_id, user_id, created_at FROM waiting_list_entries
		WHERE package_id=$1 ORDER BY created_at, id LIMIT 1`, t.packageID).
		Scan(&e.ID, &e.PackageID, &e.UserID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (t *pgTx) DeleteWaiting(ctx context.Context, entryID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM waiting_list_entries WHERE id=$1 AND package_id=$2`, entryID, t.packageID)
	return err
}

func (t *pgTx) WaitingPosition(ctx context.Context, e *domain.WaitingListEntry) (int, error) {
	var ahead int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM waiting_list_entries WHERE package_id=$1
		AND (created_at < $2 OR (created_at = $2 AND id < $3))`, t.packageID, e.CreatedAt, e.ID).Scan(&ahead)
	return ahead + 1, err
}

var _ Tx = (*pgTx)(nil)
