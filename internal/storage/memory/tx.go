package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

// memTx mutates the store directly and records an inverse operation for each
// write. rollback replays them newest first.
type memTx struct {
	s         *Store
	packageID int64
	undo      []func()
	users     map[string]*sync.Mutex
}

func (t *memTx) PackageID() int64 { return t.packageID }

func (t *memTx) rollback() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) unlockUsers() {
	for _, l := range t.users {
		l.Unlock()
	}
}

// pkg must be called with s.mu held.
func (t *memTx) pkg() (*domain.TravelPackage, error) {
	p, ok := t.s.packages[t.packageID]
	if !ok {
		return nil, fmt.Errorf("package %d: %w", t.packageID, domain.ErrNotFound)
	}
	return p, nil
}

// savePackage records the current package row so it can be restored. Caller holds s.mu.
func (t *memTx) savePackage(p *domain.TravelPackage) {
	prev := *p
	t.undo = append(t.undo, func() { t.s.packages[prev.ID] = &prev })
}

func (t *memTx) GetPackage(_ context.Context) (*domain.TravelPackage, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, err := t.pkg()
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) UpdatePackage(_ context.Context, in *domain.TravelPackage) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, err := t.pkg()
	if err != nil {
		return err
	}
	t.savePackage(p)
	next := *in
	next.ID = p.ID
	next.TotalRooms = p.TotalRooms
	next.AvailableRooms = p.AvailableRooms
	next.CreatedAt = p.CreatedAt
	next.UpdatedAt = t.s.now()
	t.s.packages[p.ID] = &next
	return nil
}

func (t *memTx) DeletePackage(_ context.Context) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, err := t.pkg()
	if err != nil {
		return err
	}
	for id, e := range t.s.waiting {
		if e.PackageID == t.packageID {
			t.deleteWaiting(id, e)
		}
	}
	for id, it := range t.s.carts {
		if it.PackageID == t.packageID {
			prev := it
			delete(t.s.carts, id)
			t.undo = append(t.undo, func() { t.s.carts[prev.ID] = prev })
		}
	}
	for id, b := range t.s.bookings {
		if b.PackageID == t.packageID && !b.Active() {
			prev := b
			delete(t.s.bookings, id)
			t.undo = append(t.undo, func() { t.s.bookings[prev.ID] = prev })
		}
	}
	prev := p
	delete(t.s.packages, t.packageID)
	t.undo = append(t.undo, func() { t.s.packages[prev.ID] = prev })
	return nil
}

func (t *memTx) DecrementRooms(_ context.Context) (int, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, err := t.pkg()
	if err != nil {
		return 0, err
	}
	if p.AvailableRooms <= 0 {
		return 0, domain.ErrNoRoomsAvailable
	}
	t.savePackage(p)
	p.AvailableRooms--
	p.UpdatedAt = t.s.now()
	return p.AvailableRooms, nil
}

func (t *memTx) IncrementRooms(_ context.Context) (int, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, err := t.pkg()
	if err != nil {
		return 0, err
	}
	t.savePackage(p)
	p.AvailableRooms = min(p.AvailableRooms+1, p.TotalRooms)
	p.UpdatedAt = t.s.now()
	return p.AvailableRooms, nil
}

func (t *memTx) SetRooms(_ context.Context, total, available int) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, err := t.pkg()
	if err != nil {
		return err
	}
	t.savePackage(p)
	p.TotalRooms = total
	p.AvailableRooms = available
	p.UpdatedAt = t.s.now()
	return nil
}

func (t *memTx) LockUser(ctx context.Context, userID string) error {
	if _, ok := t.users[userID]; ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l := t.s.userLock(userID)
	l.Lock()
	t.users[userID] = l
	return nil
}

func (t *memTx) CountUpcomingBookings(_ context.Context, userID string, after time.Time) (int, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	count := 0
	for _, b := range t.s.bookings {
		if b.UserID == userID && b.Active() && b.DepartureDate.After(after) {
			count++
		}
	}
	return count, nil
}

func (t *memTx) HasActiveBooking(_ context.Context, userID string) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, b := range t.s.bookings {
		if b.UserID == userID && b.PackageID == t.packageID && b.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CountActiveBookings(_ context.Context) (int, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	count := 0
	for _, b := range t.s.bookings {
		if b.PackageID == t.packageID && b.Active() {
			count++
		}
	}
	return count, nil
}

func (t *memTx) InsertBooking(_ context.Context, b *domain.Booking) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b.ID = t.s.nextID()
	b.PackageID = t.packageID
	b.CreatedAt = t.s.now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	t.s.bookings[b.ID] = &cp
	id := b.ID
	t.undo = append(t.undo, func() { delete(t.s.bookings, id) })
	return nil
}

// booking must be called with s.mu held.
func (t *memTx) booking(id int64) (*domain.Booking, error) {
	b, ok := t.s.bookings[id]
	if !ok || b.PackageID != t.packageID {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
	}
	return b, nil
}

func (t *memTx) GetBooking(_ context.Context, bookingID int64) (*domain.Booking, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, err := t.booking(bookingID)
	if err != nil {
		return nil, err
	}
	cp := *b
	return &cp, nil
}

func (t *memTx) saveBooking(b *domain.Booking) {
	prev := *b
	t.undo = append(t.undo, func() { t.s.bookings[prev.ID] = &prev })
}

func (t *memTx) UpdateBookingStatus(_ context.Context, bookingID int64, status domain.BookingStatus) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, err := t.booking(bookingID)
	if err != nil {
		return err
	}
	t.saveBooking(b)
	b.Status = status
	b.UpdatedAt = t.s.now()
	return nil
}

func (t *memTx) InsertPayment(_ context.Context, p *domain.Payment) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p.ID = t.s.nextID()
	p.PaymentDate = t.s.now()
	cp := *p
	t.s.payments[p.ID] = &cp
	id := p.ID
	t.undo = append(t.undo, func() { delete(t.s.payments, id) })
	return nil
}

func (t *memTx) ConfirmBooking(_ context.Context, bookingID, paymentID int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, err := t.booking(bookingID)
	if err != nil {
		return err
	}
	if b.Status != domain.BookingStatusPendingPayment {
		return fmt.Errorf("booking %d: %w", bookingID, domain.ErrConflict)
	}
	t.saveBooking(b)
	b.Status = domain.BookingStatusConfirmed
	b.PaymentID = &paymentID
	b.UpdatedAt = t.s.now()
	return nil
}

func (t *memTx) InsertWaiting(_ context.Context, e *domain.WaitingListEntry) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	e.ID = t.s.nextID()
	e.PackageID = t.packageID
	cp := *e
	t.s.waiting[e.ID] = &cp
	id := e.ID
	t.undo = append(t.undo, func() { delete(t.s.waiting, id) })
	return nil
}

func (t *memTx) HasWaiting(_ context.Context, userID string) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, e := range t.s.waiting {
		if e.PackageID == t.packageID && e.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) FirstWaiting(_ context.Context) (*domain.WaitingListEntry, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	q := t.s.queue(t.packageID)
	if len(q) == 0 {
		return nil, domain.ErrNotFound
	}
	return &q[0], nil
}

func (t *memTx) DeleteWaiting(_ context.Context, entryID int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if e, ok := t.s.waiting[entryID]; ok && e.PackageID == t.packageID {
		t.deleteWaiting(entryID, e)
	}
	return nil
}

// deleteWaiting must be called with s.mu held.
func (t *memTx) deleteWaiting(id int64, e *domain.WaitingListEntry) {
	delete(t.s.waiting, id)
	t.undo = append(t.undo, func() { t.s.waiting[id] = e })
}

func (t *memTx) WaitingPosition(_ context.Context, e *domain.WaitingListEntry) (int, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	pos := 1
	for _, other := range t.s.waiting {
		if other.PackageID == t.packageID && other.ID != e.ID && other.Before(e) {
			pos++
		}
	}
	return pos, nil
}

var _ repository.Tx = (*memTx)(nil)
