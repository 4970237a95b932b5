package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func newPackage(t *testing.T, s *Store, name string, rooms int, start time.Time) *domain.TravelPackage {
	t.Helper()
	p := &domain.TravelPackage{
		Name:           name,
		Destination:    "Lisbon",
		Country:        "Portugal",
		PackageType:    "city",
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 5),
		BasePriceCents: 100000,
		TotalRooms:     rooms,
		AvailableRooms: rooms,
		IsVisible:      true,
	}
	require.NoError(t, s.Packages().Create(context.Background(), p))
	return p
}

func TestInPackageTx_RollbackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := newPackage(t, s, "Lisbon", 2, today.AddDate(0, 1, 0))

	boom := errors.New("boom")
	err := s.InPackageTx(ctx, p.ID, func(ctx context.Context, tx repository.Tx) error {
		_, err := tx.DecrementRooms(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.InsertBooking(ctx, &domain.Booking{UserID: "u1", Status: domain.BookingStatusPendingPayment}))
		require.NoError(t, tx.InsertWaiting(ctx, &domain.WaitingListEntry{UserID: "u2", CreatedAt: today}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Packages().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableRooms)

	bookings, err := s.Bookings().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	n, err := s.Waitlist().CountByPackage(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInPackageTx_UnknownPackage(t *testing.T) {
	s := NewStore()
	err := s.InPackageTx(context.Background(), 42, func(context.Context, repository.Tx) error {
		t.Fatal("unit of work must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecrementRooms_Concurrent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := newPackage(t, s, "Porto", 5, today.AddDate(0, 1, 0))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.InPackageTx(ctx, p.ID, func(ctx context.Context, tx repository.Tx) error {
				_, err := tx.DecrementRooms(ctx)
				return err
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrNoRoomsAvailable)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, success)
	got, err := s.Packages().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.AvailableRooms)
}

func TestIncrementRooms_Clamped(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := newPackage(t, s, "Faro", 1, today.AddDate(0, 1, 0))

	err := s.InPackageTx(ctx, p.ID, func(ctx context.Context, tx repository.Tx) error {
		n, err := tx.IncrementRooms(ctx)
		assert.Equal(t, 1, n)
		return err
	})
	require.NoError(t, err)
}

func TestWaitingPosition_TiesByInsertion(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := newPackage(t, s, "Madeira", 0, today.AddDate(0, 1, 0))

	var entries []*domain.WaitingListEntry
	err := s.InPackageTx(ctx, p.ID, func(ctx context.Context, tx repository.Tx) error {
		for _, u := range []string{"a", "b", "c"} {
			e := &domain.WaitingListEntry{UserID: u, CreatedAt: today}
			if err := tx.InsertWaiting(ctx, e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		for i, e := range entries {
			pos, err := tx.WaitingPosition(ctx, e)
			require.NoError(t, err)
			assert.Equal(t, i+1, pos)
		}
		first, err := tx.FirstWaiting(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a", first.UserID)
		return nil
	})
	require.NoError(t, err)
}

func TestConfirmBooking_StaleStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := newPackage(t, s, "Azores", 1, today.AddDate(0, 1, 0))

	err := s.InPackageTx(ctx, p.ID, func(ctx context.Context, tx repository.Tx) error {
		b := &domain.Booking{UserID: "u1", Status: domain.BookingStatusCancelled}
		require.NoError(t, tx.InsertBooking(ctx, b))
		return tx.ConfirmBooking(ctx, b.ID, 7)
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSearch(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	beach := newPackage(t, s, "Beach", 3, today.AddDate(0, 2, 0))
	city := newPackage(t, s, "City", 3, today.AddDate(0, 1, 0))
	old := newPackage(t, s, "Old", 3, today.AddDate(0, -1, 0))
	hidden := newPackage(t, s, "Hidden", 3, today.AddDate(0, 1, 0))

	err := s.InPackageTx(ctx, hidden.ID, func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.GetPackage(ctx)
		require.NoError(t, err)
		p.IsVisible = false
		return tx.UpdatePackage(ctx, p)
	})
	require.NoError(t, err)

	err = s.InPackageTx(ctx, beach.ID, func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.GetPackage(ctx)
		require.NoError(t, err)
		price := int64(50000)
		end := today.AddDate(0, 0, 3)
		p.PackageType = "beach"
		p.BasePriceCents = 200000
		p.DiscountedPriceCents = &price
		p.DiscountEndDate = &end
		return tx.UpdatePackage(ctx, p)
	})
	require.NoError(t, err)

	got, err := s.Packages().Search(ctx, repository.TripFilter{Today: today})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, city.ID, got[0].ID)
	assert.Equal(t, beach.ID, got[1].ID)

	got, err = s.Packages().Search(ctx, repository.TripFilter{Today: today, IncludeEnded: true, IncludeHidden: true, Sort: repository.SortByName})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []int64{beach.ID, city.ID, hidden.ID, old.ID}, []int64{got[0].ID, got[1].ID, got[2].ID, got[3].ID})

	got, err = s.Packages().Search(ctx, repository.TripFilter{Today: today, DiscountedOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, beach.ID, got[0].ID)

	got, err = s.Packages().Search(ctx, repository.TripFilter{Today: today, Category: "city", Sort: repository.SortByPriceDesc})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, city.ID, got[0].ID)
}

func TestSearch_PriceSortUsesDiscount(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	discounted := newPackage(t, s, "Discounted", 3, today.AddDate(0, 1, 0))
	plain := newPackage(t, s, "Plain", 3, today.AddDate(0, 1, 0))

	err := s.InPackageTx(ctx, discounted.ID, func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.GetPackage(ctx)
		require.NoError(t, err)
		price := int64(100)
		end := today.AddDate(0, 0, 2)
		p.BasePriceCents = 1000
		p.DiscountedPriceCents = &price
		p.DiscountEndDate = &end
		return tx.UpdatePackage(ctx, p)
	})
	require.NoError(t, err)
	err = s.InPackageTx(ctx, plain.ID, func(ctx context.Context, tx repository.Tx) error {
		p, err := tx.GetPackage(ctx)
		require.NoError(t, err)
		p.BasePriceCents = 500
		return tx.UpdatePackage(ctx, p)
	})
	require.NoError(t, err)

	got, err := s.Packages().Search(ctx, repository.TripFilter{Today: today, Sort: repository.SortByPriceAsc})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []int64{discounted.ID, plain.ID}, []int64{got[0].ID, got[1].ID})

	got, err = s.Packages().Search(ctx, repository.TripFilter{Today: today, Sort: repository.SortByPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{plain.ID, discounted.ID}, []int64{got[0].ID, got[1].ID})

	// после окончания скидки снова действует базовая цена
	later := today.AddDate(0, 0, 5)
	got, err = s.Packages().Search(ctx, repository.TripFilter{Today: later, Sort: repository.SortByPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []int64{plain.ID, discounted.ID}, []int64{got[0].ID, got[1].ID})
}

func TestSearch_DateDescAndRoomSorts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	early := newPackage(t, s, "Early", 5, today.AddDate(0, 1, 0))
	late := newPackage(t, s, "Late", 2, today.AddDate(0, 2, 0))
	mid := newPackage(t, s, "Mid", 8, today.AddDate(0, 1, 15))

	ids := func(ps []domain.TravelPackage) []int64 {
		out := make([]int64, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	got, err := s.Packages().Search(ctx, repository.TripFilter{Today: today, Sort: repository.SortByDateDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{late.ID, mid.ID, early.ID}, ids(got))

	got, err = s.Packages().Search(ctx, repository.TripFilter{Today: today, Sort: repository.SortByRoomsAsc})
	require.NoError(t, err)
	assert.Equal(t, []int64{late.ID, early.ID, mid.ID}, ids(got))

	got, err = s.Packages().Search(ctx, repository.TripFilter{Today: today, Sort: repository.SortByRoomsDesc})
	require.NoError(t, err)
	assert.Equal(t, []int64{mid.ID, early.ID, late.ID}, ids(got))
}

func TestDeletePackage_RemovesWaitlistAndCart(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	p := newPackage(t, s, "Sintra", 0, today.AddDate(0, 1, 0))
	require.NoError(t, s.Carts().Add(ctx, &domain.CartItem{UserID: "u1", PackageID: p.ID}))

	err := s.InPackageTx(ctx, p.ID, func(ctx context.Context, tx repository.Tx) error {
		require.NoError(t, tx.InsertWaiting(ctx, &domain.WaitingListEntry{UserID: "u2", CreatedAt: today}))
		return tx.DeletePackage(ctx)
	})
	require.NoError(t, err)

	_, err = s.Packages().GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	items, err := s.Carts().List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, items)
	n, err := s.Waitlist().CountByPackage(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotifications_MarkReadOwnership(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	n := &domain.UserNotification{UserID: "u1", Message: "hi"}
	require.NoError(t, s.Notifications().Create(ctx, n))

	assert.ErrorIs(t, s.Notifications().MarkRead(ctx, n.ID, "u2"), domain.ErrNotFound)
	require.NoError(t, s.Notifications().MarkRead(ctx, n.ID, "u1"))

	list, err := s.Notifications().ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}
