// Package inventory owns the room counters of travel packages. Every change to
// TotalRooms or AvailableRooms goes through these functions, inside the unit of
// work that holds the package lock, and keeps 0 <= AvailableRooms <= TotalRooms.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

// Reserve takes one room. It returns domain.ErrNoRoomsAvailable when the
// package is full; callers route that to the waiting list.
func Reserve(ctx context.Context, tx repository.Tx, pkg *domain.TravelPackage) error {
	const op = "inventory.Reserve"

	available, err := tx.DecrementRooms(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoRoomsAvailable) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	pkg.AvailableRooms = available
	return nil
}

// Release gives one room back. The counter never exceeds TotalRooms.
func Release(ctx context.Context, tx repository.Tx, pkg *domain.TravelPackage) error {
	const op = "inventory.Release"

	available, err := tx.IncrementRooms(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	pkg.AvailableRooms = available
	return nil
}

// SetCapacity changes the total number of rooms while keeping every booked
// room booked. It returns how many rooms became available; a positive value
// must be offered to the waiting list in the same unit of work.
func SetCapacity(ctx context.Context, tx repository.Tx, pkg *domain.TravelPackage, newTotal int) (int, error) {
	const op = "inventory.SetCapacity"

	if newTotal < 0 {
		return 0, domain.ErrInvalidCapacity
	}

	available := max(0, newTotal-pkg.BookedRooms())
	if err := tx.SetRooms(ctx, newTotal, available); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	freed := available - pkg.AvailableRooms
	pkg.TotalRooms = newTotal
	pkg.AvailableRooms = available
	return freed, nil
}
