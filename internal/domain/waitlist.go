package domain

import "time"

type WaitingListEntry struct {
	ID        int64
	PackageID int64
	UserID    string
	CreatedAt time.Time
}

// Before orders entries by creation time, falling back to insertion order.
func (e *WaitingListEntry) Before(other *WaitingListEntry) bool {
	if e.CreatedAt.Equal(other.CreatedAt) {
		return e.ID < other.ID
	}
	return e.CreatedAt.Before(other.CreatedAt)
}

// EstimatedWaitDays is the rough wait shown when joining at the given position.
func EstimatedWaitDays(position int) int {
	return position * 2
}

type UserNotification struct {
	ID        int64
	UserID    string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

type CartItem struct {
	ID        int64
	UserID    string
	PackageID int64
	AddedAt   time.Time
}
