package booking

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

type NotificationUseCase interface {
	Notifications(ctx context.Context, userID string) ([]domain.UserNotification, error)
	MarkNotificationRead(ctx context.Context, userID string, id int64) error
}

// Notifications lists the user's in-app notifications, newest first.
func (s *BookingService) Notifications(ctx context.Context, userID string) ([]domain.UserNotification, error) {
	const op = "booking.BookingService.Notifications"

	list, err := s.store.Notifications().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *BookingService) MarkNotificationRead(ctx context.Context, userID string, id int64) error {
	const op = "booking.BookingService.MarkNotificationRead"

	if err := s.store.Notifications().MarkRead(ctx, id, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var _ NotificationUseCase = (*BookingService)(nil)
