package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGNotificationRepository struct {
	db *pgxpool.Pool
}

func (r *PGNotificationRepository) Create(ctx context.Context, n *domain.UserNotification) error {
	return r.db.QueryRow(ctx, `INSERT INTO user_notifications (user_id, message, is_read)
		VALUES ($1, $2, false) RETURNING id, created_at`, n.UserID, n.Message).
		Scan(&n.ID, &n.CreatedAt)
}

func (r *PGNotificationRepository) ListByUser(ctx context.Context, userID string) ([]domain.UserNotification, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, message, is_read, created_at FROM user_notifications
		WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.UserNotification, 0)
	for rows.Next() {
		var n domain.UserNotification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *PGNotificationRepository) MarkRead(ctx context.Context, id int64, userID string) error {
	res, err := r.db.Exec(ctx, `UPDATE user_notifications SET is_read=true WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("notification %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

var _ NotificationRepository = (*PGNotificationRepository)(nil)
