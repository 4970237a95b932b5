package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGCartRepository struct {
	db *pgxpool.Pool
}

// Add inserts the item unless the user already has the package in the cart.
func (r *PGCartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	return r.db.QueryRow(ctx, `INSERT INTO cart_items (user_id, package_id) VALUES ($1, $2)
		ON CONFLICT (user_id, package_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, added_at`, item.UserID, item.PackageID).
		Scan(&item.ID, &item.AddedAt)
}

func (r *PGCartRepository) Remove(ctx context.Context, id int64, userID string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("cart item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *PGCartRepository) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, package_id, added_at FROM cart_items
		WHERE user_id=$1 ORDER BY added_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.PackageID, &it.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGCartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}

var _ CartRepository = (*PGCartRepository)(nil)
