package repository

import (
	"context"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGWaitlistRepository struct {
	db *pgxpool.Pool
}

func (r *PGWaitlistRepository) ListByPackage(ctx context.Context, packageID int64) ([]domain.WaitingListEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, package_id, user_id, created_at FROM waiting_list_entries
		WHERE package_id=$1 ORDER BY created_at, id`, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.WaitingListEntry, 0)
	for rows.Next() {
		var e domain.WaitingListEntry
		if err := rows.Scan(&e.ID, &e.PackageID, &e.UserID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PGWaitlistRepository) CountByPackage(ctx context.Context, packageID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM waiting_list_entries WHERE package_id=$1`, packageID).Scan(&count)
	return count, err
}

var _ WaitlistRepository = (*PGWaitlistRepository)(nil)
