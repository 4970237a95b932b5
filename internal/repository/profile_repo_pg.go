package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGProfileRepository struct {
	db *pgxpool.Pool
}

func (r *PGProfileRepository) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := r.db.QueryRow(ctx, `SELECT user_id, full_name, email, phone_number, date_of_birth
		FROM user_profiles WHERE user_id=$1`, userID).
		Scan(&p.UserID, &p.FullName, &p.Email, &p.PhoneNumber, &p.DateOfBirth)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

var _ ProfileRepository = (*PGProfileRepository)(nil)
