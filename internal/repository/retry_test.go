package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRetryOnConflict_SucceedsAfterSerializationFailure(t *testing.T) {
	calls := 0
	err := retryOnConflict(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: sqlStateSerializationFailure}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryOnConflict_ExhaustedBecomesConflict(t *testing.T) {
	calls := 0
	err := retryOnConflict(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return &pgconn.PgError{Code: sqlStateDeadlockDetected}
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 3, calls)
}

func TestRetryOnConflict_OtherErrorsFailFast(t *testing.T) {
	calls := 0
	err := retryOnConflict(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return domain.ErrTripEnded
	})

	assert.ErrorIs(t, err, domain.ErrTripEnded)
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflict_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryOnConflict(ctx, 3, time.Hour, func(ctx context.Context) error {
		calls++
		cancel()
		return &pgconn.PgError{Code: sqlStateSerializationFailure}
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}
