package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/handlers/slogdiscard"
	"github.com/Domenick1991/travelbooking/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func TestEmitter_Notify(t *testing.T) {
	store := memory.NewStore()
	store.PutProfile(domain.UserProfile{UserID: "u1", Email: "u1@example.com"})
	pub := &MockPublisher{}
	e := NewEmitter(slogdiscard.NewDiscardLogger(), store.Notifications(), store.Profiles(), WithPublisher(pub, "notifications"))

	ctx := context.Background()
	pub.On("Publish", ctx, "notifications", "3", mock.MatchedBy(func(ev kafka.NotificationEvent) bool {
		return ev.Type == kafka.EventWaitlistPromoted && ev.Email == "u1@example.com" && ev.BookingID == 9
	})).Return(nil).Once()

	e.Notify(ctx, Notification{UserID: "u1", Type: kafka.EventWaitlistPromoted, Message: "room", BookingID: 9, PackageID: 3})

	pub.AssertExpectations(t)
	list, err := store.Notifications().ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "room", list[0].Message)
	assert.False(t, list[0].IsRead)
}

func TestEmitter_PublishFailureSwallowed(t *testing.T) {
	store := memory.NewStore()
	pub := &MockPublisher{}
	e := NewEmitter(slogdiscard.NewDiscardLogger(), store.Notifications(), store.Profiles(), WithPublisher(pub, "notifications"))

	ctx := context.Background()
	pub.On("Publish", ctx, "notifications", "1", mock.Anything).Return(errors.New("broker down")).Once()

	assert.NotPanics(t, func() {
		e.Notify(ctx, Notification{UserID: "u2", Type: kafka.EventBookingExpired, Message: "expired", PackageID: 1})
	})

	pub.AssertExpectations(t)
	list, err := store.Notifications().ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEmitter_WithoutPublisher(t *testing.T) {
	store := memory.NewStore()
	e := NewEmitter(slogdiscard.NewDiscardLogger(), store.Notifications(), store.Profiles())

	e.Notify(context.Background(), Notification{UserID: "u3", Message: "hello"})

	list, err := store.Notifications().ListByUser(context.Background(), "u3")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
