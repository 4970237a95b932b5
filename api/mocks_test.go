package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/trips"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

type MockTripUseCase struct {
	mock.Mock
}

func (m *MockTripUseCase) List(ctx context.Context, q trips.Query) ([]domain.TravelPackage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TravelPackage), args.Error(1)
}

func (m *MockTripUseCase) GetByID(ctx context.Context, id int64) (*domain.TravelPackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TravelPackage), args.Error(1)
}

type MockWaitlistUseCase struct {
	mock.Mock
}

func (m *MockWaitlistUseCase) Join(ctx context.Context, userID string, packageID int64) (*waitlist.JoinResult, error) {
	args := m.Called(ctx, userID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlist.JoinResult), args.Error(1)
}

func (m *MockWaitlistUseCase) Info(ctx context.Context, packageID int64) (*waitlist.Info, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitlist.Info), args.Error(1)
}

func (m *MockWaitlistUseCase) List(ctx context.Context, packageID int64) ([]domain.WaitingListEntry, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WaitingListEntry), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, userID string, packageID int64) (*domain.Booking, error) {
	args := m.Called(ctx, userID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Pay(ctx context.Context, input booking.PayInput) (*booking.PayResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.PayResult), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, userID string, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Get(ctx context.Context, userID string, bookingID int64) (*booking.Details, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Details), args.Error(1)
}

func (m *MockBookingUseCase) MyBookings(ctx context.Context, userID string) ([]booking.Details, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.Details), args.Error(1)
}

func (m *MockBookingUseCase) Itinerary(ctx context.Context, userID string, bookingID int64) ([]byte, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBookingUseCase) ListAll(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockCartUseCase struct {
	mock.Mock
}

func (m *MockCartUseCase) AddToCart(ctx context.Context, userID string, packageID int64) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *MockCartUseCase) RemoveFromCart(ctx context.Context, userID string, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *MockCartUseCase) Cart(ctx context.Context, userID string) ([]booking.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.CartLine), args.Error(1)
}

func (m *MockCartUseCase) Checkout(ctx context.Context, userID string) (*booking.CheckoutResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CheckoutResult), args.Error(1)
}

type MockNotificationUseCase struct {
	mock.Mock
}

func (m *MockNotificationUseCase) Notifications(ctx context.Context, userID string) ([]domain.UserNotification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserNotification), args.Error(1)
}

func (m *MockNotificationUseCase) MarkNotificationRead(ctx context.Context, userID string, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}
