package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/identity"
	resp "github.com/Domenick1991/travelbooking/internal/lib/api/response"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/handlers/slogdiscard"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/trips"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

var testSecret = []byte("api-test-secret")

type env struct {
	router        *gin.Engine
	trips         *MockTripUseCase
	waitlist      *MockWaitlistUseCase
	bookings      *MockBookingUseCase
	cart          *MockCartUseCase
	notifications *MockNotificationUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &env{
		trips:         &MockTripUseCase{},
		waitlist:      &MockWaitlistUseCase{},
		bookings:      &MockBookingUseCase{},
		cart:          &MockCartUseCase{},
		notifications: &MockNotificationUseCase{},
	}
	e.router = NewRouter(slogdiscard.NewDiscardLogger(), identity.NewHMACVerifier(testSecret), nil, Services{
		Trips:         e.trips,
		Waitlist:      e.waitlist,
		Bookings:      e.bookings,
		Cart:          e.cart,
		Notifications: e.notifications,
	})
	t.Cleanup(func() {
		e.trips.AssertExpectations(t)
		e.waitlist.AssertExpectations(t)
		e.bookings.AssertExpectations(t)
		e.cart.AssertExpectations(t)
		e.notifications.AssertExpectations(t)
	})
	return e
}

func token(t *testing.T, userID string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)
	return raw
}

func (e *env) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func samplePackage() domain.TravelPackage {
	return domain.TravelPackage{
		ID:             7,
		Name:           "Alps",
		Destination:    "Zermatt",
		Country:        "CH",
		StartDate:      time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2030, 1, 17, 0, 0, 0, 0, time.UTC),
		BasePriceCents: 150000,
		TotalRooms:     10,
		AvailableRooms: 4,
		IsVisible:      true,
	}
}

func TestTrips_List(t *testing.T) {
	e := newEnv(t)
	e.trips.On("List", mock.Anything, trips.Query{Search: "alp", DiscountedOnly: true, Sort: "price_asc"}).
		Return([]domain.TravelPackage{samplePackage()}, nil).Once()

	w := e.do(t, http.MethodGet, "/api/v1/trips?search=alp&discounted=true&sort=price_asc", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[[]tripResponse](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
	assert.Equal(t, "2030-01-10", got[0].StartDate)
	assert.Equal(t, int64(150000), got[0].PriceCents)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestTrips_ListAcceptsRoomAndDateSorts(t *testing.T) {
	for _, sort := range []string{"date_desc", "rooms_asc", "rooms_desc"} {
		t.Run(sort, func(t *testing.T) {
			e := newEnv(t)
			e.trips.On("List", mock.Anything, trips.Query{Sort: repository.TripSort(sort)}).
				Return([]domain.TravelPackage{}, nil).Once()

			w := e.do(t, http.MethodGet, "/api/v1/trips?sort="+sort, "", nil)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestTrips_ListRejectsUnknownSort(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/trips?sort=popularity", "", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTrips_GetHidesInvisible(t *testing.T) {
	e := newEnv(t)
	hidden := samplePackage()
	hidden.IsVisible = false
	e.trips.On("GetByID", mock.Anything, int64(7)).Return(&hidden, nil).Once()

	w := e.do(t, http.MethodGet, "/api/v1/trips/7", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/trips/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrips_Waitlist(t *testing.T) {
	e := newEnv(t)
	e.waitlist.On("Info", mock.Anything, int64(7)).
		Return(&waitlist.Info{PackageID: 7, PackageName: "Alps", WaitingCount: 2, EstimatedWaitDays: 6}, nil).Once()
	e.waitlist.On("Join", mock.Anything, "u1", int64(7)).
		Return(&waitlist.JoinResult{Entry: domain.WaitingListEntry{ID: 3, PackageID: 7}, Position: 3, EstimatedWaitDays: 6}, nil).Once()

	w := e.do(t, http.MethodGet, "/api/v1/trips/7/waitlist", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6, decode[waitlistInfoResponse](t, w).EstimatedWaitDays)

	w = e.do(t, http.MethodPost, "/api/v1/trips/7/waitlist", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/trips/7/waitlist", "u1", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 3, decode[waitlistJoinResponse](t, w).Position)
}

func TestBookings_Create(t *testing.T) {
	e := newEnv(t)
	pending := &domain.Booking{ID: 11, PackageID: 7, UserID: "u1", Status: domain.BookingStatusPendingPayment, TotalPriceCents: 150000}
	e.bookings.On("CreateBooking", mock.Anything, "u1", int64(7)).Return(pending, nil).Once()

	w := e.do(t, http.MethodPost, "/api/v1/bookings", "u1", createBookingRequest{PackageID: 7})

	require.Equal(t, http.StatusCreated, w.Code)
	got := decode[bookingResponse](t, w)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, string(domain.BookingStatusPendingPayment), got.Status)
}

func TestBookings_CreateFullRoutesToWaitlist(t *testing.T) {
	e := newEnv(t)
	e.bookings.On("CreateBooking", mock.Anything, "u1", int64(7)).
		Return(nil, fmt.Errorf("booking.BookingService.CreateBooking: %w", domain.ErrNoRoomsAvailable)).Once()

	w := e.do(t, http.MethodPost, "/api/v1/bookings", "u1", createBookingRequest{PackageID: 7})

	require.Equal(t, http.StatusConflict, w.Code)
	got := decode[resp.Response](t, w)
	assert.Equal(t, NextJoinWaitlist, got.Next)
	assert.Equal(t, domain.ErrNoRoomsAvailable.Error(), got.Error)
}

func TestBookings_CreateValidation(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/v1/bookings", "u1", map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+token(t, "u1"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookings_Pay(t *testing.T) {
	e := newEnv(t)
	e.bookings.On("Pay", mock.Anything, mock.MatchedBy(func(in booking.PayInput) bool {
		return in.UserID == "u1" && in.BookingID == 11 && in.Method == "CreditCard" && in.Details.CVV == "123"
	})).Return(&booking.PayResult{
		Booking: domain.Booking{ID: 11, Status: domain.BookingStatusConfirmed},
		Payment: domain.Payment{ID: 1, Method: "CreditCard", TransactionReference: "CC-x", Status: domain.PaymentStatusSuccess},
	}, nil).Once()

	w := e.do(t, http.MethodPost, "/api/v1/bookings/11/pay", "u1", payRequest{
		Method: "CreditCard", CardNumber: "4111", CVV: "123", ExpiryMonth: 12, ExpiryYear: 2099,
	})

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[payResponse](t, w)
	assert.Equal(t, string(domain.BookingStatusConfirmed), got.Booking.Status)
	assert.Equal(t, "CC-x", got.Payment.TransactionReference)
}

func TestBookings_PayRequiresCardFields(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/v1/bookings/11/pay", "u1", payRequest{Method: "CreditCard"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/bookings/11/pay", "u1", payRequest{Method: "Bitcoin"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBookings_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{name: "not found", err: domain.ErrNotFound, code: http.StatusNotFound, msg: "not found"},
		{name: "validation", err: domain.ErrTripEnded, code: http.StatusUnprocessableEntity, msg: "trip has already ended"},
		{name: "conflict", err: domain.ErrConflict, code: http.StatusConflict},
		{name: "window closed", err: domain.ErrCancellationWindowClosed, code: http.StatusConflict},
		{name: "forbidden", err: domain.ErrForbidden, code: http.StatusForbidden},
		{name: "declined", err: domain.ErrPaymentDeclined, code: http.StatusPaymentRequired},
		{name: "not confirmed", err: domain.ErrNotConfirmed, code: http.StatusConflict},
		{name: "unknown", err: assert.AnError, code: http.StatusInternalServerError, msg: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.bookings.On("Cancel", mock.Anything, "u1", int64(11)).
				Return(nil, fmt.Errorf("booking.BookingService.Cancel: %w", tt.err)).Once()

			w := e.do(t, http.MethodPost, "/api/v1/bookings/11/cancel", "u1", nil)

			assert.Equal(t, tt.code, w.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, decode[resp.Response](t, w).Error)
			}
		})
	}
}

func TestBookings_Itinerary(t *testing.T) {
	e := newEnv(t)
	e.bookings.On("Itinerary", mock.Anything, "u1", int64(11)).Return([]byte("<html></html>"), nil).Once()

	w := e.do(t, http.MethodGet, "/api/v1/bookings/11/itinerary", "u1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Itinerary_11.html")
	assert.Equal(t, "<html></html>", w.Body.String())
}

func TestBookings_Mine(t *testing.T) {
	e := newEnv(t)
	e.bookings.On("MyBookings", mock.Anything, "u1").Return([]booking.Details{{
		Booking:   domain.Booking{ID: 11, Status: domain.BookingStatusConfirmed},
		Package:   samplePackage(),
		CanCancel: true,
	}}, nil).Once()

	w := e.do(t, http.MethodGet, "/api/v1/bookings", "u1", nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[[]bookingDetailsResponse](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, "Alps", got[0].TripName)
	assert.True(t, got[0].CanCancel)
}

func TestCart_Flow(t *testing.T) {
	e := newEnv(t)
	e.cart.On("AddToCart", mock.Anything, "u1", int64(7)).Return(&domain.CartItem{ID: 5, PackageID: 7}, nil).Once()
	e.cart.On("Cart", mock.Anything, "u1").Return([]booking.CartLine{{Item: domain.CartItem{ID: 5, PackageID: 7}, Package: samplePackage()}}, nil).Once()
	e.cart.On("RemoveFromCart", mock.Anything, "u1", int64(5)).Return(nil).Once()
	e.cart.On("Checkout", mock.Anything, "u1").Return(&booking.CheckoutResult{
		Bookings: []domain.Booking{{ID: 12, PackageID: 7}},
		Skipped:  []booking.CheckoutSkip{{PackageID: 8, Reason: "no rooms available"}},
	}, nil).Once()

	w := e.do(t, http.MethodPost, "/api/v1/cart", "u1", addToCartRequest{PackageID: 7})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/cart", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alps", decode[[]cartLineResponse](t, w)[0].Trip.Name)

	w = e.do(t, http.MethodDelete, "/api/v1/cart/5", "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/cart/checkout", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[checkoutResponse](t, w)
	assert.Len(t, got.Bookings, 1)
	assert.Equal(t, int64(8), got.Skipped[0].PackageID)
}

func TestCart_CheckoutEmpty(t *testing.T) {
	e := newEnv(t)
	e.cart.On("Checkout", mock.Anything, "u1").Return(nil, domain.ErrEmptyCart).Once()

	w := e.do(t, http.MethodPost, "/api/v1/cart/checkout", "u1", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "cart is empty", decode[resp.Response](t, w).Error)
}

func TestNotifications(t *testing.T) {
	e := newEnv(t)
	e.notifications.On("Notifications", mock.Anything, "u1").
		Return([]domain.UserNotification{{ID: 1, Message: "hello"}}, nil).Once()
	e.notifications.On("MarkNotificationRead", mock.Anything, "u1", int64(1)).Return(nil).Once()
	e.notifications.On("MarkNotificationRead", mock.Anything, "u1", int64(2)).Return(domain.ErrNotFound).Once()

	w := e.do(t, http.MethodGet, "/api/v1/notifications", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", decode[[]notificationResponse](t, w)[0].Message)

	w = e.do(t, http.MethodPost, "/api/v1/notifications/1/read", "u1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/notifications/2/read", "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()

	e.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
