package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/travelbooking/internal/identity"
	resp "github.com/Domenick1991/travelbooking/internal/lib/api/response"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/trips"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

type Services struct {
	Trips         trips.TripUseCase
	Waitlist      waitlist.WaitlistUseCase
	Bookings      booking.BookingUseCase
	Cart          booking.CartUseCase
	Notifications booking.NotificationUseCase
}

// NewRouter builds the public REST API. Catalogue reads are anonymous,
// everything else needs a bearer token.
func NewRouter(log *slog.Logger, verifier *identity.Verifier, origins []string, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(CORS(origins))
	r.Use(RequestID())
	r.Use(Logger(log))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK())
	})

	public := r.Group("/api/v1")
	protected := r.Group("/api/v1")
	protected.Use(identity.Middleware(verifier, log))

	NewTripHandler(log, svc.Trips, svc.Waitlist).Register(public, protected)
	NewBookingHandler(log, svc.Bookings).Register(protected)
	NewCartHandler(log, svc.Cart).Register(protected)
	NewNotificationHandler(log, svc.Notifications).Register(protected)

	return r
}
