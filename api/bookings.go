package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/travelbooking/internal/identity"
	"github.com/Domenick1991/travelbooking/internal/itinerary"
	"github.com/Domenick1991/travelbooking/internal/payment"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
	log     *slog.Logger
}

type createBookingRequest struct {
	PackageID int64 `json:"package_id" validate:"required,gt=0"`
}

type payRequest struct {
	Method       string `json:"method" validate:"required,oneof=CreditCard PayPal"`
	CardNumber   string `json:"card_number" validate:"required_if=Method CreditCard"`
	CVV          string `json:"cvv" validate:"required_if=Method CreditCard"`
	ExpiryMonth  int    `json:"expiry_month" validate:"required_if=Method CreditCard,max=12"`
	ExpiryYear   int    `json:"expiry_year" validate:"required_if=Method CreditCard"`
	PayPalStatus string `json:"paypal_status"`
}

func NewBookingHandler(log *slog.Logger, service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)
	router.GET("/bookings", h.mine)
	router.GET("/bookings/:id", h.get)
	router.POST("/bookings/:id/pay", h.pay)
	router.POST("/bookings/:id/cancel", h.cancel)
	router.GET("/bookings/:id/itinerary", h.itinerary)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), identity.UserID(c), req.PackageID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) mine(c *gin.Context) {
	list, err := h.service.MyBookings(c.Request.Context(), identity.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	out := make([]bookingDetailsResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingDetails(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.Get(c.Request.Context(), identity.UserID(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingDetails(d))
}

func (h *BookingHandler) pay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req payRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.service.Pay(c.Request.Context(), booking.PayInput{
		UserID:    identity.UserID(c),
		BookingID: id,
		Method:    req.Method,
		Details: payment.Details{
			CardNumber:   req.CardNumber,
			CVV:          req.CVV,
			ExpiryMonth:  req.ExpiryMonth,
			ExpiryYear:   req.ExpiryYear,
			PayPalStatus: req.PayPalStatus,
		},
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toPayResponse(res))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), identity.UserID(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) itinerary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Itinerary(c.Request.Context(), identity.UserID(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+itinerary.FileName(id)+`"`)
	c.Data(http.StatusOK, itinerary.ContentType, doc)
}
