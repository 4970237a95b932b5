package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/travelbooking/internal/identity"
	resp "github.com/Domenick1991/travelbooking/internal/lib/api/response"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
)

type CartHandler struct {
	service booking.CartUseCase
	log     *slog.Logger
	now     func() time.Time
}

type addToCartRequest struct {
	PackageID int64 `json:"package_id" validate:"required,gt=0"`
}

func NewCartHandler(log *slog.Logger, service booking.CartUseCase) *CartHandler {
	return &CartHandler{service: service, log: log, now: time.Now}
}

func (h *CartHandler) Register(router *gin.RouterGroup) {
	router.GET("/cart", h.list)
	router.POST("/cart", h.add)
	router.DELETE("/cart/:id", h.remove)
	router.POST("/cart/checkout", h.checkout)
}

func (h *CartHandler) list(c *gin.Context) {
	lines, err := h.service.Cart(c.Request.Context(), identity.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	now := h.now()
	out := make([]cartLineResponse, 0, len(lines))
	for i := range lines {
		out = append(out, cartLineResponse{
			ItemID:  lines[i].Item.ID,
			AddedAt: lines[i].Item.AddedAt.Format(time.RFC3339),
			Trip:    toTripResponse(&lines[i].Package, now),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *CartHandler) add(c *gin.Context) {
	var req addToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.service.AddToCart(c.Request.Context(), identity.UserID(c), req.PackageID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item_id": item.ID, "package_id": item.PackageID})
}

func (h *CartHandler) remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.RemoveFromCart(c.Request.Context(), identity.UserID(c), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK())
}

func (h *CartHandler) checkout(c *gin.Context) {
	res, err := h.service.Checkout(c.Request.Context(), identity.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	out := checkoutResponse{
		Bookings: make([]bookingResponse, 0, len(res.Bookings)),
		Skipped:  make([]checkoutSkipResponse, 0, len(res.Skipped)),
	}
	for i := range res.Bookings {
		out.Bookings = append(out.Bookings, toBookingResponse(&res.Bookings[i]))
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, checkoutSkipResponse{PackageID: s.PackageID, Reason: s.Reason})
	}
	c.JSON(http.StatusOK, out)
}
