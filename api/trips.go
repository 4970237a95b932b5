package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/identity"
	resp "github.com/Domenick1991/travelbooking/internal/lib/api/response"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/trips"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

type TripHandler struct {
	trips    trips.TripUseCase
	waitlist waitlist.WaitlistUseCase
	log      *slog.Logger
	now      func() time.Time
}

type listTripsQuery struct {
	Search     string `form:"search" validate:"max=100"`
	Category   string `form:"category" validate:"max=50"`
	Discounted bool   `form:"discounted"`
	Sort       string `form:"sort" validate:"omitempty,oneof=date date_desc price_asc price_desc rooms_asc rooms_desc name"`
}

func NewTripHandler(log *slog.Logger, trips trips.TripUseCase, waitlist waitlist.WaitlistUseCase) *TripHandler {
	return &TripHandler{trips: trips, waitlist: waitlist, log: log, now: time.Now}
}

func (h *TripHandler) Register(public, protected *gin.RouterGroup) {
	public.GET("/trips", h.list)
	public.GET("/trips/:id", h.get)
	public.GET("/trips/:id/waitlist", h.waitlistInfo)
	protected.POST("/trips/:id/waitlist", h.joinWaitlist)
}

func (h *TripHandler) list(c *gin.Context) {
	var q listTripsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error("invalid query"))
		return
	}
	if !validateRequest(c, &q) {
		return
	}

	found, err := h.trips.List(c.Request.Context(), trips.Query{
		Search:         q.Search,
		Category:       q.Category,
		DiscountedOnly: q.Discounted,
		Sort:           repository.TripSort(q.Sort),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	now := h.now()
	out := make([]tripResponse, 0, len(found))
	for i := range found {
		out = append(out, toTripResponse(&found[i], now))
	}
	c.JSON(http.StatusOK, out)
}

func (h *TripHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.trips.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	// скрытые пакеты видны только через админский API
	if !pkg.IsVisible {
		writeError(c, h.log, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(pkg, h.now()))
}

func (h *TripHandler) waitlistInfo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	info, err := h.waitlist.Info(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, waitlistInfoResponse{
		PackageID:         info.PackageID,
		PackageName:       info.PackageName,
		AvailableRooms:    info.AvailableRooms,
		WaitingCount:      info.WaitingCount,
		EstimatedWaitDays: info.EstimatedWaitDays,
	})
}

func (h *TripHandler) joinWaitlist(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.waitlist.Join(c.Request.Context(), identity.UserID(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toWaitlistJoin(res))
}
