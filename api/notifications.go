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

type NotificationHandler struct {
	service booking.NotificationUseCase
	log     *slog.Logger
}

func NewNotificationHandler(log *slog.Logger, service booking.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{service: service, log: log}
}

func (h *NotificationHandler) Register(router *gin.RouterGroup) {
	router.GET("/notifications", h.list)
	router.POST("/notifications/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c *gin.Context) {
	list, err := h.service.Notifications(c.Request.Context(), identity.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkNotificationRead(c.Request.Context(), identity.UserID(c), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK())
}
