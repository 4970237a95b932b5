package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Domenick1991/travelbooking/internal/domain"
	resp "github.com/Domenick1991/travelbooking/internal/lib/api/response"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
)

// NextJoinWaitlist tells the client to offer the waiting list instead of a booking.
const NextJoinWaitlist = "join_waitlist"

var validate = validator.New()

// publicErrors are matched most specific first; their text is what clients see.
var publicErrors = []error{
	domain.ErrTripEnded,
	domain.ErrBookingClosed,
	domain.ErrTooManyUpcoming,
	domain.ErrDuplicateBooking,
	domain.ErrAgeRestricted,
	domain.ErrRoomsAvailable,
	domain.ErrAlreadyWaiting,
	domain.ErrInvalidCapacity,
	domain.ErrInvalidDiscount,
	domain.ErrInvalidDates,
	domain.ErrPackageInUse,
	domain.ErrEmptyCart,
	domain.ErrValidation,
	domain.ErrNotFound,
	domain.ErrNoRoomsAvailable,
	domain.ErrConflict,
	domain.ErrCancellationWindowClosed,
	domain.ErrForbidden,
	domain.ErrPaymentDeclined,
	domain.ErrNotConfirmed,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoRoomsAvailable),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrCancellationWindowClosed),
		errors.Is(err, domain.ErrNotConfirmed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return strings.TrimPrefix(known.Error(), domain.ErrValidation.Error()+": ")
		}
	}
	return "internal error"
}

// writeError translates a service error into a response. Unknown errors are
// logged and hidden behind a 500.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		requestID, _ := c.Get(requestIDKey)
		log.Error("request failed",
			slog.Any("request_id", requestID),
			slog.String("path", c.FullPath()),
			sl.Err(err),
		)
	}

	if errors.Is(err, domain.ErrNoRoomsAvailable) {
		c.JSON(code, resp.ErrorNext(publicMessage(err), NextJoinWaitlist))
		return
	}
	c.JSON(code, resp.Error(publicMessage(err)))
}

// bindJSON decodes and validates the body, writing the 400/422 itself.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error("invalid request body"))
		return false
	}
	return validateRequest(c, req)
}

func validateRequest(c *gin.Context, req any) bool {
	if err := validate.Struct(req); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			c.JSON(http.StatusUnprocessableEntity, resp.ValidationError(validateErr))
		} else {
			c.JSON(http.StatusBadRequest, resp.Error("invalid request"))
		}
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, resp.Error("invalid "+name))
		return 0, false
	}
	return id, true
}
