package admin_service_api

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Domenick1991/travelbooking/internal/domain"
)

// toStatus maps domain errors onto gRPC codes. Bad input is InvalidArgument,
// business rules that refuse the current state are FailedPrecondition.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, errInvalidArgument),
		errors.Is(err, domain.ErrInvalidCapacity),
		errors.Is(err, domain.ErrInvalidDiscount),
		errors.Is(err, domain.ErrInvalidDates):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrValidation):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrNoRoomsAvailable):
		code = codes.ResourceExhausted
	case errors.Is(err, domain.ErrConflict):
		code = codes.Aborted
	case errors.Is(err, domain.ErrCancellationWindowClosed),
		errors.Is(err, domain.ErrNotConfirmed),
		errors.Is(err, domain.ErrPaymentDeclined):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrForbidden):
		code = codes.PermissionDenied
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}
