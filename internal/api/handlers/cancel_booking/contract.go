package cancel_booking

import (
	"context"

	"github.com/m04kA/RAV-ConfirmationService/internal/usecase/cancel_booking"
)

type CancelBookingUseCase interface {
	Execute(ctx context.Context, req *cancel_booking.Request) (*cancel_booking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
