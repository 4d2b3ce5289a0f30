package cancel_booking

import (
	"fmt"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
// Отклоняет запрос до любых изменений состояния
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.ActorUserID <= 0 {
		return fmt.Errorf("%w: actorUserID must be positive", ErrInvalidInput)
	}

	if !req.CancelledBy.IsValid() {
		return fmt.Errorf("%w: cancelledBy must be %q or %q", ErrInvalidInput,
			domain.CancelledByRenter, domain.CancelledByOwner)
	}

	if req.TotalAmount < 0 {
		return fmt.Errorf("%w: totalAmount must not be negative", ErrInvalidInput)
	}

	if req.CheckInDate.IsZero() {
		return fmt.Errorf("%w: checkInDate is required", ErrInvalidInput)
	}

	if req.Reason == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput,
			domain.MaxCancellationReasonLength)
	}

	return nil
}
