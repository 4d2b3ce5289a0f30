package cancel_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
// Атрибуты бронирования (сумма, политика, дата заезда) принадлежат
// booking-сервису и приходят в теле запроса
type CancelBookingRequest struct {
	CancelledBy string  `json:"cancelledBy"`
	Policy      string  `json:"policy"`
	TotalAmount float64 `json:"totalAmount"`
	CheckInDate string  `json:"checkInDate"` // YYYY-MM-DD
	Reason      string  `json:"reason"`
}

// ToUseCaseRequest конвертирует HTTP request в модель usecase
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID, actorUserID int64) (*cancel_booking.Request, error) {
	checkIn, err := time.Parse(domain.DateFormat, r.CheckInDate)
	if err != nil {
		return nil, fmt.Errorf("invalid check-in date %q: %w", r.CheckInDate, err)
	}

	return &cancel_booking.Request{
		BookingID:   bookingID,
		ActorUserID: actorUserID,
		CancelledBy: domain.CancelledBy(r.CancelledBy),
		Policy:      domain.CancellationPolicy(r.Policy),
		TotalAmount: r.TotalAmount,
		CheckInDate: checkIn,
		Reason:      r.Reason,
	}, nil
}
