package cancel_booking

import (
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
)

// Request входные данные отмены подтверждённого бронирования
// Атрибуты бронирования (сумма, политика, дата заезда) принадлежат
// booking-сервису и передаются вызывающей стороной
type Request struct {
	BookingID   int64
	ActorUserID int64
	CancelledBy domain.CancelledBy
	Policy      domain.CancellationPolicy
	TotalAmount float64
	CheckInDate time.Time
	Reason      string
}

// Response результат обработки отмены
type Response struct {
	BookingID          int64   `json:"bookingId"`
	CancelledBy        string  `json:"cancelledBy"`
	Policy             string  `json:"policy"`
	DaysUntilCheckin   int     `json:"daysUntilCheckin"`
	RefundPercent      int     `json:"refundPercent"`
	RefundAmount       float64 `json:"refundAmount"`
	PolicyRefundAmount float64 `json:"policyRefundAmount"`
	RefundDescription  string  `json:"refundDescription"`
}
