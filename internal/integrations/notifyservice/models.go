package notifyservice

// Event тип события для нотификации
// Сервис решает только ЧТО и КОГДА нотифицировать; содержание и доставка
// сообщений - ответственность notification-сервиса
type Event string

const (
	EventConfirmationRequested Event = "confirmation_requested"
	EventBookingConfirmed      Event = "booking_confirmed"
	EventBookingDeclined       Event = "booking_declined"
	EventConfirmationTimedOut  Event = "confirmation_timed_out"
	EventBookingCancelled      Event = "booking_cancelled"
)

// NotificationRequest запрос на отправку нотификации
type NotificationRequest struct {
	Event     Event `json:"event"`
	BookingID int64 `json:"bookingId"`
	OwnerID   int64 `json:"ownerId"`
	RenterID  int64 `json:"renterId"`
}
