package confirm_booking

// ConfirmBookingResponse HTTP response model
type ConfirmBookingResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
