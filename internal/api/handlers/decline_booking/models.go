package decline_booking

// DeclineBookingResponse HTTP response model
type DeclineBookingResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
