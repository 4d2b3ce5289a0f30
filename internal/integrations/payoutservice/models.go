package payoutservice

// PayoutRequest запрос на перевод или возврат средств эскроу
type PayoutRequest struct {
	BookingID int64   `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason"`
}

// PayoutResponse ответ payout-сервиса
type PayoutResponse struct {
	Reference string `json:"reference"`
}
