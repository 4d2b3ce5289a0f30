package domain

import "time"

// CancellationRecord audit record of a processed cancellation
// Stores both the policy-computed amount and the final amount actually
// refunded, so owner-override decisions remain visible
type CancellationRecord struct {
	ID                 int64
	BookingID          int64
	RequesterID        int64
	CancelledBy        CancelledBy
	Policy             CancellationPolicy
	Reason             string
	DaysUntilCheckin   int
	PolicyRefundAmount float64
	FinalRefundAmount  float64
	RefundPercent      int
	RefundDescription  string
	CreatedAt          time.Time
}

// DaysUntilCheckin number of whole days between now and check-in,
// both truncated to their calendar dates. Negative if check-in has passed
func DaysUntilCheckin(checkIn, now time.Time) int {
	checkInDate := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(checkInDate.Sub(nowDate) / (24 * time.Hour))
}
