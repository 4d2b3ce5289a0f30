package create_confirmation

import (
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/usecase/create_confirmation"
)

// CreateConfirmationRequest HTTP request model
type CreateConfirmationRequest struct {
	BookingID    int64   `json:"bookingId"`
	OwnerID      int64   `json:"ownerId"`
	RenterID     int64   `json:"renterId"`
	EscrowAmount float64 `json:"escrowAmount"`
}

// ToUseCaseRequest конвертирует HTTP request в модель usecase
func (r *CreateConfirmationRequest) ToUseCaseRequest() *create_confirmation.Request {
	return &create_confirmation.Request{
		BookingID:    r.BookingID,
		OwnerID:      r.OwnerID,
		RenterID:     r.RenterID,
		EscrowAmount: r.EscrowAmount,
	}
}

// CreateConfirmationResponse HTTP response model
type CreateConfirmationResponse struct {
	ID             string    `json:"id"`
	BookingID      int64     `json:"bookingId"`
	OwnerID        int64     `json:"ownerId"`
	RenterID       int64     `json:"renterId"`
	Status         string    `json:"status"`
	Deadline       string    `json:"deadline"`
	ExtensionsUsed int       `json:"extensionsUsed"`
	EscrowAmount   float64   `json:"escrowAmount"`
	EscrowStatus   string    `json:"escrowStatus"`
	CreatedAt      time.Time `json:"createdAt"`
}

// FromUseCaseResponse конвертирует модель usecase в HTTP response
func FromUseCaseResponse(resp *create_confirmation.Response) *CreateConfirmationResponse {
	return &CreateConfirmationResponse{
		ID:             resp.ID,
		BookingID:      resp.BookingID,
		OwnerID:        resp.OwnerID,
		RenterID:       resp.RenterID,
		Status:         resp.Status,
		Deadline:       resp.Deadline.Format(time.RFC3339),
		ExtensionsUsed: resp.ExtensionsUsed,
		EscrowAmount:   resp.EscrowAmount,
		EscrowStatus:   resp.EscrowStatus,
		CreatedAt:      resp.CreatedAt,
	}
}
