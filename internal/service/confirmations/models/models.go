package models

import (
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/pkg/ptr"
)

// Response модели

// CountdownResponse производный обратный отсчёт до дедлайна
// Чистая функция от (deadline, now), пересчитывается на каждый запрос
type CountdownResponse struct {
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// ConfirmationResponse ответ с данными записи подтверждения
type ConfirmationResponse struct {
	ID                  string   `json:"id"`
	BookingID           int64    `json:"bookingId"`
	OwnerID             int64    `json:"ownerId"`
	RenterID            int64    `json:"renterId"`
	Status              string   `json:"status"`
	Deadline            string   `json:"deadline"` // ISO 8601
	ExtensionsUsed      int      `json:"extensionsUsed"`
	ExtensionTimestamps []string `json:"extensionTimestamps"`

	ConfirmedAt *string `json:"confirmedAt,omitempty"`
	DeclinedAt  *string `json:"declinedAt,omitempty"`
	TimedOutAt  *string `json:"timedOutAt,omitempty"`

	EscrowAmount float64 `json:"escrowAmount"`
	EscrowStatus string  `json:"escrowStatus"`

	Countdown CountdownResponse `json:"countdown"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConfirmationListResponse ответ со списком подтверждений
type ConfirmationListResponse struct {
	Confirmations []ConfirmationResponse `json:"confirmations"`
}

// ExtensionResponse результат успешного продления дедлайна
type ExtensionResponse struct {
	Deadline            string `json:"deadline"` // новый дедлайн, ISO 8601
	ExtensionsUsed      int    `json:"extensionsUsed"`
	ExtensionsRemaining int    `json:"extensionsRemaining"`
}

// Методы конвертации

// FromDomainConfirmation конвертирует domain модель в DTO
// now используется для вычисления обратного отсчёта
func FromDomainConfirmation(c *domain.BookingConfirmation, now time.Time) *ConfirmationResponse {
	if c == nil {
		return nil
	}

	timestamps := make([]string, len(c.ExtensionTimestamps))
	for i, ts := range c.ExtensionTimestamps {
		timestamps[i] = ts.Format(time.RFC3339)
	}

	countdown := domain.NewCountdown(c.Deadline, now)

	resp := &ConfirmationResponse{
		ID:                  c.ID,
		BookingID:           c.BookingID,
		OwnerID:             c.OwnerID,
		RenterID:            c.RenterID,
		Status:              string(c.Status),
		Deadline:            c.Deadline.Format(time.RFC3339),
		ExtensionsUsed:      c.ExtensionsUsed,
		ExtensionTimestamps: timestamps,
		EscrowAmount:        c.EscrowAmount,
		EscrowStatus:        string(c.EscrowStatus),
		Countdown: CountdownResponse{
			Hours:   countdown.Hours,
			Minutes: countdown.Minutes,
			Seconds: countdown.Seconds,
			Expired: countdown.Expired,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	resp.ConfirmedAt = formatTimePtr(c.ConfirmedAt)
	resp.DeclinedAt = formatTimePtr(c.DeclinedAt)
	resp.TimedOutAt = formatTimePtr(c.TimedOutAt)

	return resp
}

// FromDomainConfirmationList конвертирует список domain моделей в DTO
func FromDomainConfirmationList(confirmations []*domain.BookingConfirmation, now time.Time) *ConfirmationListResponse {
	resp := &ConfirmationListResponse{
		Confirmations: make([]ConfirmationResponse, 0, len(confirmations)),
	}

	for _, c := range confirmations {
		if cr := FromDomainConfirmation(c, now); cr != nil {
			resp.Confirmations = append(resp.Confirmations, *cr)
		}
	}

	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return ptr.Ptr(t.Format(time.RFC3339))
}
