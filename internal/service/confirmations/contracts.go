package confirmations

import (
	"context"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
)

// ConfirmationRepository интерфейс репозитория подтверждений
type ConfirmationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.BookingConfirmation, error)
	GetPendingByOwner(ctx context.Context, ownerID int64) ([]*domain.BookingConfirmation, error)
	Confirm(ctx context.Context, id string, now time.Time) error
	Decline(ctx context.Context, id string, now time.Time) error
	Extend(ctx context.Context, id string, expectedExtensions int, extensionMinutes int, now time.Time) (*domain.BookingConfirmation, error)
	SweepExpired(ctx context.Context, now time.Time, limit int) ([]*domain.BookingConfirmation, error)
	UpdateEscrowStatus(ctx context.Context, id string, from, to domain.EscrowStatus) error
}

// SettingsProvider интерфейс провайдера настроек таймера
type SettingsProvider interface {
	TimerSettings(ctx context.Context) (*domain.ConfirmationTimerSettings, error)
}

// NotifyServiceClient интерфейс клиента NotificationService
type NotifyServiceClient interface {
	Send(ctx context.Context, event notifyservice.Event, bookingID, ownerID, renterID int64) error
}

// PayoutServiceClient интерфейс клиента PayoutService
type PayoutServiceClient interface {
	ReleaseEscrow(ctx context.Context, bookingID int64, amount float64, reason string) error
	RefundEscrow(ctx context.Context, bookingID int64, amount float64, reason string) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
