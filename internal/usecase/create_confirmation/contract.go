package create_confirmation

import (
	"context"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
)

// ConfirmationRepository интерфейс репозитория подтверждений
type ConfirmationRepository interface {
	Create(ctx context.Context, c *domain.BookingConfirmation) (*domain.BookingConfirmation, error)
}

// SettingsProvider интерфейс провайдера настроек таймера
type SettingsProvider interface {
	TimerSettings(ctx context.Context) (*domain.ConfirmationTimerSettings, error)
}

// NotifyServiceClient интерфейс клиента NotificationService
type NotifyServiceClient interface {
	Send(ctx context.Context, event notifyservice.Event, bookingID, ownerID, renterID int64) error
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
