package cancel_booking

import (
	"context"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/internal/integrations/notifyservice"
)

// ConfirmationRepository интерфейс репозитория подтверждений
type ConfirmationRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingConfirmation, error)
	UpdateEscrowStatus(ctx context.Context, id string, from, to domain.EscrowStatus) error
}

// CancellationRepository интерфейс репозитория аудит-записей отмен
type CancellationRepository interface {
	Create(ctx context.Context, rec *domain.CancellationRecord) (*domain.CancellationRecord, error)
}

// SettingsProvider интерфейс провайдера таблицы тарифов возврата
type SettingsProvider interface {
	RefundTable(ctx context.Context) (domain.RefundTable, error)
}

// NotifyServiceClient интерфейс клиента NotificationService
type NotifyServiceClient interface {
	Send(ctx context.Context, event notifyservice.Event, bookingID, ownerID, renterID int64) error
}

// PayoutServiceClient интерфейс клиента PayoutService
type PayoutServiceClient interface {
	RefundEscrow(ctx context.Context, bookingID int64, amount float64, reason string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
