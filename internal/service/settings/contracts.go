package settings

import (
	"context"
	"time"

	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
)

// SettingsRepository интерфейс репозитория системных настроек
type SettingsRepository interface {
	GetTimerSettings(ctx context.Context) (*domain.ConfirmationTimerSettings, error)
	GetRefundTable(ctx context.Context) (domain.RefundTable, error)
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
