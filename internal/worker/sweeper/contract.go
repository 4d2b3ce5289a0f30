package sweeper

import "context"

// ConfirmationService интерфейс сервиса подтверждений
type ConfirmationService interface {
	SweepExpired(ctx context.Context, batchSize int) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
