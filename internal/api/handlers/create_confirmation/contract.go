package create_confirmation

import (
	"context"

	"github.com/m04kA/RAV-ConfirmationService/internal/usecase/create_confirmation"
)

type CreateConfirmationUseCase interface {
	Execute(ctx context.Context, req *create_confirmation.Request) (*create_confirmation.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
