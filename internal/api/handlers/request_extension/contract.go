package request_extension

import (
	"context"

	"github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations/models"
)

type ConfirmationService interface {
	RequestExtension(ctx context.Context, id string, actorOwnerID int64) (*models.ExtensionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
