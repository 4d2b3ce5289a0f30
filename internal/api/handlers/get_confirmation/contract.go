package get_confirmation

import (
	"context"

	"github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations/models"
)

type ConfirmationService interface {
	GetByID(ctx context.Context, id string, actorUserID int64) (*models.ConfirmationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
