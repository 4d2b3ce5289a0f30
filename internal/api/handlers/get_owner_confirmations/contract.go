package get_owner_confirmations

import (
	"context"

	"github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations/models"
)

type ConfirmationService interface {
	GetPendingByOwner(ctx context.Context, ownerID int64, actorUserID int64) (*models.ConfirmationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
