package confirm_booking

import "context"

type ConfirmationService interface {
	Confirm(ctx context.Context, id string, actorOwnerID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
