package decline_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/RAV-ConfirmationService/internal/api/handlers"
	"github.com/m04kA/RAV-ConfirmationService/internal/api/middleware"
	"github.com/m04kA/RAV-ConfirmationService/internal/domain"
	"github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations"
)

const (
	msgInvalidConfirmationID = "некорректный ID подтверждения"
	msgNotFound              = "подтверждение не найдено"
	msgMissingUserID         = "отсутствует ID пользователя"
	msgForbidden             = "доступ запрещен"
	msgAlreadyResolved       = "подтверждение уже обработано"
	msgDeadlinePassed        = "срок подтверждения истек"
)

type Handler struct {
	service ConfirmationService
	logger  Logger
}

func NewHandler(service ConfirmationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/confirmations/{confirmationId}/decline
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем confirmationId из URL
	vars := mux.Vars(r)
	confirmationID := vars["confirmationId"]

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /confirmations/{id}/decline - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Отклоняем бронирование (сервис проверит владельца и дедлайн)
	err := h.service.Decline(r.Context(), confirmationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, confirmations.ErrInvalidInput):
			h.logger.Warn("POST /confirmations/{id}/decline - Invalid confirmation ID: id=%s", confirmationID)
			handlers.RespondBadRequest(w, msgInvalidConfirmationID)

		case errors.Is(err, confirmations.ErrConfirmationNotFound):
			h.logger.Warn("POST /confirmations/{id}/decline - Confirmation not found: id=%s", confirmationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmations.ErrAccessDenied):
			h.logger.Warn("POST /confirmations/{id}/decline - Access denied: id=%s, user_id=%d",
				confirmationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, confirmations.ErrAlreadyResolved):
			h.logger.Warn("POST /confirmations/{id}/decline - Already resolved: id=%s", confirmationID)
			handlers.RespondConflict(w, msgAlreadyResolved)

		case errors.Is(err, confirmations.ErrDeadlinePassed):
			h.logger.Warn("POST /confirmations/{id}/decline - Deadline passed: id=%s", confirmationID)
			handlers.RespondConflict(w, msgDeadlinePassed)

		default:
			h.logger.Error("POST /confirmations/{id}/decline - Failed to decline: id=%s, error=%v",
				confirmationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /confirmations/{id}/decline - Booking declined successfully: id=%s, owner_id=%d",
		confirmationID, userID)
	handlers.RespondJSON(w, http.StatusOK, DeclineBookingResponse{
		ID:     confirmationID,
		Status: string(domain.StatusOwnerDeclined),
	})
}
