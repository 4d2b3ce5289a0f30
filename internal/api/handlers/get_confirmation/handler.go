package get_confirmation

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/RAV-ConfirmationService/internal/api/handlers"
	"github.com/m04kA/RAV-ConfirmationService/internal/api/middleware"
	"github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations"
)

const (
	msgInvalidConfirmationID = "некорректный ID подтверждения"
	msgNotFound              = "подтверждение не найдено"
	msgMissingUserID         = "отсутствует ID пользователя"
	msgForbidden             = "доступ запрещен"
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

// Handle GET /api/v1/confirmations/{confirmationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем confirmationId из URL
	vars := mux.Vars(r)
	confirmationID := vars["confirmationId"]

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /confirmations/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Получаем подтверждение (сервис сам проверит права доступа)
	confirmation, err := h.service.GetByID(r.Context(), confirmationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, confirmations.ErrInvalidInput):
			h.logger.Warn("GET /confirmations/{id} - Invalid confirmation ID: id=%s", confirmationID)
			handlers.RespondBadRequest(w, msgInvalidConfirmationID)

		case errors.Is(err, confirmations.ErrConfirmationNotFound):
			h.logger.Warn("GET /confirmations/{id} - Confirmation not found: id=%s", confirmationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, confirmations.ErrAccessDenied):
			h.logger.Warn("GET /confirmations/{id} - Access denied: id=%s, user_id=%d", confirmationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /confirmations/{id} - Failed to get confirmation: id=%s, error=%v",
				confirmationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /confirmations/{id} - Confirmation retrieved successfully: id=%s, user_id=%d",
		confirmationID, userID)
	handlers.RespondJSON(w, http.StatusOK, confirmation)
}
