package get_owner_confirmations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/RAV-ConfirmationService/internal/api/handlers"
	"github.com/m04kA/RAV-ConfirmationService/internal/api/middleware"
	"github.com/m04kA/RAV-ConfirmationService/internal/service/confirmations"
)

const (
	msgInvalidOwnerID = "некорректный ID владельца"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "доступ запрещен"
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

// Handle GET /api/v1/owners/{ownerId}/confirmations/pending
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем ownerId из URL
	vars := mux.Vars(r)
	ownerIDStr := vars["ownerId"]

	ownerID, err := strconv.ParseInt(ownerIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /owners/{ownerId}/confirmations/pending - Invalid owner ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOwnerID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /owners/{ownerId}/confirmations/pending - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Получаем ожидающие подтверждения владельца
	result, err := h.service.GetPendingByOwner(r.Context(), ownerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, confirmations.ErrAccessDenied):
			h.logger.Warn("GET /owners/{ownerId}/confirmations/pending - Access denied: owner_id=%d, user_id=%d",
				ownerID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /owners/{ownerId}/confirmations/pending - Failed to get confirmations: owner_id=%d, error=%v",
				ownerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /owners/{ownerId}/confirmations/pending - Confirmations retrieved successfully: owner_id=%d, count=%d",
		ownerID, len(result.Confirmations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
