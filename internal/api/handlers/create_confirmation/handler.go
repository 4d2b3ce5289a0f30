package create_confirmation

import (
	"errors"
	"net/http"

	"github.com/m04kA/RAV-ConfirmationService/internal/api/handlers"
	"github.com/m04kA/RAV-ConfirmationService/internal/usecase/create_confirmation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные подтверждения"
	msgAlreadyExists      = "подтверждение для бронирования уже существует"
)

type Handler struct {
	useCase CreateConfirmationUseCase
	logger  Logger
}

func NewHandler(useCase CreateConfirmationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/confirmations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Декодируем body
	var req CreateConfirmationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /confirmations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Создаем подтверждение
	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, create_confirmation.ErrInvalidInput):
			h.logger.Warn("POST /confirmations - Invalid input: booking_id=%d, error=%v", req.BookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, create_confirmation.ErrAlreadyExists):
			h.logger.Warn("POST /confirmations - Already exists: booking_id=%d", req.BookingID)
			handlers.RespondConflict(w, msgAlreadyExists)

		default:
			h.logger.Error("POST /confirmations - Failed to create confirmation: booking_id=%d, error=%v",
				req.BookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /confirmations - Confirmation created successfully: id=%s, booking_id=%d, deadline=%s",
		resp.ID, resp.BookingID, resp.Deadline)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(resp))
}
