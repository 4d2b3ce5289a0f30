package cancel_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/RAV-ConfirmationService/internal/api/handlers"
	"github.com/m04kA/RAV-ConfirmationService/internal/api/middleware"
	"github.com/m04kA/RAV-ConfirmationService/internal/usecase/cancel_booking"
)

const (
	msgInvalidBookingID   = "некорректный ID бронирования"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные отмены"
	msgUnknownPolicy      = "неизвестная политика отмены"
	msgNotFound           = "подтверждение для бронирования не найдено"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
	msgNotCancellable     = "бронирование нельзя отменить в текущем статусе"
)

type Handler struct {
	useCase CancelBookingUseCase
	logger  Logger
}

func NewHandler(useCase CancelBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем bookingId из URL
	vars := mux.Vars(r)
	bookingIDStr := vars["bookingId"]

	bookingID, err := strconv.ParseInt(bookingIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/cancel - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Декодируем body
	var req CancelBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем в модель usecase
	ucReq, err := req.ToUseCaseRequest(bookingID, userID)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/cancel - Invalid request: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)
		return
	}

	// Отменяем бронирование
	resp, err := h.useCase.Execute(r.Context(), ucReq)
	if err != nil {
		switch {
		case errors.Is(err, cancel_booking.ErrUnknownPolicy):
			h.logger.Warn("POST /bookings/{id}/cancel - Unknown policy: booking_id=%d, policy=%s",
				bookingID, req.Policy)
			handlers.RespondBadRequest(w, msgUnknownPolicy)

		case errors.Is(err, cancel_booking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/cancel - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, cancel_booking.ErrConfirmationNotFound):
			h.logger.Warn("POST /bookings/{id}/cancel - Confirmation not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, cancel_booking.ErrNotCancellable):
			h.logger.Warn("POST /bookings/{id}/cancel - Booking not cancellable: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotCancellable)

		case errors.Is(err, cancel_booking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/cancel - Access denied: booking_id=%d, user_id=%d",
				bookingID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /bookings/{id}/cancel - Failed to cancel booking: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/cancel - Booking cancelled successfully: booking_id=%d, user_id=%d, refund=%.2f",
		bookingID, userID, resp.RefundAmount)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
