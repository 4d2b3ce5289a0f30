package cancel_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input data")

	// ErrUnknownPolicy возвращается при неизвестной политике отмены
	// Неизвестная политика не даёт ни 0%, ни 100% по умолчанию - это отказ
	ErrUnknownPolicy = errors.New("cancel_booking: unknown cancellation policy")

	// ErrConfirmationNotFound возвращается, когда для бронирования нет записи подтверждения
	ErrConfirmationNotFound = errors.New("cancel_booking: confirmation not found for booking")

	// ErrAccessDenied возвращается, когда отменяющий не соответствует заявленной роли
	ErrAccessDenied = errors.New("cancel_booking: access denied")

	// ErrNotCancellable возвращается, когда бронирование не в owner_confirmed
	// Pending-запись закрывают confirm/decline/sweep, отменённый или
	// просроченный booking возвращать повторно нельзя
	ErrNotCancellable = errors.New("cancel_booking: booking is not in a cancellable status")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
