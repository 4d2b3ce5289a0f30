package create_confirmation

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_confirmation: invalid input data")

	// ErrAlreadyExists возвращается, когда подтверждение для бронирования уже создано
	// Создание идемпотентно на уровне booking_id: повторный вызов - конфликт, не дубль
	ErrAlreadyExists = errors.New("create_confirmation: confirmation already exists for booking")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_confirmation: internal error")
)
