package confirmations

import "errors"

var (
	// ErrConfirmationNotFound возвращается, когда запись подтверждения не найдена
	ErrConfirmationNotFound = errors.New("confirmation not found")

	// ErrAccessDenied возвращается, когда действие выполняет не владелец записи
	ErrAccessDenied = errors.New("access denied")

	// ErrAlreadyResolved возвращается, когда запись уже покинула pending_owner
	// Покрывает гонку confirm/decline/extend со sweep'ом
	ErrAlreadyResolved = errors.New("confirmation already resolved")

	// ErrDeadlinePassed возвращается при попытке действия после истечения дедлайна,
	// но до того, как sweep обработал запись. Для вызывающих эквивалентна ErrAlreadyResolved
	ErrDeadlinePassed = errors.New("confirmation deadline passed")

	// ErrMaxExtensionsReached возвращается, когда лимит продлений исчерпан
	ErrMaxExtensionsReached = errors.New("maximum extensions reached")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
