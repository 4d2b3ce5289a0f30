package confirmation

import "errors"

var (
	// ErrConfirmationNotFound возвращается, когда запись подтверждения не найдена
	ErrConfirmationNotFound = errors.New("confirmation.repository: confirmation not found")

	// ErrDuplicateBooking возвращается при попытке создать второе подтверждение для бронирования
	ErrDuplicateBooking = errors.New("confirmation.repository: confirmation already exists for booking")

	// ErrNoPendingMatch возвращается, когда условное обновление не нашло строку
	// в статусе pending_owner с подходящими условиями (проигравший писатель в гонке
	// confirm/decline/extend/sweep). Вызывающий слой перечитывает запись и
	// разбирает причину: NotFound / AlreadyResolved / DeadlinePassed.
	ErrNoPendingMatch = errors.New("confirmation.repository: no pending record matched conditional update")

	// ErrEscrowStatusConflict возвращается, когда статус эскроу уже изменён другим писателем
	ErrEscrowStatusConflict = errors.New("confirmation.repository: escrow status conflict")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("confirmation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("confirmation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("confirmation.repository: failed to scan row")
)
