package payoutservice

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("payoutservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("payoutservice client: invalid response")

	// ErrRejected возвращается, когда payout-сервис отклонил операцию
	ErrRejected = errors.New("payoutservice client: operation rejected")
)
